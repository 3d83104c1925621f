package parse

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/CyberRei/cocoa-beans/commands/errs"
)

// ChoiceMap maps 1-based argument positions to their allowed values
type ChoiceMap map[int][]string

// Common error messages
const (
	errEmptyInput        = "empty %s"
	errMalformedBraces   = "malformed braces in: %s"
	errUnmatchedBrackets = "unmatched brackets in: %s"
	errInvalidFormat     = "invalid format in: %s"
	errEmptyKey          = "empty key in: %s"
	errMissingValue      = "missing or empty %s in: %s"
	errDuplicateArg      = "duplicate argument: %d"
	errInvalidArg        = "invalid argument position %q in: %s"
	errEmptyValue        = "empty value in: %s"
	errBothValues        = "cannot specify both 'value' and 'values' in: %s"
	errUnknownField      = "unknown field %q in: %s"
	errDuplicateField    = "duplicate field %q in: %s"
	errNotAList          = "values must be enclosed in brackets in: %s"
	errSingleEntry       = "expected a single entry in: %s"
)

// Kind tells what a tagged field declares
type Kind string

const (
	KindHandler   Kind = "handler"
	KindException Kind = "exception"
	KindEmpty     Kind = ""
)

// PatternValue is a regular expression constraint on one argument
type PatternValue struct {
	Arg         int
	Pattern     string
	Description string
	Compiled    *regexp.Regexp
}

// TagConfig is the parsed form of a `cocoa` struct tag
type TagConfig struct {
	Kind        Kind
	Paths       []string
	Priority    int
	IgnoreCase  bool
	Permissions []string
	Description string
	Params      []string
	Accepted    []PatternValue
	OneOf       ChoiceMap
}

// UnmarshalTagFormat parses a tag of semicolon separated key:value pairs:
//
//	cocoa:"path:give <player> <?int>|give <player>;priority:5;perm:items.give;desc:Give items"
//	cocoa:"kind:exception;priority:10"
//
// Multiple paths are separated by '|'. Fields without kind are handlers.
func UnmarshalTagFormat(tag string, field reflect.StructField) (*TagConfig, error) {
	config := &TagConfig{}
	if strings.TrimSpace(tag) == "" {
		config.Kind = KindHandler
		return config, nil
	}

	for _, part := range strings.Split(tag, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, value, found := strings.Cut(part, ":")
		if !found {
			return nil, errs.ErrTagInvalidFormat.WithArgs(field.Name, part)
		}
		key = strings.TrimSpace(key)

		switch key {
		case "kind":
			switch Kind(value) {
			case KindHandler, KindException, KindEmpty:
				config.Kind = Kind(value)
			default:
				return nil, errs.ErrTagInvalidKind.WithArgs(value, field.Name)
			}
		case "path":
			for _, p := range strings.Split(value, "|") {
				config.Paths = append(config.Paths, strings.Join(strings.Fields(p), " "))
			}
		case "priority":
			priority, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, errs.ErrTagInvalidValue.WithArgs(key, value, field.Name).Wrap(err)
			}
			config.Priority = priority
		case "ignoreCase":
			boolVal, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, errs.ErrTagInvalidValue.WithArgs(key, value, field.Name).Wrap(err)
			}
			config.IgnoreCase = boolVal
		case "perm":
			config.Permissions = splitList(value)
		case "desc":
			config.Description = value
		case "params":
			config.Params = splitList(value)
		case "accept":
			patterns, err := PatternValues(value)
			if err != nil {
				return nil, errs.ErrTagInvalidValue.WithArgs(key, value, field.Name).Wrap(err)
			}
			for _, p := range patterns {
				pv, err := compilePattern(p)
				if err != nil {
					return nil, errs.ErrTagInvalidValue.WithArgs(key, value, field.Name).Wrap(err)
				}
				config.Accepted = append(config.Accepted, *pv)
			}
		case "oneof":
			choices, err := Choices(value)
			if err != nil {
				return nil, errs.ErrTagInvalidValue.WithArgs(key, value, field.Name).Wrap(err)
			}
			config.OneOf = choices
		default:
			return nil, errs.ErrTagUnknownKey.WithArgs(key, field.Name)
		}
	}

	// If kind is empty, treat as handler
	if config.Kind == KindEmpty {
		config.Kind = KindHandler
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func compilePattern(p PatternValue) (*PatternValue, error) {
	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return nil, err
	}

	return &PatternValue{
		Arg:         p.Arg,
		Pattern:     p.Pattern,
		Description: p.Description,
		Compiled:    re,
	}, nil
}

func argPosition(value, input string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || pos < 1 {
		return 0, fmt.Errorf(errInvalidArg, value, input)
	}

	return pos, nil
}
