// Package parsers provides the built-in argument parsers for command paths
package parsers

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CyberRei/cocoa-beans/commands"
	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// Keywords of the built-in parsers
const (
	KeywordInt      = "int"
	KeywordFloat    = "float"
	KeywordBool     = "bool"
	KeywordString   = "string"
	KeywordText     = "text"
	KeywordDuration = "duration"
	KeywordTime     = "time"
	KeywordUUID     = "uuid"
)

type base struct {
	keyword  string
	typ      reflect.Type
	priority int
}

func (b base) Keyword() string {
	return b.keyword
}

func (b base) Type() reflect.Type {
	return b.typ
}

func (b base) Priority() int {
	return b.priority
}

func (b base) Complete(commands.ParseContext) []string {
	return nil
}

// tokenParser converts exactly one token
type tokenParser[T any] struct {
	base
	convert func(token string) (T, error)
	suggest []string
}

// Token creates a parser named keyword which converts a single token with convert
func Token[T any](keyword string, priority int, convert func(token string) (T, error)) commands.ArgumentParser {
	return newToken(keyword, priority, convert)
}

func newToken[T any](keyword string, priority int, convert func(token string) (T, error)) *tokenParser[T] {
	return &tokenParser[T]{
		base: base{
			keyword:  keyword,
			typ:      reflect.TypeOf((*T)(nil)).Elem(),
			priority: priority,
		},
		convert: convert,
	}
}

func (p *tokenParser[T]) Parse(pc commands.ParseContext) (commands.ParseResult, error) {
	token, ok := pc.Token()
	if !ok {
		return commands.ParseResult{}, errs.ErrParseMissing
	}

	v, err := p.convert(token)
	if err != nil {
		return commands.ParseResult{}, err
	}

	return commands.ParseResult{Value: v, Consumed: 1}, nil
}

func (p *tokenParser[T]) Complete(pc commands.ParseContext) []string {
	return withPrefix(pc, p.suggest)
}

// Int parses base 10 integers
func Int(priority int) commands.ArgumentParser {
	return newToken(KeywordInt, priority, func(token string) (int, error) {
		v, err := strconv.Atoi(token)
		if err != nil {
			return 0, errs.ErrParseInt.WithArgs(token)
		}
		return v, nil
	})
}

// Float parses 64 bit floating point numbers
func Float(priority int) commands.ArgumentParser {
	return newToken(KeywordFloat, priority, func(token string) (float64, error) {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0, errs.ErrParseFloat.WithArgs(token)
		}
		return v, nil
	})
}

// Bool parses true/false, yes/no and on/off, ignoring case
func Bool(priority int) commands.ArgumentParser {
	p := newToken(KeywordBool, priority, func(token string) (bool, error) {
		switch strings.ToLower(token) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
		return false, errs.ErrParseBool.WithArgs(token)
	})
	p.suggest = []string{"false", "true"}

	return p
}

// String accepts any single token
func String(priority int) commands.ArgumentParser {
	return newToken(KeywordString, priority, func(token string) (string, error) {
		return token, nil
	})
}

// Duration parses Go duration strings such as 1h30m
func Duration(priority int) commands.ArgumentParser {
	return newToken(KeywordDuration, priority, func(token string) (time.Duration, error) {
		v, err := time.ParseDuration(token)
		if err != nil {
			return 0, errs.ErrParseDuration.WithArgs(token)
		}
		return v, nil
	})
}

// Time parses dates and times in any layout recognized by dateparse, e.g. 2024-03-01 or 1709251200
func Time(priority int) commands.ArgumentParser {
	return newToken(KeywordTime, priority, func(token string) (time.Time, error) {
		v, err := dateparse.ParseAny(token)
		if err != nil {
			return time.Time{}, errs.ErrParseTime.WithArgs(token).Wrap(err)
		}
		return v, nil
	})
}

// UUID parses UUIDs in their canonical or URN form
func UUID(priority int) commands.ArgumentParser {
	return newToken(KeywordUUID, priority, func(token string) (uuid.UUID, error) {
		v, err := uuid.Parse(token)
		if err != nil {
			return uuid.Nil, errs.ErrParseUUID.WithArgs(token)
		}
		return v, nil
	})
}

// Enum accepts one of values, ignoring case, and yields the value as declared
func Enum(keyword string, priority int, values ...string) commands.ArgumentParser {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)

	p := newToken(keyword, priority, func(token string) (string, error) {
		for _, v := range values {
			if strings.EqualFold(v, token) {
				return v, nil
			}
		}
		return "", errs.ErrParseEnum.WithArgs(token, strings.Join(values, ", "))
	})
	p.suggest = sorted

	return p
}

type textParser struct {
	base
}

// Text consumes every remaining token and yields them joined by a single space
func Text(priority int) commands.ArgumentParser {
	return &textParser{base: base{keyword: KeywordText, typ: reflect.TypeOf(""), priority: priority}}
}

func (p *textParser) Parse(pc commands.ParseContext) (commands.ParseResult, error) {
	rest := pc.Remaining()
	if len(rest) == 0 {
		return commands.ParseResult{}, errs.ErrParseEmptyText
	}

	return commands.ParseResult{Value: strings.Join(rest, " "), Consumed: len(rest)}, nil
}

func withPrefix(pc commands.ParseContext, candidates []string) []string {
	prefix, _ := pc.Token()
	prefix = strings.ToLower(prefix)

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), prefix) {
			out = append(out, c)
		}
	}

	return out
}
