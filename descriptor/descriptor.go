// Package descriptor builds command nodes from tagged struct fields.
//
// Every exported func field of the struct becomes a handler whose first parameter is *commands.Context,
// whose remaining parameters receive the parsed arguments and whose only result is an error:
//
//	type Give struct {
//		Player *commands.SourceParser
//		Items  func(c *commands.Context, player Player, amount *int) error `cocoa:"path:<player> <?int>;perm:items.give"`
//		Failed func(c *commands.Context, err *ItemError) error            `cocoa:"kind:exception;priority:5"`
//	}
//
// Fields holding an ArgumentParser are registered as node parsers and a commands.FallbackFunc field
// becomes the node fallback.
package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/CyberRei/cocoa-beans/commands"
	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/CyberRei/cocoa-beans/commands/parse"
	"github.com/CyberRei/cocoa-beans/commands/parsers"
	"github.com/CyberRei/cocoa-beans/commands/requirements"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
)

// TagName is the struct tag read by FromStruct
const TagName = "cocoa"

// NameConversionFunc converts a field name to a path keyword
type NameConversionFunc func(string) string

// Built-in conversion strategies
var (
	// ToKebabCase converts a string to kebab case "give-all"
	ToKebabCase = func(s string) string {
		return strcase.ToKebab(s)
	}

	// ToSnakeCase converts a string to snake case "give_all"
	ToSnakeCase = func(s string) string {
		return strcase.ToSnake(s)
	}

	// ToLowerCase converts a string to lower case "giveall"
	ToLowerCase = func(s string) string {
		return strings.ToLower(s)
	}

	DefaultNameConverter = ToKebabCase
)

var (
	contextType     = reflect.TypeOf((*commands.Context)(nil))
	argsType        = reflect.TypeOf(commands.Args{})
	errorType       = reflect.TypeOf((*error)(nil)).Elem()
	parserType      = reflect.TypeOf((*commands.ArgumentParser)(nil)).Elem()
	fallbackType    = reflect.TypeOf(commands.FallbackFunc(nil))
	handlerFuncType = reflect.TypeOf(commands.HandlerFunc(nil))
)

// defaultKeywords maps parameter types to the keywords of the built-in parsers
var defaultKeywords = map[reflect.Type]string{
	reflect.TypeOf(0):                parsers.KeywordInt,
	reflect.TypeOf(float64(0)):       parsers.KeywordFloat,
	reflect.TypeOf(false):            parsers.KeywordBool,
	reflect.TypeOf(""):               parsers.KeywordString,
	reflect.TypeOf(time.Duration(0)): parsers.KeywordDuration,
	reflect.TypeOf(time.Time{}):      parsers.KeywordTime,
	reflect.TypeOf(uuid.UUID{}):      parsers.KeywordUUID,
}

// Option configures FromStruct
type Option func(c *config)

type config struct {
	aliases      []string
	description  string
	requirements []commands.Requirement
	permission   func(permission string) commands.Requirement
	converter    NameConversionFunc
}

// WithAliases adds alternative labels to the node
func WithAliases(aliases ...string) Option {
	return func(c *config) {
		c.aliases = append(c.aliases, aliases...)
	}
}

// WithDescription sets the node description
func WithDescription(description string) Option {
	return func(c *config) {
		c.description = description
	}
}

// WithRequirements adds node-level requirements gating every handler
func WithRequirements(reqs ...commands.Requirement) Option {
	return func(c *config) {
		c.requirements = append(c.requirements, reqs...)
	}
}

// WithPermission replaces the requirement built for perm tag entries. Defaults to requirements.Permission.
func WithPermission(fn func(permission string) commands.Requirement) Option {
	return func(c *config) {
		if fn != nil {
			c.permission = fn
		}
	}
}

// WithNameConverter replaces the conversion of field names into default paths
func WithNameConverter(fn NameConversionFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.converter = fn
		}
	}
}

// FromStruct builds a node named name from the fields of v, which must be a pointer to a struct.
// Nil func fields are ignored. Fields that cannot be turned into handlers are reported joined.
func FromStruct(name string, v any, opts ...Option) (*commands.Node, error) {
	cfg := &config{
		permission: requirements.Permission,
		converter:  DefaultNameConverter,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrNotAStruct.WithArgs(v)
	}
	rv = rv.Elem()
	rt := rv.Type()

	node := &commands.Node{
		Name:         name,
		Aliases:      cfg.aliases,
		Description:  cfg.description,
		Requirements: cfg.requirements,
	}

	// parsers first, their types name default path segments
	keywords := make(map[reflect.Type]string)
	for i := 0; i < rt.NumField(); i++ {
		field, value := rt.Field(i), rv.Field(i)
		if !field.IsExported() || field.Type.Kind() == reflect.Func || !field.Type.Implements(parserType) {
			continue
		}
		if value.Kind() == reflect.Interface || value.Kind() == reflect.Ptr {
			if value.IsNil() {
				continue
			}
		}
		p := value.Interface().(commands.ArgumentParser)
		node.Parsers = append(node.Parsers, p)
		if _, found := keywords[p.Type()]; !found {
			keywords[p.Type()] = p.Keyword()
		}
	}
	for t, k := range defaultKeywords {
		if _, found := keywords[t]; !found {
			keywords[t] = k
		}
	}

	var errList []error
	for i := 0; i < rt.NumField(); i++ {
		field, value := rt.Field(i), rv.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Func || value.IsNil() {
			continue
		}

		if field.Type == fallbackType {
			node.Fallback = value.Interface().(commands.FallbackFunc)
			continue
		}

		tagConfig, err := parse.UnmarshalTagFormat(field.Tag.Get(TagName), field)
		if err != nil {
			errList = append(errList, err)
			continue
		}

		switch tagConfig.Kind {
		case parse.KindException:
			eh, err := exceptionHandler(field, value, tagConfig)
			if err != nil {
				errList = append(errList, err)
				continue
			}
			node.ExceptionHandlers = append(node.ExceptionHandlers, eh)
		default:
			handlers, err := cfg.handlers(field, value, tagConfig, keywords)
			if err != nil {
				errList = append(errList, err)
				continue
			}
			node.Handlers = append(node.Handlers, handlers...)
		}
	}

	return node, errors.Join(errList...)
}

func (cfg *config) handlers(field reflect.StructField, fn reflect.Value, tag *parse.TagConfig, keywords map[reflect.Type]string) ([]commands.Handler, error) {
	var reqs []commands.Requirement
	for _, perm := range tag.Permissions {
		reqs = append(reqs, cfg.permission(perm))
	}

	base := commands.Handler{
		IgnoreCase:   tag.IgnoreCase,
		Priority:     tag.Priority,
		Description:  tag.Description,
		Requirements: reqs,
	}

	ft := field.Type
	paths := tag.Paths

	// func(*commands.Context, commands.Args) error is bound as is
	if ft == handlerFuncType || (ft.NumIn() == 2 && ft.In(0) == contextType && ft.In(1) == argsType && returnsError(ft)) {
		base.Invoke = fn.Convert(handlerFuncType).Interface().(commands.HandlerFunc)
		if len(paths) == 0 {
			paths = []string{cfg.converter(field.Name)}
		}
		return withPaths(base, paths), nil
	}

	if ft.NumIn() == 0 || ft.In(0) != contextType || !returnsError(ft) || ft.IsVariadic() {
		return nil, errs.ErrBadSignature.WithArgs(field.Name, ft.String())
	}

	params := make([]commands.Parameter, ft.NumIn()-1)
	for i := range params {
		t := ft.In(i + 1)
		name := fmt.Sprintf("arg%d", i+1)
		if i < len(tag.Params) {
			name = tag.Params[i]
		}
		params[i] = commands.Parameter{Name: name, Type: t, Requirements: argumentRequirements(tag, i+1)}
	}

	if len(paths) == 0 {
		segments := []string{cfg.converter(field.Name)}
		for _, p := range params {
			t := p.Type
			optional := t.Kind() == reflect.Ptr
			if optional {
				t = t.Elem()
			}
			keyword, found := keywords[t]
			if !found {
				return nil, errs.ErrBadSignature.WithArgs(field.Name, "no parser for "+p.Type.String())
			}
			if optional {
				segments = append(segments, "<?"+keyword+">")
			} else {
				segments = append(segments, "<"+keyword+">")
			}
		}
		paths = []string{strings.Join(segments, " ")}
	}

	base.Params = params
	base.Invoke = func(c *commands.Context, args commands.Args) error {
		in := make([]reflect.Value, ft.NumIn())
		in[0] = reflect.ValueOf(c)
		for i := 1; i < ft.NumIn(); i++ {
			v, err := argValue(ft.In(i), args, i-1)
			if err != nil {
				return err
			}
			in[i] = v
		}

		return asError(fn.Call(in)[0])
	}

	return withPaths(base, paths), nil
}

func exceptionHandler(field reflect.StructField, fn reflect.Value, tag *parse.TagConfig) (commands.ExceptionHandler, error) {
	ft := field.Type
	if ft.NumIn() != 2 || ft.In(0) != contextType || !returnsError(ft) ||
		(ft.In(1).Kind() != reflect.Interface && !ft.In(1).Implements(errorType)) {
		return commands.ExceptionHandler{}, errs.ErrBadSignature.WithArgs(field.Name, ft.String())
	}

	target := ft.In(1)
	return commands.ExceptionHandler{
		Matches:  []commands.ErrorMatcher{commands.ErrorType(target)},
		Priority: tag.Priority,
		Handle: func(c *commands.Context, err error) error {
			ptr := reflect.New(target)
			if !errors.As(err, ptr.Interface()) {
				return errs.ErrNotHandled
			}
			return asError(fn.Call([]reflect.Value{reflect.ValueOf(c), ptr.Elem()})[0])
		},
	}, nil
}

func argumentRequirements(tag *parse.TagConfig, arg int) []commands.ArgumentRequirement {
	var out []commands.ArgumentRequirement
	for _, pv := range tag.Accepted {
		if pv.Arg == arg {
			out = append(out, requirements.Match(pv.Compiled, pv.Description))
		}
	}
	if values, found := tag.OneOf[arg]; found {
		out = append(out, requirements.OneOf(values...))
	}

	return out
}

// argValue converts the bound argument i to t. Absent arguments become the zero value of t and
// pointer parameters receive a pointer to the bound value.
func argValue(t reflect.Type, args commands.Args, i int) (reflect.Value, error) {
	if !args.Has(i) {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(args.Get(i))
	switch {
	case v.Type().AssignableTo(t):
		return v, nil
	case t.Kind() == reflect.Ptr && v.Type().AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil
	default:
		return reflect.Value{}, errs.ErrArgType.WithArgs(args.Get(i))
	}
}

func withPaths(base commands.Handler, paths []string) []commands.Handler {
	out := make([]commands.Handler, len(paths))
	for i, p := range paths {
		out[i] = base
		out[i].Path = p
	}

	return out
}

func returnsError(ft reflect.Type) bool {
	return ft.NumOut() == 1 && ft.Out(0) == errorType
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}

	return v.Interface().(error)
}
