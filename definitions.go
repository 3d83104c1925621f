package commands

import (
	"context"
	"fmt"
	"reflect"
)

// Outcome reports how a dispatch ended
type Outcome int

const (
	// Handled means a variant ran successfully, or its failure was consumed by an exception handler
	Handled Outcome = iota
	// NoMatchingCommand means the label is unknown or no variant accepted the arguments
	NoMatchingCommand
	// RequirementsNotMet means only variants whose requirements failed matched the input
	RequirementsNotMet
	// Unhandled means a variant failed and no exception handler consumed the failure
	Unhandled
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case NoMatchingCommand:
		return "no matching command"
	case RequirementsNotMet:
		return "requirements not met"
	case Unhandled:
		return "unhandled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Sender is whoever issued a command line
type Sender interface {
	Name() string
}

// Context is handed to handlers, parsers and requirements for the duration of one dispatch.
// Args holds the tokens following the label.
type Context struct {
	ctx    context.Context
	Sender Sender
	Label  string
	Args   []string
}

// NewContext creates a dispatch context. A nil ctx is replaced with context.Background().
func NewContext(ctx context.Context, sender Sender, label string, args []string) *Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Context{
		ctx:    ctx,
		Sender: sender,
		Label:  label,
		Args:   args,
	}
}

// Context returns the context.Context the dispatch was started with
func (c *Context) Context() context.Context {
	return c.ctx
}

// HandlerFunc is the invocation target of a registered handler
type HandlerFunc func(c *Context, args Args) error

// ExceptionHandlerFunc receives a handler failure. Returning nil consumes the failure, returning
// errs.ErrNotHandled passes it on to the next matching exception handler and any other error
// ends routing with Unhandled.
type ExceptionHandlerFunc func(c *Context, err error) error

// FallbackFunc runs when a node's label resolved but none of its variants matched
type FallbackFunc func(c *Context) error

// ConfigureManagerFunc is used when defining Manager options
type ConfigureManagerFunc func(m *Manager, err *error)

// PrettyPrintConfig is used to print the registered command paths as a tree in PrintCommandsUsing and PrintCommands
type PrettyPrintConfig struct {
	// NewCommandPrefix precedes the start of a new command label
	NewCommandPrefix string
	// DefaultPrefix precedes paths by default
	DefaultPrefix string
	// TerminalPrefix precedes the last path of a label
	TerminalPrefix string
	// InnerLevelBindPrefix is rendered once before the path of every non-root entry
	InnerLevelBindPrefix string
	// OuterLevelBindPrefix is used for indentation. It is repeated for each level under the label.
	OuterLevelBindPrefix string
}

// ArgumentRequirement validates one bound argument value after parsing
type ArgumentRequirement interface {
	Check(value any) error
}

// ArgumentRequirementFunc adapts a function to ArgumentRequirement
type ArgumentRequirementFunc func(value any) error

func (f ArgumentRequirementFunc) Check(value any) error {
	return f(value)
}

// Parameter describes one positional handler parameter
type Parameter struct {
	Name         string
	Type         reflect.Type
	Requirements []ArgumentRequirement
}

// Handler declares one command variant of a Node.
//
// Path is a whitespace separated list of segments. A segment is either a literal keyword or a typed
// argument written as <keyword>, where keyword names an ArgumentParser. A typed segment may be prefixed
// with ? (optional, may be skipped) and/or ! (invalid, matches when the parser rejects the token):
//
//	"give <player> <?int>"
//	"<!?player> reset"
type Handler struct {
	Path         string
	IgnoreCase   bool
	Priority     int
	Description  string
	Requirements []Requirement
	Parsers      []ArgumentParser
	// Params must have one entry per typed segment. When nil they are derived from the parsers' types.
	// A parameter with a nil Type takes the type of its segment, otherwise that type must be assignable
	// to Type or, for pointer types, to what Type points to.
	Params []Parameter
	Invoke HandlerFunc
}

// ExceptionHandler receives failures of handlers declared by the same Node, or of every node when
// registered on the Manager with WithExceptionHandlers
type ExceptionHandler struct {
	Matches  []ErrorMatcher
	Priority int
	Handle   ExceptionHandlerFunc
}

// Node groups the handlers registered under one command label
type Node struct {
	Name              string
	Aliases           []string
	Description       string
	Requirements      []Requirement
	Parsers           []ArgumentParser
	Handlers          []Handler
	ExceptionHandlers []ExceptionHandler
	Fallback          FallbackFunc
}

// Args are the values bound to a variant's parameters. A skipped optional argument is absent.
type Args struct {
	values  []any
	present []bool
}

// Len returns the number of parameters
func (a Args) Len() int {
	return len(a.values)
}

// Get returns the value at index i, or nil when it is absent or out of range
func (a Args) Get(i int) any {
	if i < 0 || i >= len(a.values) {
		return nil
	}

	return a.values[i]
}

// Has reports whether a value was bound at index i
func (a Args) Has(i int) bool {
	return i >= 0 && i < len(a.present) && a.present[i]
}

// Arg returns the value at index i converted to T. The second return is false when the value is
// absent or of another type.
func Arg[T any](a Args, i int) (T, bool) {
	var zero T
	if !a.Has(i) {
		return zero, false
	}

	v, ok := a.values[i].(T)
	if !ok {
		return zero, false
	}

	return v, true
}

// ArgOr returns the value at index i or def when it is absent
func ArgOr[T any](a Args, i int, def T) T {
	if v, ok := Arg[T](a, i); ok {
		return v
	}

	return def
}

// NewArgs builds Args from explicit values, mostly useful when invoking handlers directly
func NewArgs(values ...any) Args {
	present := make([]bool, len(values))
	for i, v := range values {
		present[i] = v != nil
	}

	return Args{values: values, present: present}
}
