package commands

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/CyberRei/cocoa-beans/commands/errs"
)

// ErrorMatcher decides whether an exception handler accepts a failure
type ErrorMatcher interface {
	MatchError(err error) bool
}

// ErrorMatcherFunc adapts a function to ErrorMatcher
type ErrorMatcherFunc func(err error) bool

func (f ErrorMatcherFunc) MatchError(err error) bool {
	return f(err)
}

// ErrorIs matches failures for which errors.Is(failure, target) holds
func ErrorIs(target error) ErrorMatcher {
	return ErrorMatcherFunc(func(err error) bool {
		return errors.Is(err, target)
	})
}

// ErrorAs matches failures whose chain holds a value assignable to E. E may be an interface type.
func ErrorAs[E error]() ErrorMatcher {
	return ErrorMatcherFunc(func(err error) bool {
		var target E
		return errors.As(err, &target)
	})
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ErrorType matches failures whose chain holds a value assignable to t. Types that are neither
// interfaces nor implementations of error never match.
func ErrorType(t reflect.Type) ErrorMatcher {
	if t == nil || (t.Kind() != reflect.Interface && !t.Implements(errorType)) {
		return ErrorMatcherFunc(func(error) bool { return false })
	}

	return ErrorMatcherFunc(func(err error) bool {
		return errors.As(err, reflect.New(t).Interface())
	})
}

// AnyError matches every failure
func AnyError() ErrorMatcher {
	return ErrorMatcherFunc(func(err error) bool {
		return err != nil
	})
}

// PanicError is the failure reported for a handler that panicked
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// route offers failure to the exception handlers in scope for owner. Node-level handlers come before
// manager-global ones of the same priority.
func (m *Manager) route(c *Context, rc *registeredCommand, owner *Node, failure error) (Outcome, error) {
	for _, v := range mergeExceptions(rc.exceptions, m.exceptions) {
		if v.owner != nil && v.owner != owner {
			continue
		}
		if !v.accepts(failure) {
			continue
		}

		err := v.handle(c, failure)
		switch {
		case err == nil:
			m.logger.Debug("failure handled", "label", c.Label, "priority", v.priority, "error", failure)
			return Handled, nil
		case errors.Is(err, errs.ErrNotHandled):
			continue
		default:
			return Unhandled, errors.Join(failure, err)
		}
	}

	return Unhandled, failure
}

func mergeExceptions(local, global []*handleExceptionVariant) []*handleExceptionVariant {
	out := make([]*handleExceptionVariant, 0, len(local)+len(global))
	i, j := 0, 0
	for i < len(local) && j < len(global) {
		if local[i].priority >= global[j].priority {
			out = append(out, local[i])
			i++
		} else {
			out = append(out, global[j])
			j++
		}
	}
	out = append(out, local[i:]...)

	return append(out, global[j:]...)
}
