package i18n

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// TranslatableError represents an error that can be translated
type TranslatableError interface {
	error
	Key() string
	Args() []interface{}
	Unwrap() error
	WithArgs(args ...interface{}) TranslatableError
	Wrap(err error) TranslatableError
}

// TrError is a translatable error with optional format arguments and a wrapped cause. Copies made by
// WithArgs and Wrap keep the sentinel of the error they were derived from, so errors.Is matches them
// against the package-level error value.
//
//	err := NewError("cocoa.error.parser_not_found")
//	err = err.WithArgs("int")
//	err = err.Wrap(cause)
type TrError struct {
	sentinel error
	key      string
	args     []interface{}
	wrapped  error
}

// NewError creates a new translatable error with a key
func NewError(key string) *TrError {
	return &TrError{sentinel: errors.New(key), key: key}
}

// Error returns the message in the default language, formatted with args if provided
func (e *TrError) Error() string {
	msg := Default().message(e.key)
	if len(e.args) > 0 {
		msg = fmt.Sprintf(msg, e.args...)
	}

	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", msg, e.wrapped)
	}
	return msg
}

// WithArgs returns a copy of the error with format arguments
func (e *TrError) WithArgs(args ...interface{}) TranslatableError {
	return &TrError{sentinel: e.sentinel, key: e.key, args: args, wrapped: e.wrapped}
}

// Wrap returns a new error that wraps another error
func (e *TrError) Wrap(err error) TranslatableError {
	return &TrError{sentinel: e.sentinel, key: e.key, args: e.args, wrapped: err}
}

// Is implements errors.Is for comparison with the sentinel error
func (e *TrError) Is(target error) bool {
	if t, ok := target.(*TrError); ok {
		return e.sentinel == t.sentinel
	}
	return target == e.sentinel || target == e
}

// Key returns the translation key
func (e *TrError) Key() string {
	return e.key
}

// Args returns the format arguments
func (e *TrError) Args() []interface{} {
	return e.args
}

// Unwrap returns the wrapped error
func (e *TrError) Unwrap() error {
	return e.wrapped
}

// Localize renders err in lang when it is (or wraps) a TranslatableError.
// Other errors are returned verbatim.
func Localize(b *Bundle, lang language.Tag, err error) string {
	var tr TranslatableError
	if !errors.As(err, &tr) {
		return err.Error()
	}

	msg := b.TL(lang, tr.Key(), tr.Args()...)
	if inner := tr.Unwrap(); inner != nil {
		return msg + ": " + Localize(b, lang, inner)
	}
	return msg
}
