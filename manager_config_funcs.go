package commands

import (
	"errors"

	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/CyberRei/cocoa-beans/commands/parse"
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
)

// WithLogger replaces the Manager's logger
func WithLogger(logger *log.Logger) ConfigureManagerFunc {
	return func(m *Manager, err *error) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithParsers adds manager-level parsers, available to every node. Node and handler parsers with the same
// keyword take precedence. The first parser given for a keyword wins.
func WithParsers(parsers ...ArgumentParser) ConfigureManagerFunc {
	return func(m *Manager, err *error) {
		for _, p := range parsers {
			if p == nil {
				continue
			}
			if _, found := m.parsers[p.Keyword()]; found {
				m.logger.Warn("parser keyword already registered", "keyword", p.Keyword())
				continue
			}
			m.parsers[p.Keyword()] = p
		}
	}
}

// WithExceptionHandlers registers exception handlers in the manager-global scope, which covers the
// failures of every node
func WithExceptionHandlers(handlers ...ExceptionHandler) ConfigureManagerFunc {
	return func(m *Manager, err *error) {
		for _, h := range handlers {
			if h.Handle == nil {
				*err = errs.ErrNilHandler
				return
			}
			m.seq++
			m.exceptions = insertException(m.exceptions, &handleExceptionVariant{
				matches:  h.Matches,
				handle:   h.Handle,
				priority: h.Priority,
				seq:      m.seq,
			})
		}
	}
}

// WithQuotedTokens switches tokenization to shell-style quoting, so that "a b" is a single token
func WithQuotedTokens(quoted bool) ConfigureManagerFunc {
	return func(m *Manager, err *error) {
		if quoted {
			m.tokenize = parse.Split
		} else {
			m.tokenize = splitFields
		}
	}
}

// WithTracerProvider replaces the global tracer provider used for dispatch spans
func WithTracerProvider(tp trace.TracerProvider) ConfigureManagerFunc {
	return func(m *Manager, err *error) {
		if tp != nil {
			m.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithNodes registers nodes as AddNode does. Registration failures of all nodes are returned joined.
func WithNodes(nodes ...*Node) ConfigureManagerFunc {
	return func(m *Manager, err *error) {
		var errList []error
		for _, n := range nodes {
			if e := m.AddNode(n); e != nil {
				errList = append(errList, e)
			}
		}
		*err = errors.Join(errList...)
	}
}
