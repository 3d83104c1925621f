package commands

import (
	"context"
	"runtime"
	"sort"

	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/ef-ds/deque"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Per-position specificity of a walked path
const (
	specSkipped = iota
	specTyped
	specLiteral
)

// Dispatch runs line on behalf of sender. The first token selects the command label, the remaining tokens
// are matched against the label's handlers. The returned error carries the reason for every outcome but
// Handled; a Handled outcome whose failure was consumed by an exception handler returns nil.
func (m *Manager) Dispatch(ctx context.Context, sender Sender, line string) (outcome Outcome, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := m.tracer.Start(ctx, "commands.Dispatch")
	defer func() {
		span.SetAttributes(attribute.String("commands.outcome", outcome.String()))
		if err != nil {
			span.RecordError(err)
			if outcome != Handled {
				span.SetStatus(codes.Error, outcome.String())
			}
		}
		span.End()
	}()

	tokens, err := m.tokenize(line)
	if err != nil {
		return NoMatchingCommand, errs.ErrTokenize.Wrap(err)
	}
	if len(tokens) == 0 {
		return NoMatchingCommand, errs.ErrEmptyInput
	}

	span.SetAttributes(attribute.String("commands.label", tokens[0]))
	rc := m.lookup(tokens[0])
	if rc == nil {
		m.logger.Debug("unknown label", "label", tokens[0])
		return NoMatchingCommand, errs.ErrCommandNotFound.WithArgs(tokens[0])
	}

	c := NewContext(ctx, sender, tokens[0], tokens[1:])
	return m.execute(c, rc)
}

func (m *Manager) execute(c *Context, rc *registeredCommand) (Outcome, error) {
	var open, blocked []candidate
	for _, cand := range collect(c, rc.root) {
		if cand.blocked != nil {
			blocked = append(blocked, cand)
		} else {
			open = append(open, cand)
		}
	}
	sortCandidates(open)

	var rejected error
	for _, cand := range open {
		if err := cand.checkArguments(); err != nil {
			m.logger.Debug("argument rejected", "label", c.Label, "path", cand.variant.path, "error", err)
			if rejected == nil {
				rejected = err
			}
			continue
		}

		m.logger.Debug("invoking handler", "label", c.Label, "path", cand.variant.path, "priority", cand.variant.priority)
		args := Args{values: cand.values, present: cand.present}
		failure := m.invoke(c, func() error { return cand.variant.invoke(c, args) })
		if failure == nil {
			return Handled, nil
		}

		return m.route(c, rc, cand.variant.owner, failure)
	}

	if rejected != nil {
		return NoMatchingCommand, rejected
	}

	if len(blocked) > 0 {
		sortCandidates(blocked)
		m.logger.Debug("requirements not met", "label", c.Label, "requirement", blocked[0].blocked.Key())
		return RequirementsNotMet, errs.ErrRequirementsNotMet.WithArgs(blocked[0].blocked.Key())
	}

	return m.fallback(c, rc)
}

// fallback hands the line to the first node of the label with a fallback whose node-level requirements pass
func (m *Manager) fallback(c *Context, rc *registeredCommand) (Outcome, error) {
	for _, rn := range rc.nodes {
		if rn.node.Fallback == nil {
			continue
		}
		if _, ok := rn.requirements.Meets(c); !ok {
			continue
		}

		fallback := rn.node.Fallback
		if failure := m.invoke(c, func() error { return fallback(c) }); failure != nil {
			return m.route(c, rc, rn.node, failure)
		}

		return Handled, nil
	}

	return NoMatchingCommand, errs.ErrNoMatchingVariant.WithArgs(c.Label)
}

// invoke runs fn, turning a panic into a *PanicError
func (m *Manager) invoke(c *Context, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			stack = stack[:runtime.Stack(stack, false)]
			m.logger.Error("handler panicked", "label", c.Label, "panic", r)
			err = &PanicError{Value: r, Stack: stack}
		}
	}()

	return fn()
}

// candidate is a variant reached with every token consumed
type candidate struct {
	variant     *commandVariant
	values      []any
	present     []bool
	specificity []int
	blocked     Requirement
}

func (cand candidate) checkArguments() error {
	for i, p := range cand.variant.params {
		if !cand.present[i] {
			continue
		}
		for _, r := range p.Requirements {
			if err := r.Check(cand.values[i]); err != nil {
				return errs.ErrInvalidArgument.WithArgs(i + 1).Wrap(err)
			}
		}
	}

	return nil
}

// walkState is a position in the tree together with what was bound on the way there
type walkState struct {
	option      *commandOption
	pos         int
	values      []any
	present     []bool
	specificity []int
	blocked     Requirement
}

func (s walkState) advance(n, spec int) walkState {
	next := s
	next.pos += n
	next.specificity = appendCopy(s.specificity, spec)

	return next
}

func (s walkState) bind(n int, value any, present bool, spec int) walkState {
	next := s.advance(n, spec)
	next.values = appendCopy(s.values, value)
	next.present = appendCopy(s.present, present)

	return next
}

// collect explores every path of the tree matching c.Args. Options behind a failing gate are explored
// too; their candidates carry the first requirement that failed.
func collect(c *Context, root *commandBranchProcessor) []candidate {
	var out []candidate
	walk(c, root, func(s walkState) bool {
		if s.pos != len(c.Args) {
			return true
		}
		for _, variant := range s.option.variants {
			if len(variant.params) != len(s.values) {
				continue
			}
			out = append(out, candidate{
				variant:     variant,
				values:      s.values,
				present:     s.present,
				specificity: s.specificity,
				blocked:     s.blocked,
			})
		}

		return true
	})

	return out
}

// walk visits every option reachable from root along c.Args, depth first. The edges of a state are
// followed only when visit returns true.
func walk(c *Context, root *commandBranchProcessor, visit func(s walkState) bool) {
	stack := deque.New()
	enter := func(branch *commandBranchProcessor, from walkState) {
		for _, opt := range branch.options {
			next := from
			next.option = opt
			if next.blocked == nil {
				if failed, ok := opt.requirements.Meets(c); !ok {
					next.blocked = failed
				}
			}
			stack.PushBack(next)
		}
	}
	enter(root, walkState{})

	for stack.Len() > 0 {
		v, _ := stack.PopBack()
		s := v.(walkState)
		if !visit(s) {
			continue
		}

		if s.pos < len(c.Args) {
			for _, branch := range s.option.matchKeyword(c.Args[s.pos]) {
				enter(branch, s.advance(1, specLiteral))
			}
		}
		for _, e := range s.option.typed {
			res, err := e.parser.parse(ParseContext{Context: c, Index: s.pos})
			if err != nil {
				continue
			}
			enter(e.branch, s.bind(res.Consumed, res.Value, true, specTyped))
		}
		for _, e := range s.option.optional {
			enter(e.branch, s.bind(0, nil, false, specSkipped))
		}
	}
}

// sortCandidates orders by priority, then specificity, then declaration order
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.variant.priority != b.variant.priority {
			return a.variant.priority > b.variant.priority
		}
		if cmp := compareSpecificity(a.specificity, b.specificity); cmp != 0 {
			return cmp > 0
		}

		return a.variant.seq < b.variant.seq
	})
}

// compareSpecificity compares position by position. On an equal prefix the longer path is more specific.
func compareSpecificity(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}

	return len(a) - len(b)
}

func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)

	return append(out, v)
}
