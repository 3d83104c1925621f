package commands

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/charmbracelet/log"
	orderedmap "github.com/wk8/go-ordered-map"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/CyberRei/cocoa-beans/commands"

// Manager owns the registered command tree and dispatches command lines against it.
// Registration must complete before lines are dispatched concurrently.
type Manager struct {
	mu sync.RWMutex
	// folded label or alias -> *registeredCommand
	commands   *orderedmap.OrderedMap
	order      []*registeredCommand
	parsers    map[string]ArgumentParser
	exceptions []*handleExceptionVariant
	logger     *log.Logger
	tracer     trace.Tracer
	tokenize   func(line string) ([]string, error)
	seq        uint64
}

// NewManager creates a Manager with default settings: whitespace tokenization, a warn level logger
// writing to stderr and the global tracer provider.
func NewManager() *Manager {
	return &Manager{
		commands: orderedmap.New(),
		parsers:  make(map[string]ArgumentParser),
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "commands",
			Level:  log.WarnLevel,
		}),
		tracer:   otel.GetTracerProvider().Tracer(tracerName),
		tokenize: splitFields,
	}
}

// NewManagerWith allows initialization of Manager using option functions. The caller should always
// test for error on return because Manager will be nil when an error occurs during initialization.
//
//	m, err := NewManagerWith(
//		WithLogger(logger),
//		WithParsers(parsers.Int(0), parsers.String(0)),
//		WithExceptionHandlers(commands.ExceptionHandler{
//			Matches: []commands.ErrorMatcher{commands.AnyError()},
//			Handle:  report,
//		}),
//		WithNodes(&give, &reset))
func NewManagerWith(configs ...ConfigureManagerFunc) (*Manager, error) {
	m := NewManager()

	var err error
	for _, config := range configs {
		config(m, &err)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// AddNode registers every handler and exception handler of node under its name and aliases.
// Nodes added under a label that is already known share that label's tree. A handler that fails to
// register is skipped without altering the tree; the failures of all handlers are returned joined.
func (m *Manager) AddNode(node *Node) error {
	if node == nil || strings.TrimSpace(node.Name) == "" {
		return errs.ErrRegistration.WithArgs("", "").Wrap(errs.ErrEmptyLabel)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rc := m.labelCommand(node)
	nodeRequirements := NewRequirementSet(node.Requirements...)
	rc.nodes = append(rc.nodes, registeredNode{node: node, requirements: nodeRequirements})

	nodeParsers := make(map[string]ArgumentParser, len(node.Parsers)+len(m.parsers))
	putParsers(nodeParsers, node.Parsers...)
	for k, p := range m.parsers {
		if _, found := nodeParsers[k]; !found {
			nodeParsers[k] = p
		}
	}

	var errList []error
	for _, h := range node.Handlers {
		if err := m.register(rc, node, nodeRequirements, nodeParsers, h); err != nil {
			err = errs.ErrRegistration.WithArgs(h.Path, node.Name).Wrap(err)
			m.logger.Warn("skipping handler", "label", rc.label, "path", h.Path, "error", err)
			errList = append(errList, err)
		}
	}

	for _, eh := range node.ExceptionHandlers {
		if eh.Handle == nil {
			err := errs.ErrRegistration.WithArgs("", node.Name).Wrap(errs.ErrNilHandler)
			m.logger.Warn("skipping exception handler", "label", rc.label, "error", err)
			errList = append(errList, err)
			continue
		}
		m.seq++
		rc.addException(&handleExceptionVariant{
			matches:  eh.Matches,
			handle:   eh.Handle,
			owner:    node,
			priority: eh.Priority,
			seq:      m.seq,
		})
	}

	return errors.Join(errList...)
}

// labelCommand returns the registeredCommand for node's name, creating it and binding aliases as needed.
// An alias already bound to another label is skipped.
func (m *Manager) labelCommand(node *Node) *registeredCommand {
	label := foldKeyword(strings.TrimSpace(node.Name))

	var rc *registeredCommand
	if v, found := m.commands.Get(label); found {
		rc = v.(*registeredCommand)
	} else {
		rc = newRegisteredCommand(label)
		m.commands.Set(label, rc)
		m.order = append(m.order, rc)
	}

	for _, alias := range node.Aliases {
		alias = foldKeyword(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		if v, found := m.commands.Get(alias); found {
			if v.(*registeredCommand) != rc {
				m.logger.Warn("alias already bound", "alias", alias, "label", v.(*registeredCommand).label)
			}
			continue
		}
		m.commands.Set(alias, rc)
		rc.aliases = append(rc.aliases, alias)
	}

	return rc
}

func (m *Manager) register(rc *registeredCommand, node *Node, nodeRequirements RequirementSet, nodeParsers map[string]ArgumentParser, h Handler) error {
	if h.Invoke == nil {
		return errs.ErrNilHandler
	}

	table := nodeParsers
	if len(h.Parsers) > 0 {
		table = make(map[string]ArgumentParser, len(h.Parsers)+len(nodeParsers))
		putParsers(table, h.Parsers...)
		for k, p := range nodeParsers {
			if _, found := table[k]; !found {
				table[k] = p
			}
		}
	}

	segments, err := parsePath(h.Path, table)
	if err != nil {
		return err
	}

	var edges []RegisterArgumentParser
	for _, seg := range segments {
		if seg.typed {
			edges = append(edges, seg.edge)
		}
	}

	params := h.Params
	switch {
	case params == nil:
		params = make([]Parameter, len(edges))
		for i, e := range edges {
			params[i] = Parameter{Name: e.Parser().Keyword(), Type: e.Type()}
		}
	case len(params) != len(edges):
		return errs.ErrArityMismatch.WithArgs(len(params), len(edges))
	default:
		params = append([]Parameter(nil), params...)
		for i, e := range edges {
			if err := bindParamType(&params[i], e); err != nil {
				return err
			}
		}
	}

	handlerRequirements := nodeRequirements.Union(NewRequirementSet(h.Requirements...))

	var opt *commandOption
	if len(segments) == 0 {
		opt = rc.root.option(handlerRequirements)
	} else {
		opt = rc.root.option(nodeRequirements)
		for i, seg := range segments {
			gate := RequirementSet{}
			if i == 0 {
				gate = handlerRequirements
			}

			var branch *commandBranchProcessor
			if seg.typed {
				branch = opt.typedBranch(seg.edge)
			} else {
				branch = opt.keywordBranch(seg.literal, h.IgnoreCase)
			}
			opt = branch.option(gate)
		}
	}

	m.seq++
	opt.addVariant(&commandVariant{
		path:        strings.Join(strings.Fields(h.Path), " "),
		description: h.Description,
		params:      params,
		invoke:      h.Invoke,
		owner:       node,
		priority:    h.Priority,
		seq:         m.seq,
	})
	m.logger.Debug("registered handler", "label", rc.label, "path", h.Path, "priority", h.Priority)

	return nil
}

// bindParamType fills a missing parameter type from its edge. A pointer parameter also accepts the
// pointed-to type, so optional segments can bind to *T.
func bindParamType(p *Parameter, edge RegisterArgumentParser) error {
	yields := edge.Type()
	switch {
	case p.Type == nil:
		p.Type = yields
	case yields.AssignableTo(p.Type):
	case p.Type.Kind() == reflect.Ptr && yields.AssignableTo(p.Type.Elem()):
	default:
		return errs.ErrParamType.WithArgs(p.Name, p.Type, yields)
	}

	return nil
}

type pathSegment struct {
	literal string
	edge    RegisterArgumentParser
	typed   bool
}

// parsePath resolves every segment of path before anything is added to the tree
func parsePath(path string, parsers map[string]ArgumentParser) ([]pathSegment, error) {
	fields := strings.Fields(path)
	segments := make([]pathSegment, 0, len(fields))
	for _, f := range fields {
		opening, closing := strings.HasPrefix(f, "<"), strings.HasSuffix(f, ">")
		if !opening && !closing {
			segments = append(segments, pathSegment{literal: f})
			continue
		}
		if !opening || !closing || len(f) < 3 {
			return nil, errs.ErrMalformedPath.WithArgs(f)
		}

		name := f[1 : len(f)-1]
		var optional, invalid bool
	flags:
		for name != "" {
			switch name[0] {
			case '?':
				if optional {
					return nil, errs.ErrMalformedPath.WithArgs(f)
				}
				optional = true
			case '!':
				if invalid {
					return nil, errs.ErrMalformedPath.WithArgs(f)
				}
				invalid = true
			default:
				break flags
			}
			name = name[1:]
		}
		if name == "" || strings.ContainsAny(name, "<>?!") {
			return nil, errs.ErrMalformedPath.WithArgs(f)
		}

		p, found := parsers[name]
		if !found {
			return nil, errs.ErrParserNotFound.WithArgs(name)
		}
		segments = append(segments, pathSegment{edge: NewRegisterArgumentParser(p, optional, invalid), typed: true})
	}

	return segments, nil
}

// putParsers adds parsers to table by keyword, keeping the first parser seen for a keyword
func putParsers(table map[string]ArgumentParser, parsers ...ArgumentParser) {
	for _, p := range parsers {
		if p == nil {
			continue
		}
		if _, found := table[p.Keyword()]; !found {
			table[p.Keyword()] = p
		}
	}
}

// lookup resolves a label or alias, ignoring case
func (m *Manager) lookup(label string) *registeredCommand {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, found := m.commands.Get(foldKeyword(label)); found {
		return v.(*registeredCommand)
	}

	return nil
}

// HasCommand reports whether label names a registered command or alias
func (m *Manager) HasCommand(label string) bool {
	return m.lookup(label) != nil
}

// Labels returns every registered label and alias, folded, in registration order
func (m *Manager) Labels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, m.commands.Len())
	for pair := m.commands.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key.(string))
	}

	return out
}

func splitFields(line string) ([]string, error) {
	return strings.Fields(line), nil
}
