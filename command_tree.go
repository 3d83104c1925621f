package commands

import (
	orderedmap "github.com/wk8/go-ordered-map"
	"golang.org/x/text/cases"
)

// commandBranchProcessor is reached through a keyword or typed edge. It holds one commandOption per
// distinct requirement set, more restrictive gates first.
type commandBranchProcessor struct {
	options []*commandOption
}

func newCommandBranchProcessor() *commandBranchProcessor {
	return &commandBranchProcessor{}
}

// option returns the child gated by requirements, creating it when missing
func (b *commandBranchProcessor) option(requirements RequirementSet) *commandOption {
	if opt := b.lookup(requirements); opt != nil {
		return opt
	}

	opt := newCommandOption(requirements)
	i := 0
	for i < len(b.options) && b.options[i].requirements.Len() >= requirements.Len() {
		i++
	}
	b.options = append(b.options, nil)
	copy(b.options[i+1:], b.options[i:])
	b.options[i] = opt

	return opt
}

func (b *commandBranchProcessor) lookup(requirements RequirementSet) *commandOption {
	for _, opt := range b.options {
		if opt.requirements.Equal(requirements) {
			return opt
		}
	}

	return nil
}

// typedEdge links a commandOption to the branch reached by a successful (or skipped) typed argument
type typedEdge struct {
	parser RegisterArgumentParser
	branch *commandBranchProcessor
}

// commandOption is a tree node behind a requirement gate
type commandOption struct {
	requirements RequirementSet
	variants     []*commandVariant
	// keyword -> *commandBranchProcessor
	keywords *orderedmap.OrderedMap
	// folded keyword -> foldedEdge
	keywordsIgnoreCase *orderedmap.OrderedMap
	typed              []typedEdge
	optional           []typedEdge
}

func newCommandOption(requirements RequirementSet) *commandOption {
	return &commandOption{
		requirements:       requirements,
		keywords:           orderedmap.New(),
		keywordsIgnoreCase: orderedmap.New(),
	}
}

// foldedEdge is an ignore-case keyword edge. declared is the spelling it was first registered with.
type foldedEdge struct {
	declared string
	branch   *commandBranchProcessor
}

// keywordBranch returns the branch behind keyword, creating it when missing
func (o *commandOption) keywordBranch(keyword string, ignoreCase bool) *commandBranchProcessor {
	if !ignoreCase {
		if v, found := o.keywords.Get(keyword); found {
			return v.(*commandBranchProcessor)
		}
		branch := newCommandBranchProcessor()
		o.keywords.Set(keyword, branch)
		return branch
	}

	folded := foldKeyword(keyword)
	if v, found := o.keywordsIgnoreCase.Get(folded); found {
		return v.(foldedEdge).branch
	}
	branch := newCommandBranchProcessor()
	o.keywordsIgnoreCase.Set(folded, foldedEdge{declared: keyword, branch: branch})

	return branch
}

// matchKeyword returns the branches matching token, case-sensitive table first
func (o *commandOption) matchKeyword(token string) []*commandBranchProcessor {
	var out []*commandBranchProcessor
	if v, found := o.keywords.Get(token); found {
		out = append(out, v.(*commandBranchProcessor))
	}
	if v, found := o.keywordsIgnoreCase.Get(foldKeyword(token)); found {
		out = append(out, v.(foldedEdge).branch)
	}

	return out
}

// typedBranch returns the branch behind an edge equal to parser, creating the edge when missing.
// Edges stay sorted by descending priority, in declaration order on ties.
func (o *commandOption) typedBranch(parser RegisterArgumentParser) *commandBranchProcessor {
	var branch *commandBranchProcessor
	for _, e := range o.typed {
		if e.parser.Equal(parser) {
			branch = e.branch
			break
		}
	}

	if branch == nil {
		branch = newCommandBranchProcessor()
		o.typed = insertEdge(o.typed, typedEdge{parser: parser, branch: branch})
	}

	if parser.Optional() {
		found := false
		for _, e := range o.optional {
			if e.parser.Equal(parser) {
				found = true
				break
			}
		}
		if !found {
			o.optional = insertEdge(o.optional, typedEdge{parser: parser, branch: branch})
		}
	}

	return branch
}

func (o *commandOption) addVariant(v *commandVariant) {
	i := 0
	for i < len(o.variants) && o.variants[i].priority >= v.priority {
		i++
	}
	o.variants = append(o.variants, nil)
	copy(o.variants[i+1:], o.variants[i:])
	o.variants[i] = v
}

// keywordEntry is one keyword edge as seen by walkers. keyword is the declared spelling, match the
// key tokens are compared against (folded for ignore-case edges).
type keywordEntry struct {
	keyword    string
	match      string
	ignoreCase bool
	branch     *commandBranchProcessor
}

// keywordEntries lists keyword edges in insertion order, case-sensitive table first
func (o *commandOption) keywordEntries() []keywordEntry {
	var out []keywordEntry
	for pair := o.keywords.Oldest(); pair != nil; pair = pair.Next() {
		kw := pair.Key.(string)
		out = append(out, keywordEntry{keyword: kw, match: kw, branch: pair.Value.(*commandBranchProcessor)})
	}
	for pair := o.keywordsIgnoreCase.Oldest(); pair != nil; pair = pair.Next() {
		e := pair.Value.(foldedEdge)
		out = append(out, keywordEntry{keyword: e.declared, match: pair.Key.(string), ignoreCase: true, branch: e.branch})
	}

	return out
}

func insertEdge(edges []typedEdge, e typedEdge) []typedEdge {
	i := 0
	for i < len(edges) && edges[i].parser.Priority() >= e.parser.Priority() {
		i++
	}
	edges = append(edges, typedEdge{})
	copy(edges[i+1:], edges[i:])
	edges[i] = e

	return edges
}

// foldKeyword case folds s. cases.Caser is stateful, so a fresh one is used per call.
func foldKeyword(s string) string {
	return cases.Fold().String(s)
}
