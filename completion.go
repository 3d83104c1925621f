package commands

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// Complete suggests replacements for the last token of line. The first token completes against the
// registered labels and aliases. Later tokens complete against the keyword edges and parser suggestions
// reachable through the preceding tokens, skipping options whose requirements the sender does not meet.
// A line ending in whitespace completes a new, empty token. Ignore-case keywords are suggested in
// their declared spelling and suggestions are sorted regardless of case.
func (m *Manager) Complete(ctx context.Context, sender Sender, line string) []string {
	tokens, err := m.tokenize(line)
	if err != nil {
		return nil
	}
	if line == "" || unicode.IsSpace(rune(line[len(line)-1])) {
		tokens = append(tokens, "")
	}

	if len(tokens) == 1 {
		return m.completeLabel(tokens[0])
	}

	rc := m.lookup(tokens[0])
	if rc == nil {
		return nil
	}

	c := NewContext(ctx, sender, tokens[0], tokens[1:])
	last := len(c.Args) - 1
	partial := c.Args[last]
	folded := foldKeyword(partial)

	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, found := seen[s]; found {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	walk(c, rc.root, func(s walkState) bool {
		if s.blocked != nil || s.pos > last {
			return false
		}
		if s.pos < last {
			return true
		}

		for _, kw := range s.option.keywordEntries() {
			if !kw.branch.reachable(c) {
				continue
			}
			switch {
			case kw.ignoreCase && strings.HasPrefix(kw.match, folded):
				add(kw.keyword)
			case !kw.ignoreCase && strings.HasPrefix(kw.match, partial):
				add(kw.keyword)
			}
		}
		for _, e := range s.option.typed {
			if e.parser.Invalid() || !e.branch.reachable(c) {
				continue
			}
			for _, suggestion := range e.parser.Parser().Complete(ParseContext{Context: c, Index: last}) {
				add(suggestion)
			}
		}

		// typed edges may skip or consume nothing, keep walking at this position
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := foldKeyword(out[i]), foldKeyword(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})

	return out
}

func (m *Manager) completeLabel(prefix string) []string {
	prefix = foldKeyword(prefix)
	var out []string
	for _, label := range m.Labels() {
		if strings.HasPrefix(label, prefix) {
			out = append(out, label)
		}
	}
	sort.Strings(out)

	return out
}

// reachable reports whether some option of b admits the sender
func (b *commandBranchProcessor) reachable(c *Context) bool {
	for _, opt := range b.options {
		if _, ok := opt.requirements.Meets(c); ok {
			return true
		}
	}

	return false
}
