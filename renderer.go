package commands

import (
	"fmt"
	"io"
	"strings"
)

// treeEntry is one edge of the command tree as it is rendered
type treeEntry struct {
	name        string
	description string
	branch      *commandBranchProcessor
}

// children lists the edges leaving every option of b, keyword edges first
func (b *commandBranchProcessor) children() []treeEntry {
	var out []treeEntry
	for _, opt := range b.options {
		for _, kw := range opt.keywordEntries() {
			out = append(out, treeEntry{name: kw.keyword, description: kw.branch.description(), branch: kw.branch})
		}
		for _, e := range opt.typed {
			out = append(out, treeEntry{name: e.parser.String(), description: e.branch.description(), branch: e.branch})
		}
	}

	return out
}

// description returns the description of the first variant terminating at b
func (b *commandBranchProcessor) description() string {
	for _, opt := range b.options {
		for _, v := range opt.variants {
			if v.description != "" {
				return v.description
			}
		}
	}

	return ""
}

func (rc *registeredCommand) description() string {
	for _, rn := range rc.nodes {
		if rn.node.Description != "" {
			return rn.node.Description
		}
	}

	return rc.root.description()
}

// visitTree traverses e and the edges below it from top to bottom
func visitTree(e treeEntry, visitor func(e treeEntry, level int) bool, level int) {
	if visitor != nil {
		if !visitor(e, level) {
			return
		}
	}

	for _, child := range e.branch.children() {
		visitTree(child, visitor, level+1)
	}
}

// PrintCommands writes the registered command tree to io.Writer
func (m *Manager) PrintCommands(writer io.Writer) {
	m.PrintCommandsUsing(writer, &PrettyPrintConfig{
		NewCommandPrefix:     " +",
		DefaultPrefix:        " │",
		TerminalPrefix:       " └",
		OuterLevelBindPrefix: "─",
	})
}

// PrintCommandsUsing writes the registered command tree to io.Writer using PrettyPrintConfig.
// Every label is rendered at level 0 followed by the keyword and typed edges below it, one level
// per path segment.
func (m *Manager) PrintCommandsUsing(writer io.Writer, config *PrettyPrintConfig) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rc := range m.order {
		root := treeEntry{name: rc.label, description: rc.description(), branch: rc.root}
		visitTree(root, func(e treeEntry, level int) bool {
			var start = config.DefaultPrefix
			switch {
			case level == 0:
				start = config.NewCommandPrefix
			case len(e.branch.children()) == 0:
				start = config.TerminalPrefix
			}
			var bind string
			if level > 0 {
				bind = config.InnerLevelBindPrefix
			}
			line := fmt.Sprintf("%s%s%s %s \"%s\"\n", start, bind, strings.Repeat(config.OuterLevelBindPrefix, level),
				e.name, e.description)
			if _, err := io.WriteString(writer, line); err != nil {
				return false
			}

			return true
		}, 0)
	}
}
