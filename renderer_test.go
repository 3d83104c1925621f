package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arrayWriter struct {
	data *[]string
}

func newArrayWriter() *arrayWriter {
	return &arrayWriter{data: &[]string{}}
}

func (writer arrayWriter) Write(p []byte) (int, error) {
	*writer.data = append(*writer.data, string(p))

	return len(p), nil
}

func TestManager_PrintCommands(t *testing.T) {
	m := newTestManager(t)
	noop := func(c *Context, args Args) error { return nil }
	require.NoError(t, m.AddNode(&Node{
		Name:        "give",
		Description: "Give items",
		Handlers: []Handler{
			{Path: "all", Description: "everything", Invoke: noop},
			{Path: "<word> <?int>", Description: "to a player", Invoke: noop},
		},
	}))
	require.NoError(t, m.AddNode(&Node{
		Name:     "ping",
		Handlers: []Handler{{Path: "", Description: "pong", Invoke: noop}},
	}))

	writer := newArrayWriter()
	m.PrintCommands(writer)

	assert.Equal(t, []string{
		" + give \"Give items\"\n",
		" └─ all \"everything\"\n",
		" │─ <word> \"\"\n",
		" └── <?int> \"to a player\"\n",
		" + ping \"pong\"\n",
	}, *writer.data)
}

func TestManager_PrintCommandsUsing(t *testing.T) {
	m := newTestManager(t)
	noop := func(c *Context, args Args) error { return nil }
	require.NoError(t, m.AddNode(&Node{
		Name: "world",
		Handlers: []Handler{
			{Path: "Reset", IgnoreCase: true, Description: "reset the world", Invoke: noop},
			{Path: "<!int> page", Invoke: noop},
		},
	}))

	var sb strings.Builder
	m.PrintCommandsUsing(&sb, &PrettyPrintConfig{
		NewCommandPrefix:     "*",
		DefaultPrefix:        "|",
		TerminalPrefix:       "`",
		InnerLevelBindPrefix: "-",
		OuterLevelBindPrefix: "  ",
	})

	assert.Equal(t, "* world \"\"\n"+
		"`-   Reset \"reset the world\"\n"+
		"|-   <!int> \"\"\n"+
		"`-     page \"\"\n", sb.String())
}
