package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CyberRei/cocoa-beans/commands"
	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/CyberRei/cocoa-beans/commands/i18n"
	"github.com/charmbracelet/log"
	"github.com/ef-ds/deque"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/term"
	"golang.org/x/text/language"
)

// history keeps the most recent lines, oldest first
type history struct {
	lines *deque.Deque
	limit int
}

func newHistory(limit int) *history {
	if limit < 1 {
		limit = 1
	}

	return &history{lines: deque.New(), limit: limit}
}

func (h *history) add(line string) {
	h.lines.PushBack(line)
	for h.lines.Len() > h.limit {
		h.lines.PopFront()
	}
}

func (h *history) entries() []string {
	n := h.lines.Len()
	out := make([]string, 0, n)
	// rotate once through the deque, it has no indexed access
	for i := 0; i < n; i++ {
		v, _ := h.lines.PopFront()
		out = append(out, v.(string))
		h.lines.PushBack(v)
	}

	return out
}

func (h *history) clear() {
	h.lines.Init()
}

type shell struct {
	manager *commands.Manager
	world   *world
	sender  commands.Sender
	history *history
	bundle  *i18n.Bundle
	lang    language.Tag
	prompt  string
	logger  *log.Logger
	out     io.Writer
}

// newShell builds the demo command set. An empty playerName makes the console the sender.
func newShell(cfg Config, playerName string, logger *log.Logger, tp trace.TracerProvider, out io.Writer) (*shell, error) {
	bundle := i18n.Default()
	s := &shell{
		world:   newWorld("alex", "steve"),
		sender:  console{},
		history: newHistory(cfg.History),
		bundle:  bundle,
		lang:    bundle.Match(languageTag(cfg.Lang)),
		prompt:  cfg.Prompt,
		logger:  logger,
		out:     out,
	}
	if playerName != "" {
		s.sender = s.world.join(playerName)
	}

	nodes, err := s.demoNodes(cfg.PlayerCache)
	if err != nil {
		return nil, err
	}

	s.manager, err = commands.NewManagerWith(
		commands.WithLogger(logger),
		commands.WithTracerProvider(tp),
		commands.WithQuotedTokens(cfg.QuotedTokens),
		commands.WithParsers(demoParsers()...),
		commands.WithExceptionHandlers(commands.ExceptionHandler{
			Matches:  []commands.ErrorMatcher{commands.ErrorIs(errs.ErrParseUnknown)},
			Priority: -1,
			Handle: func(c *commands.Context, err error) error {
				s.printf("%s", i18n.Localize(s.bundle, s.lang, err))
				return nil
			},
		}),
		commands.WithNodes(nodes...))
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *shell) printHistory() {
	for i, line := range s.history.entries() {
		s.printf("%s", s.bundle.TL(s.lang, errs.MsgHistoryEntryKey, i+1, line))
	}
}

// exec dispatches one line and prints its outcome. It returns false when the line ends the session.
func (s *shell) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return true
	case "exit", "quit":
		return false
	}

	s.history.add(line)
	outcome, err := s.manager.Dispatch(ctx, s.sender, line)
	s.report(outcome, err)

	return true
}

func (s *shell) report(outcome commands.Outcome, err error) {
	if err == nil {
		return
	}
	s.logger.Debug("dispatch failed", "outcome", outcome, "error", err)

	switch {
	case errors.Is(err, errs.ErrCommandNotFound):
		s.printf("%s", s.bundle.TL(s.lang, errs.MsgUnknownCommandKey))
	case outcome == commands.RequirementsNotMet:
		s.printf("%s", s.bundle.TL(s.lang, errs.MsgNoPermissionKey))
	case outcome == commands.Unhandled:
		s.logger.Error("command failed", "error", err)
		s.printf("%s", s.bundle.TL(s.lang, errs.MsgInternalErrorKey, i18n.Localize(s.bundle, s.lang, err)))
	default:
		s.printf("%s", i18n.Localize(s.bundle, s.lang, err))
	}
}

// run reads lines from in until EOF or exit. A terminal is switched to raw mode and completes on TAB.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	if f, ok := in.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		return s.runTerminal(ctx, int(f.Fd()), in)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !s.exec(ctx, scanner.Text()) {
			return nil
		}
	}

	return scanner.Err()
}

func (s *shell) runTerminal(ctx context.Context, fd int, in io.Reader) error {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			s.logger.Error("restore terminal", "error", err)
		}
	}()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, s.out}, s.prompt)
	if w, _, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, 0)
	}
	t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' {
			return "", 0, false
		}
		suggestions := s.manager.Complete(ctx, s.sender, line[:pos])
		newLine, newPos, ok := completeLine(line, pos, suggestions)
		if !ok && len(suggestions) > 1 {
			fmt.Fprintln(t, strings.Join(suggestions, "  "))
		}
		return newLine, newPos, ok
	}

	out := s.out
	s.out = t
	defer func() { s.out = out }()

	s.printf("%s", s.bundle.TL(s.lang, errs.MsgWelcomeKey))
	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !s.exec(ctx, line) {
			return nil
		}
	}
}

// completeLine replaces the word ending at pos with the single suggestion, or extends it to the
// longest prefix shared by all suggestions. ok is false when the line is left unchanged.
func completeLine(line string, pos int, suggestions []string) (newLine string, newPos int, ok bool) {
	if len(suggestions) == 0 || pos > len(line) {
		return "", 0, false
	}

	start := strings.LastIndexFunc(line[:pos], unicode.IsSpace)
	if start < 0 {
		start = 0
	} else {
		_, size := utf8.DecodeRuneInString(line[start:])
		start += size
	}
	word := line[start:pos]

	replacement := suggestions[0] + " "
	if len(suggestions) > 1 {
		replacement = commonPrefix(suggestions)
		if len(replacement) <= len(word) {
			return "", 0, false
		}
	}

	return line[:start] + replacement + line[pos:], start + len(replacement), true
}

func commonPrefix(words []string) string {
	prefix := words[0]
	for _, w := range words[1:] {
		i := 0
		for i < len(prefix) && i < len(w) {
			r1, n1 := utf8.DecodeRuneInString(prefix[i:])
			r2, n2 := utf8.DecodeRuneInString(w[i:])
			if r1 != r2 || n1 != n2 {
				break
			}
			i += n1
		}
		prefix = prefix[:i]
	}

	return prefix
}
