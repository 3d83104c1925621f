package commands

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"
)

func TestManager_DispatchLiteral(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	require.NoError(t, m.AddNode(&Node{
		Name: "give",
		Handlers: []Handler{
			{Path: "all", Invoke: record(&calls, "all")},
			{Path: "all now", Invoke: record(&calls, "all now")},
		},
	}))

	tests := []struct {
		name    string
		line    string
		want    Outcome
		wantErr error
	}{
		{name: "one keyword", line: "give all", want: Handled},
		{name: "two keywords", line: "give  all   now", want: Handled},
		{name: "label case", line: "GIVE all", want: Handled},
		{name: "keyword case", line: "give ALL", want: NoMatchingCommand, wantErr: errs.ErrNoMatchingVariant},
		{name: "extra token", line: "give all later", want: NoMatchingCommand, wantErr: errs.ErrNoMatchingVariant},
		{name: "label only", line: "give", want: NoMatchingCommand, wantErr: errs.ErrNoMatchingVariant},
		{name: "unknown label", line: "take all", want: NoMatchingCommand, wantErr: errs.ErrCommandNotFound},
		{name: "empty", line: "", want: NoMatchingCommand, wantErr: errs.ErrEmptyInput},
		{name: "blank", line: " \t ", want: NoMatchingCommand, wantErr: errs.ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := m.Dispatch(context.Background(), newSender("steve"), tt.line)
			assert.Equal(t, tt.want, outcome)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, []string{"all", "all now", "all"}, calls)
}

func TestManager_DispatchNilContext(t *testing.T) {
	m := newTestManager(t)
	var got context.Context
	require.NoError(t, m.AddNode(&Node{
		Name: "ping",
		Handlers: []Handler{{Path: "", Invoke: func(c *Context, args Args) error {
			got = c.Context()
			return nil
		}}},
	}))

	outcome, err := m.Dispatch(nil, nil, "ping")
	assert.NoError(t, err)
	assert.Equal(t, Handled, outcome)
	assert.NotNil(t, got)
}

func TestManager_DispatchBindsArguments(t *testing.T) {
	m := newTestManager(t)
	var got Args
	var label string
	require.NoError(t, m.AddNode(&Node{
		Name: "give",
		Handlers: []Handler{{
			Path: "<word> item <int>",
			Invoke: func(c *Context, args Args) error {
				got = args
				label = c.Label
				return nil
			},
		}},
	}))

	outcome, err := m.Dispatch(context.Background(), newSender("steve"), "Give alex item 64")
	require.NoError(t, err)
	assert.Equal(t, Handled, outcome)
	assert.Equal(t, "Give", label)
	assert.Equal(t, 2, got.Len())

	player, ok := Arg[string](got, 0)
	assert.True(t, ok)
	assert.Equal(t, "alex", player)
	amount, ok := Arg[int](got, 1)
	assert.True(t, ok)
	assert.Equal(t, 64, amount)

	_, ok = Arg[int](got, 0)
	assert.False(t, ok)
	assert.Equal(t, 7, ArgOr(got, 5, 7))

	outcome, err = m.Dispatch(context.Background(), newSender("steve"), "give alex item many")
	assert.Equal(t, NoMatchingCommand, outcome)
	assert.True(t, errors.Is(err, errs.ErrNoMatchingVariant))
}

func TestManager_DispatchPriority(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	require.NoError(t, m.AddNode(&Node{
		Name: "set",
		Handlers: []Handler{
			{Path: "<int>", Priority: 5, Invoke: record(&calls, "p5")},
			{Path: "<int>", Priority: 10, Invoke: record(&calls, "p10")},
			{Path: "<word>", Priority: 1, Invoke: record(&calls, "word")},
		},
	}))

	_, err := m.Dispatch(context.Background(), newSender("steve"), "set 3")
	require.NoError(t, err)
	_, err = m.Dispatch(context.Background(), newSender("steve"), "set x")
	require.NoError(t, err)

	assert.Equal(t, []string{"p10", "word"}, calls)
}

func TestManager_DispatchSpecificity(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	require.NoError(t, m.AddNode(&Node{
		Name: "give",
		Handlers: []Handler{
			{Path: "<word>", Invoke: record(&calls, "word")},
			{Path: "<int>", Invoke: record(&calls, "int")},
			{Path: "all", Invoke: record(&calls, "all")},
			{Path: "<?int> all", Invoke: record(&calls, "optional all")},
			{Path: "<word>", Invoke: record(&calls, "word again")},
		},
	}))

	tests := []struct {
		line string
		want string
	}{
		{line: "give all", want: "all"},
		// equally specific typed edges fall back to declaration order
		{line: "give 5", want: "word"},
		{line: "give steve", want: "word"},
		{line: "give 5 all", want: "optional all"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			calls = nil
			outcome, err := m.Dispatch(context.Background(), newSender("steve"), tt.line)
			require.NoError(t, err)
			assert.Equal(t, Handled, outcome)
			assert.Equal(t, []string{tt.want}, calls)
		})
	}
}

func TestManager_DispatchOptional(t *testing.T) {
	m := newTestManager(t)
	var got []Args
	capture := func(c *Context, args Args) error {
		got = append(got, args)
		return nil
	}
	require.NoError(t, m.AddNode(&Node{
		Name: "jump",
		Handlers: []Handler{
			{Path: "<?int> go", Invoke: capture},
			{Path: "high <?int> <?word>", Invoke: capture},
		},
	}))

	for _, line := range []string{"jump go", "jump 3 go", "jump high", "jump high 2", "jump high up", "jump high 2 up"} {
		outcome, err := m.Dispatch(context.Background(), newSender("steve"), line)
		require.NoError(t, err, line)
		require.Equal(t, Handled, outcome, line)
	}
	require.Len(t, got, 6)

	assert.False(t, got[0].Has(0))
	assert.Nil(t, got[0].Get(0))
	assert.Equal(t, 3, got[1].Get(0))

	assert.Equal(t, []bool{false, false}, []bool{got[2].Has(0), got[2].Has(1)})
	assert.Equal(t, []any{2, nil}, []any{got[3].Get(0), got[3].Get(1)})
	assert.Equal(t, []any{nil, "up"}, []any{got[4].Get(0), got[4].Get(1)})
	assert.Equal(t, []any{2, "up"}, []any{got[5].Get(0), got[5].Get(1)})
}

func TestManager_DispatchInvalid(t *testing.T) {
	m := newTestManager(t)
	var got []any
	require.NoError(t, m.AddNode(&Node{
		Name: "page",
		Handlers: []Handler{
			{Path: "<!int>", Invoke: func(c *Context, args Args) error {
				got = append(got, args.Get(0))
				return nil
			}},
		},
	}))

	outcome, err := m.Dispatch(context.Background(), newSender("steve"), "page abc")
	require.NoError(t, err)
	assert.Equal(t, Handled, outcome)
	assert.Equal(t, []any{"abc"}, got)

	outcome, _ = m.Dispatch(context.Background(), newSender("steve"), "page 4")
	assert.Equal(t, NoMatchingCommand, outcome)

	outcome, _ = m.Dispatch(context.Background(), newSender("steve"), "page")
	assert.Equal(t, NoMatchingCommand, outcome)
}

func TestManager_DispatchIgnoreCase(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	require.NoError(t, m.AddNode(&Node{
		Name: "world",
		Handlers: []Handler{
			{Path: "Reset", IgnoreCase: true, Invoke: record(&calls, "reset")},
			{Path: "Exact", Invoke: record(&calls, "exact")},
		},
	}))

	for _, line := range []string{"world reset", "world RESET", "world ReSeT", "world Exact"} {
		outcome, err := m.Dispatch(context.Background(), newSender("steve"), line)
		require.NoError(t, err)
		assert.Equal(t, Handled, outcome, line)
	}

	outcome, _ := m.Dispatch(context.Background(), newSender("steve"), "world exact")
	assert.Equal(t, NoMatchingCommand, outcome)
	assert.Equal(t, []string{"reset", "reset", "reset", "exact"}, calls)
}

func TestManager_DispatchRequirements(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	require.NoError(t, m.AddNode(&Node{
		Name: "give",
		Handlers: []Handler{
			{Path: "all", Requirements: []Requirement{permissionRequirement("admin")}, Invoke: record(&calls, "all")},
			{Path: "<word> <int>", Invoke: record(&calls, "word int")},
			{Path: "secret", Requirements: []Requirement{permissionRequirement("admin")}, Invoke: record(&calls, "secret")},
		},
	}))
	require.NoError(t, m.AddNode(&Node{
		Name:         "ban",
		Requirements: []Requirement{permissionRequirement("mod")},
		Handlers:     []Handler{{Path: "<word>", Invoke: record(&calls, "ban")}},
	}))

	tests := []struct {
		name    string
		sender  *testSender
		line    string
		want    Outcome
		wantErr error
	}{
		{name: "blocked handler", sender: newSender("steve"), line: "give secret", want: RequirementsNotMet, wantErr: errs.ErrRequirementsNotMet},
		{name: "permitted handler", sender: newSender("op", "admin"), line: "give secret", want: Handled},
		{name: "blocked node", sender: newSender("steve"), line: "ban alex", want: RequirementsNotMet, wantErr: errs.ErrRequirementsNotMet},
		{name: "permitted node", sender: newSender("mod", "mod"), line: "ban alex", want: Handled},
		{name: "unmatched beats blocked", sender: newSender("steve"), line: "give nothing", want: NoMatchingCommand, wantErr: errs.ErrNoMatchingVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := m.Dispatch(context.Background(), tt.sender, tt.line)
			assert.Equal(t, tt.want, outcome)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				if tt.want == RequirementsNotMet {
					assert.Contains(t, err.Error(), "permission:")
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, []string{"secret", "ban"}, calls)
}

func TestManager_DispatchOpenBeatsBlocked(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	require.NoError(t, m.AddNode(&Node{
		Name: "give",
		Handlers: []Handler{
			{Path: "all", Priority: 10, Requirements: []Requirement{permissionRequirement("admin")}, Invoke: record(&calls, "all")},
			{Path: "<word>", Invoke: record(&calls, "word")},
		},
	}))

	_, err := m.Dispatch(context.Background(), newSender("steve"), "give all")
	require.NoError(t, err)
	_, err = m.Dispatch(context.Background(), newSender("op", "admin"), "give all")
	require.NoError(t, err)

	assert.Equal(t, []string{"word", "all"}, calls)
}

func TestManager_DispatchArgumentRequirements(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	atMost := func(limit int) ArgumentRequirement {
		return ArgumentRequirementFunc(func(value any) error {
			if value.(int) > limit {
				return fmt.Errorf("%d is above %d", value, limit)
			}
			return nil
		})
	}

	require.NoError(t, m.AddNode(&Node{
		Name: "stack",
		Handlers: []Handler{{
			Path: "<word> <?int>",
			Params: []Parameter{
				{Name: "item", Type: reflect.TypeOf("")},
				{Name: "amount", Type: reflect.TypeOf(0), Requirements: []ArgumentRequirement{atMost(64)}},
			},
			Invoke: record(&calls, "stack"),
		}},
	}))

	outcome, err := m.Dispatch(context.Background(), newSender("steve"), "stack dirt 64")
	require.NoError(t, err)
	assert.Equal(t, Handled, outcome)

	// skipped optional arguments are not checked
	outcome, err = m.Dispatch(context.Background(), newSender("steve"), "stack dirt")
	require.NoError(t, err)
	assert.Equal(t, Handled, outcome)

	outcome, err = m.Dispatch(context.Background(), newSender("steve"), "stack dirt 65")
	assert.Equal(t, NoMatchingCommand, outcome)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	assert.Contains(t, err.Error(), "65 is above 64")

	assert.Equal(t, []string{"stack", "stack"}, calls)
}

func TestManager_DispatchFallback(t *testing.T) {
	m := newTestManager(t)
	var calls []string
	boom := errors.New("boom")

	require.NoError(t, m.AddNode(&Node{
		Name:         "help",
		Requirements: []Requirement{permissionRequirement("staff")},
		Handlers:     []Handler{{Path: "staff", Invoke: record(&calls, "staff")}},
		Fallback: func(c *Context) error {
			calls = append(calls, "staff fallback")
			return nil
		},
	}))
	require.NoError(t, m.AddNode(&Node{
		Name:     "help",
		Handlers: []Handler{{Path: "rules", Invoke: record(&calls, "rules")}},
		Fallback: func(c *Context) error {
			calls = append(calls, "fallback")
			if len(c.Args) > 0 && c.Args[0] == "fail" {
				return boom
			}
			return nil
		},
	}))

	outcome, err := m.Dispatch(context.Background(), newSender("steve"), "help me")
	require.NoError(t, err)
	assert.Equal(t, Handled, outcome)

	outcome, err = m.Dispatch(context.Background(), newSender("op", "staff"), "help me")
	require.NoError(t, err)
	assert.Equal(t, Handled, outcome)

	outcome, err = m.Dispatch(context.Background(), newSender("steve"), "help fail")
	assert.Equal(t, Unhandled, outcome)
	assert.True(t, errors.Is(err, boom))

	// blocked variants take precedence over the fallback
	outcome, _ = m.Dispatch(context.Background(), newSender("steve"), "help staff")
	assert.Equal(t, RequirementsNotMet, outcome)

	assert.Equal(t, []string{"fallback", "staff fallback", "fallback"}, calls)
}

func TestManager_DispatchQuotedTokens(t *testing.T) {
	m := newTestManager(t, WithQuotedTokens(true))
	var got []any
	require.NoError(t, m.AddNode(&Node{
		Name: "say",
		Handlers: []Handler{{Path: "<word>", Invoke: func(c *Context, args Args) error {
			got = append(got, args.Get(0))
			return nil
		}}},
	}))

	outcome, err := m.Dispatch(context.Background(), newSender("steve"), `say "hello world"`)
	require.NoError(t, err)
	assert.Equal(t, Handled, outcome)
	assert.Equal(t, []any{"hello world"}, got)

	outcome, err = m.Dispatch(context.Background(), newSender("steve"), `say "hello`)
	assert.Equal(t, NoMatchingCommand, outcome)
	assert.True(t, errors.Is(err, errs.ErrTokenize))
}

func TestManager_DispatchTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	m := newTestManager(t, WithTracerProvider(tp))
	require.NoError(t, m.AddNode(&Node{
		Name:     "ping",
		Handlers: []Handler{{Path: "", Invoke: func(c *Context, args Args) error { return nil }}},
	}))

	_, _ = m.Dispatch(context.Background(), newSender("steve"), "ping")
	_, _ = m.Dispatch(context.Background(), newSender("steve"), "pong")

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	attrs := func(kvs []attribute.KeyValue) map[attribute.Key]string {
		out := make(map[attribute.Key]string)
		for _, kv := range kvs {
			out[kv.Key] = kv.Value.AsString()
		}
		return out
	}

	assert.Equal(t, "commands.Dispatch", spans[0].Name())
	assert.Equal(t, "ping", attrs(spans[0].Attributes())["commands.label"])
	assert.Equal(t, "handled", attrs(spans[0].Attributes())["commands.outcome"])
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "no matching command", attrs(spans[1].Attributes())["commands.outcome"])
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1)
}

func TestManager_DispatchConcurrent(t *testing.T) {
	m := newTestManager(t)

	var sum atomic.Int64
	require.NoError(t, m.AddNode(&Node{
		Name:    "add",
		Parsers: []ArgumentParser{Cached(intParser(0), time.Minute)},
		Handlers: []Handler{{Path: "<int> <int>", Invoke: func(c *Context, args Args) error {
			sum.Add(int64(args.Get(0).(int) + args.Get(1).(int)))
			return nil
		}}},
	}))

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 64; i++ {
		line := fmt.Sprintf("add %d %d", i%4, i%4)
		g.Go(func() error {
			outcome, err := m.Dispatch(ctx, newSender("steve"), line)
			if err != nil {
				return err
			}
			if outcome != Handled {
				return fmt.Errorf("%s: %s", line, outcome)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// 16 dispatches of each of 0+0, 1+1, 2+2, 3+3
	assert.Equal(t, int64(16*(0+2+4+6)), sum.Load())
}
