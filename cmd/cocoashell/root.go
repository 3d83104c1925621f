package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type options struct {
	player   string
	verbose  bool
	unquoted bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "cocoashell",
		Short: "An interactive console for the cocoa command engine",
		Long: `cocoashell reads command lines, dispatches them against a small set of demo
commands and prints the outcome. On a terminal TAB completes the current word.

Environment:
  COCOA_SHELL_PROMPT         prompt shown before each line
  COCOA_SHELL_HISTORY        number of lines kept by "history"
  COCOA_SHELL_LOG_LEVEL      debug, info, warn or error
  COCOA_SHELL_OTEL_ENDPOINT  OTLP/HTTP endpoint receiving dispatch spans
  COCOA_SHELL_QUOTED         honour shell style quoting
  COCOA_SHELL_PLAYER_CACHE   how long player lookups are cached`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, opts, func(ctx context.Context, s *shell) error {
				return s.run(ctx, cmd.InOrStdin())
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.player, "player", "p", "", "send lines as this player instead of the console")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log dispatch details")
	rootCmd.PersistentFlags().BoolVar(&opts.unquoted, "unquoted", false, "split lines on whitespace only")

	rootCmd.AddCommand(newExecCmd(opts), newTreeCmd(opts))

	return rootCmd
}

func newExecCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <line>...",
		Short: "Dispatch a single command line and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, opts, func(ctx context.Context, s *shell) error {
				s.exec(ctx, strings.Join(args, " "))
				return nil
			})
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
			var out []cobra.Completion
			_ = withShell(cmd, opts, func(ctx context.Context, s *shell) error {
				line := strings.Join(append(args, toComplete), " ")
				out = s.manager.Complete(ctx, s.sender, line)
				return nil
			})
			return out, cobra.ShellCompDirectiveNoFileComp
		},
	}
}

func newTreeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the registered command tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, opts, func(ctx context.Context, s *shell) error {
				s.manager.PrintCommands(s.out)
				return nil
			})
		},
	}
}

// withShell loads the configuration, installs tracing and runs fn against a fresh shell
func withShell(cmd *cobra.Command, opts *options, fn func(ctx context.Context, s *shell) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.unquoted {
		cfg.QuotedTokens = false
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if opts.verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "cocoashell",
		Level:  level,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tp, shutdown, err := setupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("flush spans", "error", err)
		}
	}()

	s, err := newShell(cfg, opts.player, logger, tp, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	return fn(ctx, s)
}

func execute() int {
	if err := newRootCmd().Execute(); err != nil {
		return 1
	}

	return 0
}
