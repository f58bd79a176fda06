package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/linkage/internal/config"
	"github.com/roach88/linkage/internal/engine"
	"github.com/roach88/linkage/internal/ingest"
	"github.com/roach88/linkage/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database   string
	Config     string
	Fresh      bool
	Positional bool

	// IDGenerator allows overriding the group id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.GroupIDGenerator
}

// RunSummary is the output of the run command.
type RunSummary struct {
	Input    string             `json:"input"`
	Rows     int                `json:"rows"`
	Rejected []*ingest.RowError `json:"rejected"`
	*engine.Result
}

// String renders the summary for text output.
func (s RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filed %s: %d rows, %d rejected\n", s.Input, s.Rows, len(s.Rejected))
	fmt.Fprintf(&b, "  assigned:      %d\n", s.Assigned)
	fmt.Fprintf(&b, "  groups formed: %d (total %d)\n", s.GroupsFormed, s.GroupsTotal)
	fmt.Fprintf(&b, "  comparisons:   %d\n", s.Comparisons)
	fmt.Fprintf(&b, "  skipped:       %d\n", len(s.Skipped))
	fmt.Fprintf(&b, "  orphans:       %d", len(s.Orphans))
	for _, r := range s.Rejected {
		fmt.Fprintf(&b, "\n  rejected %v", r)
	}
	for _, o := range s.Orphans {
		fmt.Fprintf(&b, "\n  orphan %v", o)
	}
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <records.csv>",
		Short: "File a batch of records into groups",
		Long: `File a CSV batch of records into the group store.

The input has a header row naming Type, ID, Transaction and any attribute
columns, or with --positional no header and the configured
potential_columns order. Groups already in the database are kept and
extended; --fresh clears the database first.

Example:
  linkage run --db ./linkage.db --config ./linkage.yaml records.csv
  linkage run --db ./linkage.db --fresh --positional records.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML or CUE config (defaults to built-in settings)")
	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "clear the database before filing")
	cmd.Flags().BoolVar(&opts.Positional, "positional", false, "input has no header row")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runBatch(opts *RunOptions, input string, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	batch, err := ingest.ReadFile(input, cfg, ingest.Options{Positional: opts.Positional})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to read input", err)
	}
	for _, r := range batch.Rejected {
		logger.Warn("row rejected", "input", input, "row", r.Row, "error", r.Err)
	}
	logger.Info("input read", "input", input, "records", len(batch.Records), "rejected", len(batch.Rejected))

	logger.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.IDGenerator != nil {
		engineOpts = append(engineOpts, engine.WithIDGenerator(opts.IDGenerator))
	}
	eng, err := engine.New(st, cfg, engineOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to create engine", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := eng.Run
	if opts.Fresh {
		run = eng.RunFresh
	}
	res, err := run(ctx, batch.Records)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("batch interrupted; records filed so far are kept")
		}
		return formatter.Fail(ExitFailure, ErrCodeStore, "batch failed", err)
	}

	rejected := batch.Rejected
	if rejected == nil {
		rejected = []*ingest.RowError{}
	}
	return formatter.Success(RunSummary{
		Input:    input,
		Rows:     len(batch.Records) + len(batch.Rejected),
		Rejected: rejected,
		Result:   res,
	})
}

// loadConfig reads path, or returns the built-in config when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
