package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/linkage/internal/config"
)

// ValidationResult is the output of the validate command.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Path      string   `json:"path"`
	Templates []string `json:"templates"`
	Threshold float64  `json:"threshold"`
	Weighted  int      `json:"weighted_fields"`
}

func (v ValidationResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s is valid\n", v.Path)
	fmt.Fprintf(&b, "  templates: %d\n", len(v.Templates))
	fmt.Fprintf(&b, "  weighted fields: %d\n", v.Weighted)
	fmt.Fprintf(&b, "  threshold: %g", v.Threshold)
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a matching config",
		Long: `Load a YAML (.yaml, .yml) or CUE (.cue) matching config and check it
without touching any database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	formatter.VerboseLog("Loading config %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeConfig, "config is invalid", err)
	}

	for i, tmpl := range cfg.ParsedTemplates() {
		for _, field := range tmpl {
			if _, ok := cfg.Weights[field]; !ok {
				formatter.VerboseLog("template %d (%s): field %s has no weight and is never scored", i, tmpl, field)
			}
		}
	}

	return formatter.Success(ValidationResult{
		Valid:     true,
		Path:      path,
		Templates: cfg.Templates,
		Threshold: cfg.Threshold,
		Weighted:  len(cfg.Weights),
	})
}
