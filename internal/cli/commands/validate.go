package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/config"
	"github.com/ccollicutt/gcstw/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a gcstw configuration file without running analysis.

Checks:
  - YAML syntax
  - At least one log source
  - Exclude pattern syntax
  - Threshold, logging and webhook settings
  - Log source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Log sources:   %d pattern(s)\n", len(cfg.LogSources))
	fmt.Fprintf(w, "  Excludes:      %d pattern(s)\n", len(cfg.Exclude))
	if cfg.STWThreshold > 0 {
		fmt.Fprintf(w, "  STW threshold: %s s\n", analyzer.FormatSeconds(cfg.STWThreshold))
	} else {
		fmt.Fprintf(w, "  STW threshold: none\n")
	}
	if cfg.History.Enabled() {
		fmt.Fprintf(w, "  History:       %s\n", cfg.History.Path)
	}
	fmt.Fprintf(w, "  Log level:     %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Webhooks:      %d\n", len(cfg.Webhooks))
	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(w, "    %d. %s [%s]\n", i+1, name, wh.Trigger)
	}

	// Check if log sources exist (warnings only)
	files, err := parser.ExpandGlobs(cfg.LogSources, cfg.Exclude)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding log source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(w, "\nWarning: No files match log source patterns\n")
	} else {
		fmt.Fprintf(w, "\nLog files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
