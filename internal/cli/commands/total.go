package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/output"
)

// TotalOptions holds command-line options for the root total command.
type TotalOptions struct {
	Output  string
	Verbose bool
}

// AddTotalFlags registers the root command's local flags.
func AddTotalFlags(cmd *cobra.Command, opts *TotalOptions) {
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show collector, counters and each counted pause")
}

// RunTotal prints the total stop-the-world time of a single GC log.
func RunTotal(cmd *cobra.Command, args []string, opts *TotalOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{Verbose: opts.Verbose})
	if err != nil {
		return err
	}

	a := analyzer.NewAnalyzer(analyzer.WithPauses(opts.Verbose))
	result, err := a.AnalyzeFile(ctx, logFile)
	if err != nil {
		return err
	}

	report := output.NewReport([]*analyzer.AnalysisResult{result}, "", 0)
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}
