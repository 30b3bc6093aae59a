package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/config"
	"github.com/ccollicutt/gcstw/pkg/history"
)

// HistoryOptions holds command-line options for the history command.
type HistoryOptions struct {
	Output string
	Limit  int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history <config-file>",
		Short: "Show recorded analyze runs",
		Long: `List the most recent runs recorded by 'gcstw analyze' in the SQLite
database named by history.path in the configuration file.

Example:
  gcstw history gcstw.yaml
  gcstw history -n 50 -o json gcstw.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.History.Enabled() {
		return fmt.Errorf("history is not enabled: set history.path in %s", configPath)
	}

	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(ctx, opts.Limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	w := cmd.OutOrStdout()
	switch opts.Output {
	case "json":
		if runs == nil {
			runs = []history.Run{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	case "text", "":
		return outputHistoryText(w, runs)
	default:
		return fmt.Errorf("unknown output format %q (must be text or json)", opts.Output)
	}
}

func outputHistoryText(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRUN AT\tTOTAL STW\tTHRESHOLD\tSOURCES")
	for _, r := range runs {
		threshold := "-"
		if r.Threshold > 0 {
			threshold = analyzer.FormatSeconds(r.Threshold)
			if r.OverThreshold {
				threshold += " (exceeded)"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n",
			r.ID, r.RunAt.Local().Format("2006-01-02 15:04:05"),
			analyzer.FormatSeconds(r.TotalPauseSeconds), threshold, len(r.Sources))
	}
	return tw.Flush()
}
