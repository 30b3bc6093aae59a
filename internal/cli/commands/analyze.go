package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/internal/runtimeinfo"
	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/config"
	"github.com/ccollicutt/gcstw/pkg/detector"
	"github.com/ccollicutt/gcstw/pkg/history"
	"github.com/ccollicutt/gcstw/pkg/output"
	"github.com/ccollicutt/gcstw/pkg/parser"
	"github.com/ccollicutt/gcstw/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output    string
	Verbose   bool
	Quiet     bool
	NoHistory bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <config-file>",
		Short: "Total STW time across the GC logs named in a config file",
		Long: `Analyze every GC log matched by the log_sources globs of a configuration
file, minus those matched by exclude. Each log is analyzed on its own; the
per-log totals and their sum are printed.

When stw_threshold is set and the sum exceeds it, the run is reported as over
threshold. Webhooks fire according to their trigger and, if history.path is
set, the run is recorded in a SQLite database.

Exit codes:
  0 - Total within threshold (or no threshold)
  1 - Total exceeds stw_threshold
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show collector, counters and each counted pause")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Print the grand total only")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Do not record this run in the history database")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOverThreshold), "When to fire webhook (over_threshold|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	Global.InitLogging(&cfg.Logging)

	webhooks, err := collectWebhooks(cfg, opts)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(cfg.LogSources, cfg.Exclude)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no log files matched patterns: %v", cfg.LogSources)
	}

	a := analyzer.NewAnalyzer(
		analyzer.WithDetectorOptions(detector.WithMaxLines(cfg.Detection.MaxLines)),
		analyzer.WithPauses(opts.Verbose),
	)
	results, err := a.AnalyzeFiles(ctx, files)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(results, configPath, cfg.STWThreshold)
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook and history failures are logged but don't fail the analysis
	webhook.NewClient(Version).Notify(ctx, webhooks, report)

	if cfg.History.Enabled() && !opts.NoHistory {
		recordHistory(ctx, cfg.History.Path, report)
	}

	logResourceUsage(ctx)

	if report.OverThreshold() {
		slog.Warn("stw threshold exceeded",
			"total_pause_seconds", report.TotalPauseSeconds,
			"stw_threshold", report.Threshold)
		ExitCode = 1
	}

	return nil
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) ([]config.WebhookConfig, error) {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		switch trigger {
		case "":
			trigger = config.WebhookTriggerOverThreshold
		case config.WebhookTriggerOverThreshold, config.WebhookTriggerAlways, config.WebhookTriggerNever:
		default:
			return nil, fmt.Errorf("invalid --webhook-trigger %q (must be over_threshold, always, or never)", trigger)
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks, nil
}

func recordHistory(ctx context.Context, path string, report *output.Report) {
	store, err := history.Open(ctx, path)
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, report); err != nil {
		slog.Warn("recording run failed", "db", path, "error", err)
	}
}

func logResourceUsage(ctx context.Context) {
	mem, err := runtimeinfo.ReadMemory(ctx)
	if err != nil {
		slog.Debug("process memory unavailable", "error", err)
	}
	slog.Debug("resource usage", "memory", mem.String())
}
