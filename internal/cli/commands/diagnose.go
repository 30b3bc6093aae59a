package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/internal/runtimeinfo"
	"github.com/ccollicutt/gcstw/pkg/analyzer"
	"github.com/ccollicutt/gcstw/pkg/config"
	"github.com/ccollicutt/gcstw/pkg/detector"
	"github.com/ccollicutt/gcstw/pkg/gclog"
	"github.com/ccollicutt/gcstw/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
	Config  string
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <log-file>",
		Short: "Explain how a GC log is read",
		Long: `Explain how gcstw reads a GC log.

This command checks a log for common problems:
- File existence and accessibility
- Which collector was detected, and from which line
- How many lines match each recognized line grammar
- Heap transitions from more than one collector family
- Pause reports that were ignored because no collection was open
- Collections still waiting for a pause report at end of log

With --config, the configuration file and its webhooks are checked too.

Example:
  gcstw diagnose gc.log
  gcstw diagnose -v --config gcstw.yaml gc.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Also check this configuration file")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, logFile string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	result := checkLogFile(logFile)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	results = append(results, checkCollector(ctx, logFile))

	scan, err := scanPatterns(ctx, logFile)
	if err != nil {
		results = append(results, DiagnosticResult{
			Check:   "Line Grammar",
			Status:  "error",
			Message: fmt.Sprintf("Cannot read log: %v", err),
		})
	} else {
		results = append(results, checkLineGrammar(scan, opts))
		results = append(results, checkMixedFamilies(scan))
	}

	results = append(results, checkPausePairing(ctx, logFile, opts)...)
	results = append(results, checkMemory(ctx))

	if opts.Config != "" {
		cfg, result := checkConfigParseable(ctx, opts.Config)
		results = append(results, result)
		if cfg != nil {
			results = append(results, checkWebhooks(cfg, opts)...)
		}
	}

	printDiagnostics(w, results, opts)
	return nil
}

func checkLogFile(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Log File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Log file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access log file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "Log file is empty (total will be 0)"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkCollector(ctx context.Context, path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Collector",
	}

	det, err := detector.New().DetectFromFile(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Detection failed: %v", err)
		return result
	}

	if !det.Detected() {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Unknown after %d lines", det.ScannedLines)
		result.Suggests = []string{
			"Enable -XX:+PrintGCDetails so heap transitions are logged",
			"Only G1, CMS and Parallel logs are recognized",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%s (from %s)", det.Algorithm.DisplayName(), det.Evidence)
	result.Details = []string{
		fmt.Sprintf("Matched: %s", det.Matched),
		fmt.Sprintf("Line %d: %s", det.LineNum, truncate(det.Line, 80)),
	}
	return result
}

// patternScan counts matches of each recognized grammar in one log.
type patternScan struct {
	Lines    int
	Hits     map[string]int
	Families map[gclog.Algorithm]int
}

func scanPatterns(ctx context.Context, path string) (*patternScan, error) {
	source := parser.NewFileSource([]string{path})
	defer source.Close()

	scan := &patternScan{
		Hits:     make(map[string]int),
		Families: make(map[gclog.Algorithm]int),
	}
	for {
		line, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return scan, nil
		}
		if err != nil {
			return nil, err
		}
		scan.Lines++

		for _, p := range gclog.AllPatterns() {
			if !p.Match(line.Content) {
				continue
			}
			scan.Hits[p.Name]++
			if p.Kind != gclog.EventNone {
				scan.Families[p.Family]++
			}
		}
	}
}

func checkLineGrammar(scan *patternScan, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Line Grammar",
	}

	for _, p := range gclog.AllPatterns() {
		if n := scan.Hits[p.Name]; n > 0 || opts.Verbose {
			result.Details = append(result.Details, fmt.Sprintf("%s: %d", p.Name, n))
		}
	}

	events := 0
	for _, n := range scan.Families {
		events += n
	}
	reports := scan.Hits[gclog.PauseTime.Name]

	switch {
	case reports == 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("No pause reports in %d lines", scan.Lines)
		result.Suggests = []string{"Enable -XX:+PrintGCApplicationStoppedTime so pause times are logged"}
	case events == 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d pause reports but no heap transitions", reports)
		result.Suggests = []string{"Enable -XX:+PrintGCDetails; without heap transitions no pause is counted"}
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("%d heap transitions, %d pause reports in %d lines", events, reports, scan.Lines)
	}
	return result
}

func checkMixedFamilies(scan *patternScan) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Collector Families",
	}

	var families []string
	for alg, n := range scan.Families {
		families = append(families, fmt.Sprintf("%s: %d", alg.DisplayName(), n))
	}
	sort.Strings(families)
	result.Details = families

	if len(scan.Families) > 1 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Heap transitions from %d collector families", len(scan.Families))
		result.Suggests = []string{"The file may concatenate logs from different JVM runs"}
		return result
	}

	result.Status = "ok"
	result.Message = "Single collector family"
	if len(scan.Families) == 0 {
		result.Message = "No heap transitions"
	}
	return result
}

func checkPausePairing(ctx context.Context, path string, opts *DiagnoseOptions) []DiagnosticResult {
	result := DiagnosticResult{
		Check: "Pause Accounting",
	}

	res, err := analyzer.NewAnalyzer(analyzer.WithPauses(opts.Verbose)).AnalyzeFile(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Analysis failed: %v", err)
		if errors.Is(err, analyzer.ErrMalformedPause) {
			result.Suggests = []string{"A pause report that should be counted has an unreadable duration"}
		}
		return []DiagnosticResult{result}
	}

	stats := res.Stats
	result.Status = "ok"
	result.Message = fmt.Sprintf("Total %s s from %d pause(s)",
		analyzer.FormatSeconds(res.TotalPauseSeconds), stats.PausesCounted)
	result.Details = []string{
		fmt.Sprintf("Minor events: %d, full events: %d", stats.MinorEvents, stats.FullEvents),
		fmt.Sprintf("Pause reports: %d counted, %d ignored", stats.PausesCounted, stats.PausesIgnored),
	}
	for _, p := range res.Pauses {
		result.Details = append(result.Details,
			fmt.Sprintf("line %d: %s s (%s)", p.LineNum, analyzer.FormatSeconds(p.Seconds), p.Closed))
	}
	if stats.PauseReports > 0 && stats.PausesCounted == 0 {
		result.Status = "warning"
		result.Message = "No pause report followed a heap transition"
	}
	results := []DiagnosticResult{result}

	if open := res.FinalState.OpenEvents(); open != gclog.EventNone {
		results = append(results, DiagnosticResult{
			Check:   "End of Log",
			Status:  "warning",
			Message: fmt.Sprintf("Collection still open: %s", open),
			Details: []string{"Its pause report was not written before the log ended"},
		})
	}
	return results
}

func checkMemory(ctx context.Context) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Resource Usage",
	}

	mem, err := runtimeinfo.ReadMemory(ctx)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Process memory unavailable: %v", err)
		return result
	}

	result.Status = "ok"
	result.Message = mem.String()
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		if errors.Is(err, config.ErrNoSources) {
			result.Suggests = []string{
				"Use 'gcstw detect <log-file> --write-config gcstw.yaml' to generate a starter config",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file loaded successfully"
	result.Details = []string{
		fmt.Sprintf("Log sources: %d", len(cfg.LogSources)),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== gcstw Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", name),
			Status:  "ok",
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}

		if wh.Trigger == config.WebhookTriggerOverThreshold && cfg.STWThreshold == 0 {
			result.Status = "warning"
			result.Message = "Trigger over_threshold never fires: stw_threshold is 0"
		}
		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			)
		}

		results = append(results, result)

		if opts.Verbose {
			conn := checkWebhookConnectivity(wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// A HEAD request is enough to tell whether the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST (the actual send uses POST)",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
