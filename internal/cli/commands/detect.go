package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	MaxLines    int
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect which garbage collector wrote a GC log",
		Long: `Identify the garbage collector that produced a GC log.

A "CommandLine flags:" line naming -XX:+UseG1GC, -XX:+UseConcMarkSweepGC or
-XX:+UseParallelGC decides immediately. Otherwise the first heap transition
decides, with G1 tried before CMS and CMS before Parallel.

The detected collector is informational; totals never depend on it.

Optionally generates a starter config file with --write-config.

Example:
  gcstw detect gc.log
  gcstw detect -o json gc.log
  gcstw detect --write-config gcstw.yaml gc.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.MaxLines, "max-lines", "n", 0, "Stop after this many lines (0 scans until a decision)")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(detector.WithMaxLines(opts.MaxLines))
	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, logFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, logFile)
	case "text", "":
		return outputDetectText(w, result, logFile)
	default:
		return fmt.Errorf("unknown output format %q (must be text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string) error {
	fmt.Fprintln(w, "=== GC Collector Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines scanned: %d\n", result.ScannedLines)
	fmt.Fprintln(w)

	if !result.Detected() {
		fmt.Fprintln(w, "Collector: Unknown")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No collector flag or heap transition found.")
		fmt.Fprintln(w, "Tip: log with -XX:+PrintGCDetails so heap transitions are written.")
		return nil
	}

	fmt.Fprintf(w, "Collector: %s\n", result.Algorithm.DisplayName())
	switch result.Evidence {
	case detector.EvidenceFlags:
		fmt.Fprintf(w, "Evidence: command line flag %s\n", result.Matched)
	default:
		fmt.Fprintf(w, "Evidence: %s\n", result.Matched)
	}
	fmt.Fprintln(w)
	_, err := fmt.Fprintf(w, "Line %d:\n  %s\n", result.LineNum, truncate(result.Line, 120))
	return err
}

// DetectJSONOutput is the JSON form of a detection.
type DetectJSONOutput struct {
	File        string `json:"file"`
	DisplayName string `json:"display_name"`
	*detector.DetectionResult
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(DetectJSONOutput{
		File:            logFile,
		DisplayName:     result.Algorithm.DisplayName(),
		DetectionResult: result,
	})
}

// writeStarterConfig generates a starter config file for the analyzed log.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	content := generateStarterConfig(logFile, result)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(logFile string, result *detector.DetectionResult) string {
	absLogFile := logFile
	if abs, err := filepath.Abs(logFile); err == nil {
		absLogFile = abs
	}

	return fmt.Sprintf(`# gcstw configuration
# Generated by: gcstw detect
# Detected collector: %s

log_sources:
  - %q
  # Add more GC logs or use globs:
  # - /var/log/myapp/gc*.log

# Skip rotated or compressed logs matched by the globs above
# exclude:
#   - "*.gz"

# Report the run as over threshold (exit code 1) above this many seconds
stw_threshold: 0

# Record each run in a SQLite database
# history:
#   path: gcstw.db

logging:
  level: warn
  # file: gcstw.log

# webhooks:
#   - name: ops
#     url: https://hooks.example.com/gc
#     token: ${GC_HOOK_TOKEN}
#     trigger: over_threshold
#     timeout: 10s
`, result.Algorithm.DisplayName(), absLogFile)
}
