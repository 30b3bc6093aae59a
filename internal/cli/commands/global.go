package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/internal/logging"
	"github.com/ccollicutt/gcstw/pkg/config"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	LogLevel  string
	LogFile   string
	LogFormat string

	closer io.Closer
}

// Global is the process-wide set of persistent flags.
var Global = &GlobalOptions{}

// AddFlags registers the persistent logging flags on cmd.
func (g *GlobalOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Diagnostic log level (debug|info|warn|error, default warn)")
	cmd.PersistentFlags().StringVar(&g.LogFile, "log-file", "", "Also write diagnostics to a rotating log file")
	cmd.PersistentFlags().StringVar(&g.LogFormat, "log-format", "text", "Diagnostic log format (text|json)")
}

// InitLogging installs the default logger. Flags win over lc, which may be nil
// for commands that take no config file. Calling it again replaces the logger.
func (g *GlobalOptions) InitLogging(lc *config.LoggingConfig) {
	level := g.LogLevel
	opts := logging.Options{
		JSON:       g.LogFormat == "json",
		File:       g.LogFile,
		MaxSizeMB:  config.DefaultLogMaxSizeMB,
		MaxBackups: config.DefaultLogMaxBackups,
	}

	if lc != nil {
		if level == "" {
			level = lc.Level
		}
		if opts.File == "" {
			opts.File = lc.File
		}
		if lc.MaxSizeMB > 0 {
			opts.MaxSizeMB = lc.MaxSizeMB
		}
		opts.MaxBackups = lc.MaxBackups
		opts.MaxAgeDays = lc.MaxAgeDays
		opts.Compress = lc.Compress
	}
	if level == "" {
		level = os.Getenv(config.EnvLogLevel)
	}
	opts.Level = logging.ParseLevel(level)

	g.Close()
	g.closer = logging.Init(opts)
}

// Close releases the log file, if one is open.
func (g *GlobalOptions) Close() {
	if g.closer != nil {
		_ = g.closer.Close()
		g.closer = nil
	}
}
