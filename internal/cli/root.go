// Package cli provides the command-line interface for gcstw.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gcstw/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(NewRootCommand(), os.Args[1:])
}

func run(rootCmd *cobra.Command, args []string) int {
	commands.ExitCode = 0
	defer commands.Global.Close()

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2 // Usage, input or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &commands.TotalOptions{}

	rootCmd := &cobra.Command{
		Use:   "gcstw <log-file>",
		Short: "Total the stop-the-world pause time in a JVM GC log",
		Long: `gcstw reads a JVM garbage-collection log and prints the total time the
application threads were stopped for garbage collection:

  TOTAL GC STW TIME <seconds>

A "threads were stopped" report counts only when it follows a heap transition
(G1, CMS ParNew, or Parallel young/full). Safepoint pauses that are not
garbage collections are ignored. The log must be written with
-XX:+PrintGCApplicationStoppedTime.

Exit codes:
  0 - Success
  1 - STW threshold exceeded (analyze)
  2 - Usage, input or runtime error`,
		Example: `  gcstw gc.log
  gcstw --verbose gc.log
  gcstw detect gc.log
  gcstw analyze gcstw.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commands.Global.InitLogging(nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunTotal(cmd, args, opts)
		},
	}

	commands.Global.AddFlags(rootCmd)
	commands.AddTotalFlags(rootCmd, opts)

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
