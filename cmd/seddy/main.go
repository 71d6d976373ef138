// Command seddy is this core's CLI boundary (spec.md §6, "CLI surface"):
// it wires internal/config, internal/specloader, internal/swfclient and
// internal/decider into a runnable binary, following the teacher's
// cli/main.go root-command shape.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EpicWink/seddy/cmd/seddy/commands"
	"github.com/EpicWink/seddy/internal/logging"
)

var (
	verboseCount int
	quietCount   int
	showVersion  bool
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "seddy",
		Short: "An Amazon SWF DAG workflow decider",
		Long:  "seddy runs the decider side of a DAG-shaped Simple Workflow Service workflow.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(logging.ContextWithLogger(cmd.Context(), logging.NewLogger(loggingConfig())))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Println("seddy", version)
				return nil
			}
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "increase logging verbosity (repeatable)")
	root.PersistentFlags().CountVarP(&quietCount, "quiet", "q", "decrease logging verbosity (repeatable)")
	root.Flags().BoolVarP(&showVersion, "version", "V", false, "print the version and exit")

	root.AddCommand(commands.DeciderCmd())
	root.AddCommand(commands.RegisterCmd())
	root.AddCommand(commands.ExecuteCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loggingConfig maps the -v/-q counters onto a logging.LogLevel, centred on
// Info: each -v steps down to Debug, each -q steps up towards Disabled.
func loggingConfig() *logging.Config {
	cfg := logging.DefaultConfig()
	level := verboseCount - quietCount
	switch {
	case level <= -3:
		cfg.Level = logging.DisabledLevel
	case level == -2:
		cfg.Level = logging.ErrorLevel
	case level == -1:
		cfg.Level = logging.WarnLevel
	case level == 0:
		cfg.Level = logging.InfoLevel
	default:
		cfg.Level = logging.DebugLevel
	}
	return cfg
}
