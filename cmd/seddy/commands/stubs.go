package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RegisterCmd and ExecuteCmd exist so the binary's subcommand surface
// matches spec.md §6 exactly, but registering workflow/activity types and
// starting executions are explicitly out of this core's scope (spec.md §1
// Non-goals: this is a decider, not a registrar or launcher).
func RegisterCmd() *cobra.Command {
	return notImplementedCmd("register", "register workflow and activity types with SWF")
}

func ExecuteCmd() *cobra.Command {
	return notImplementedCmd("execute", "start a workflow execution")
}

func notImplementedCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(os.Stderr, "seddy %s: not implemented in this core; see Registrar/Launcher\n", use)
			os.Exit(2)
			return nil
		},
	}
}
