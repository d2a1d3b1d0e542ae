// Command server runs the auth and social profile HTTP services, their
// database migrations and the audit consumer for published events.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "Auth and social profile services",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newConsumeCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
