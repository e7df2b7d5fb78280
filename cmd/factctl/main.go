// Command factctl runs fact-registration admin jobs from a shell or cron.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "factctl",
		Short: "Operator tooling for fact-registration",
		Long: `factctl runs the admin actions of fact-registration outside the HTTP API.

It reads the same CONFIG_FILE and environment as the server.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(
		newMatchLocationsCmd(),
		newSendUpdateCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
