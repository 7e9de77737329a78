/*
main.go - Application entry point

PURPOSE:
  The vesting command computes share-vesting schedules from the command
  line and serves the HTTP API.

COMMANDS:
  serve      Start the HTTP API
  schedule   Compute one schedule and print it
  policies   List the rounding policies

EXAMPLES:
  # 4800 shares over 4 years, monthly, 1-year cliff
  vesting schedule --shares 4800 --vesting 48 --cliff 12 --period 1 --start 2025-01-01

  # Serve with a config file, overriding the port
  vesting serve --config ./vesting.toml --port 3000

  # In-memory database
  vesting serve --db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Config file format
*/
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "vesting",
	Short:         "Share-vesting schedule engine",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
