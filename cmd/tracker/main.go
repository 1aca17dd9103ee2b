package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tracker",
		Short: "Personal income and expense tracker",
		Long: `Tracker records income and expense transactions, summarizes them by
category and month, and exports the filtered table as CSV.

Configuration comes from the environment (and a .env file when present):
PORT, DATA_BACKEND, SQLITE_DB_PATH, CACHE_SIZE, CACHE_TTL,
RATE_LIMIT_PER_MINUTE, SHUTDOWN_TIMEOUT, LOG_LEVEL.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newExportCmd())
	return root
}
