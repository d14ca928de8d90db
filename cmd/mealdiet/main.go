package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	flagEnvFile     string
	flagAddr        string
	flagDatabaseURL string
)

var rootCmd = &cobra.Command{
	Use:           "mealdiet",
	Short:         "Meal log and diet metrics service",
	SilenceUsage:  true,
	SilenceErrors: true,
	// No subcommand runs the server.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "optional dotenv file read before the environment")
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "postgres connection string (overrides DATABASE_URL)")
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides ADDR)")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
