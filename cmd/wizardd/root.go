package main

import (
	"github.com/spf13/cobra"

	"github.com/ctateo21/homelead/internal/infrastructure/config"
)

var rootCmd = &cobra.Command{
	Use:           "wizardd",
	Short:         "Lead-generation wizard and mortgage calculator service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file (WIZARD_* env vars take precedence)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(forwardCmd)
	rootCmd.AddCommand(certsCmd)
}

// loadConfig reads configuration using the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
