package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gem-profit/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "gem-profit",
	Short: "Live gemstone profit per hour",
	Long:  "gem-profit watches gemstone drop notifications, prices them from the bazaar and reports session profit and profit per hour.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to config file (GEMPROFIT_* env vars override it)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(checkUpdateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the file named by --config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}
