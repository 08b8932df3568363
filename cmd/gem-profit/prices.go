package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gem-profit/internal/bazaar"
	"gem-profit/internal/config"
	"gem-profit/internal/pricing"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Fetch the bazaar once and print the best price per gem",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := config.NewLogger(cfg.LogLevel)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
		defer cancel()

		snap, err := bazaar.NewClient(cfg.BazaarURL, cfg.HTTPTimeout(), logger).Fetch(ctx)
		if err != nil {
			return err
		}
		table := pricing.NewTable(cfg.Fee())
		table.Rebuild(snap)

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "GEM\tTIER\tPER FINE")
		for _, q := range table.Quotes() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Gem, q.Tier, q.PricePerFine.StringFixed(1))
		}
		return tw.Flush()
	},
}
