package commands

import (
	"time"

	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/services/cards"
	"cardarb-backend/services/chartlinks"
	"cardarb-backend/services/reconcile"

	"github.com/spf13/cobra"
)

var chartLinksTest *bool

func init() {
	chartLinksTest = chartLinksCmd.Flags().Bool("test", false, "Process only the first 8 entries.")
	rootCmd.AddCommand(chartLinksCmd)
}

var chartLinksCmd = &cobra.Command{
	Use:   "chart-links [--test]",
	Short: "Looks up the price-history chart page for each card in the filtered view.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := loadConfig()

		db := openDB(config)
		defer db.Close()
		store := cards.NewStore(db)

		records, err := store.List(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load records", err)
		}

		// only cards worth showing need a chart link
		var filtered []cards.Record
		for _, fc := range reconcile.FilterAll(records, reconcile.DefaultProfitRateMin) {
			filtered = append(filtered, fc.Record)
		}
		entries := chartlinks.EntriesFromRecords(filtered)
		if *chartLinksTest && len(entries) > 8 {
			entries = entries[:8]
		}

		client, err := chartlinks.NewClient(chartlinks.ClientOptions{
			BaseUrl:    config.Scrape.ChartUrl,
			Delay:      time.Duration(config.Scrape.MinDelayMs) * time.Millisecond,
			RetryDelay: time.Duration(config.Scrape.RetryDelayMs) * time.Millisecond,
		})
		if err != nil {
			serviceutil.Fatal("failed to create chart client", err)
		}

		service := chartlinks.NewService(client, chartlinks.NewStore(db))
		err = service.Run(ctx, entries)
		if err != nil {
			serviceutil.Fatal("chart link run failed", err)
		}
	},
}
