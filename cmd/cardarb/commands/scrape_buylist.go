package commands

import (
	"log/slog"
	"os"

	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/services/buylist"
	"cardarb-backend/services/cards"

	"github.com/spf13/cobra"
)

var buylistCsvOut *string

func init() {
	buylistCsvOut = scrapeBuylistCmd.Flags().String("out", "", "Also export the scraped rows to a CSV file.")
	rootCmd.AddCommand(scrapeBuylistCmd)
}

var scrapeBuylistCmd = &cobra.Command{
	Use:   "scrape-buylist",
	Short: "Scrapes the buy-side PSA10 price tables and stores the rows.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := loadConfig()

		client, err := buylist.NewClient(config.Scrape.BuylistUrl)
		if err != nil {
			serviceutil.Fatal("failed to create buylist client", err)
		}

		rows, err := client.Fetch(ctx)
		if err != nil {
			serviceutil.Fatal("failed to scrape buylist", err)
		}
		slog.Info("scraped buylist", "rows", len(rows))

		db := openDB(config)
		defer db.Close()
		store := cards.NewStore(db)

		for _, row := range rows {
			err = store.UpsertBuySide(ctx, row)
			if err != nil {
				serviceutil.Fatal("failed to store buylist row", err)
			}
		}

		if *buylistCsvOut != "" {
			f, err := os.Create(*buylistCsvOut)
			if err != nil {
				serviceutil.Fatal("failed to create csv file", err)
			}
			defer f.Close()
			err = cards.WriteCSV(f, rows)
			if err != nil {
				serviceutil.Fatal("failed to write csv", err)
			}
			slog.Info("wrote csv", "path", *buylistCsvOut)
		}
	},
}
