package commands

import (
	"context"
	"log/slog"
	"os"
	"regexp"

	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/services/cards"
	"cardarb-backend/services/market"
	"cardarb-backend/services/reconcile"

	"github.com/spf13/cobra"
)

var (
	marketCard      *string
	marketCards     *string
	marketCardsFile *string
	marketHead      *int
	marketTail      *int
	marketDebug     *bool
)

func init() {
	marketCard = scrapeMarketCmd.Flags().String("card", "", "Process only the row with this code, e.g. 058/051.")
	marketCards = scrapeMarketCmd.Flags().String("cards", "", "Process only rows with these codes (space or comma separated).")
	marketCardsFile = scrapeMarketCmd.Flags().String("cards-file", "", "Process only rows with the codes listed in this file, one per line.")
	marketHead = scrapeMarketCmd.Flags().Int("head", 0, "Process only the first N rows.")
	marketTail = scrapeMarketCmd.Flags().Int("tail", 0, "Process only the last N rows.")
	marketDebug = scrapeMarketCmd.Flags().Bool("debug", false, "Process only the first 5 rows.")
	rootCmd.AddCommand(scrapeMarketCmd)
}

var codeSeparatorRegex = regexp.MustCompile(`[\s,]+`)

func batchOptions() market.BatchOptions {
	opts := market.BatchOptions{
		FilterCode: *marketCard,
		Head:       *marketHead,
		Tail:       *marketTail,
		Debug:      *marketDebug,
	}
	if *marketCardsFile != "" {
		raw, err := os.ReadFile(*marketCardsFile)
		if err != nil {
			serviceutil.Fatal("failed to read cards file", err)
		}
		for _, code := range codeSeparatorRegex.Split(string(raw), -1) {
			if code != "" {
				opts.FilterCodes = append(opts.FilterCodes, code)
			}
		}
	} else if *marketCards != "" {
		for _, code := range codeSeparatorRegex.Split(*marketCards, -1) {
			if code != "" {
				opts.FilterCodes = append(opts.FilterCodes, code)
			}
		}
	}
	return opts
}

var scrapeMarketCmd = &cobra.Command{
	Use:   "scrape-market [--card <code>] [--cards <codes>] [--cards-file <path>] [--head N] [--tail N] [--debug]",
	Short: "Searches the sell side for every buylist row and merges prices, stock and images.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := loadConfig()

		db := openDB(config)
		defer db.Close()
		store := cards.NewStore(db)

		rows, err := store.List(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load buylist rows", err)
		}
		if len(rows) == 0 {
			slog.Error("no buylist rows found, run scrape-buylist first")
			os.Exit(1)
		}

		service := market.NewService(marketClient(config), matchOptions(config))
		opts := batchOptions()

		results, runErr := service.RunBatch(ctx, rows, opts)
		persistCtx := ctx
		if runErr != nil {
			slog.Error("batch interrupted, persisting partial results", "merged", len(results), "err", runErr)
			persistCtx = context.WithoutCancel(ctx)
		}

		results = reconcile.Dedup(results)
		for _, r := range results {
			err = store.Upsert(persistCtx, r)
			if err != nil {
				serviceutil.Fatal("failed to store merged row", err)
			}
		}
		slog.Info("merged sell-side data", "rows", len(results))

		if runErr != nil {
			os.Exit(1)
		}
	},
}
