package commands

import (
	"log/slog"
	"strconv"

	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/services/cards"
	"cardarb-backend/services/reconcile"

	"github.com/spf13/cobra"
)

var (
	reconcileProfitRate *float64
	reconcileDigestTop  *int
)

func init() {
	reconcileProfitRate = reconcileCmd.Flags().Float64("profit-rate", reconcile.DefaultProfitRateMin, "Minimum profit rate percentage for the filtered view.")
	reconcileDigestTop = reconcileCmd.Flags().Int("digest-top", 20, "How many cards the email digest includes.")
	rootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [--profit-rate N]",
	Short: "Normalizes stock statuses, recomputes profits, deduplicates and reports the filtered view.",
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

		for i, r := range records {
			r.StockStatus = reconcile.NormalizeStatus(r.StockStatus)
			r.ExpectedProfit = strconv.Itoa(
				reconcile.Profit(r.BuyPrice, r.SellPrice, r.StockStatus, r.ExpectedProfit))
			records[i] = r
		}
		records = reconcile.Dedup(records)

		err = store.ReplaceAll(ctx, records)
		if err != nil {
			serviceutil.Fatal("failed to persist reconciled records", err)
		}

		filtered := reconcile.FilterAll(records, *reconcileProfitRate)
		slog.Info("reconciled records",
			"total", len(records),
			"filtered", len(filtered),
			"profit_rate_min", *reconcileProfitRate,
		)

		if config.Smtp.Enabled() && len(filtered) > 0 {
			err = reconcile.SendDigest(ctx, config.Smtp, filtered, *reconcileDigestTop)
			if err != nil {
				slog.Error("failed to send profit digest", "err", err)
			} else {
				slog.Info("sent profit digest", "recipient", config.Smtp.Recipient)
			}
		}
	},
}
