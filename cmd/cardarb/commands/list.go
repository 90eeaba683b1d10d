package commands

import (
	"os"

	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/services/cards"
	"cardarb-backend/services/reconcile"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the merged card records.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := loadConfig()

		db := openDB(config)
		defer db.Close()

		records, err := cards.NewStore(db).List(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load records", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Code", "Name", "Rarity", "Buy", "Sell", "Stock", "Profit"})

		for _, r := range records {
			profit := reconcile.Profit(r.BuyPrice, r.SellPrice, r.StockStatus, r.ExpectedProfit)
			t.AppendRow(table.Row{r.Code, r.Name, r.Rarity, r.BuyPrice, r.SellPrice, r.StockStatus, profit})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
