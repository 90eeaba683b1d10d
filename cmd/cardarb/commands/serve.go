package commands

import (
	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/services/cards"
	"cardarb-backend/services/cards/api"
	"cardarb-backend/services/chartlinks"
	"cardarb-backend/services/reconcile"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the merged card data over HTTP.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		db := openDB(config)
		defer db.Close()

		port := config.Api.Port
		if port == 0 {
			port = 8000
		}

		handler := api.NewHandler(
			cards.NewStore(db),
			chartlinks.NewStore(db),
			reconcile.DefaultProfitRateMin,
		)
		serviceutil.StartHttpServer(port, handler.Router())
	},
}
