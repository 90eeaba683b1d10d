package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"cardarb-backend/lib/configutil"
	"cardarb-backend/lib/configutil/configsqlite"
	"cardarb-backend/lib/serviceutil"
	"cardarb-backend/services/market"
	"cardarb-backend/services/reconcile"

	cardsdb "cardarb-backend/services/cards/db"
	linksdb "cardarb-backend/services/chartlinks/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cardarb",
	Short: "cardarb scrapes buy and sell prices for trading cards and reports arbitrage opportunities.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type ScrapeConfig struct {
	BuylistUrl string `json:"buylist_url"`
	MarketUrl  string `json:"market_url"`
	ChartUrl   string `json:"chart_url"`

	MinDelayMs   int `json:"min_delay_ms"`
	JitterMs     int `json:"jitter_ms"`
	RetryDelayMs int `json:"retry_delay_ms"`

	// DisableCodeNameRelaxation turns off the relaxed name rule for listings
	// whose text or URL carries the card's code.
	DisableCodeNameRelaxation bool `json:"disable_code_name_relaxation"`
}

type ApiConfig struct {
	Port int `json:"port"`
}

type Config struct {
	Database configsqlite.Struct  `json:"database"`
	Scrape   ScrapeConfig         `json:"scrape"`
	Api      ApiConfig            `json:"api"`
	Smtp     reconcile.SmtpConfig `json:"smtp"`
}

func loadConfig() Config {
	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Scrape.BuylistUrl == "" {
		config.Scrape.BuylistUrl = "https://otachu-akiba.com/1gocard/buying_price/psa-pokemon-cards/"
	}
	if config.Scrape.MarketUrl == "" {
		config.Scrape.MarketUrl = "https://www.cardrush-pokemon.jp"
	}
	if config.Scrape.ChartUrl == "" {
		config.Scrape.ChartUrl = "https://pokeca-chart.com"
	}
	return config
}

func openDB(config Config) *sql.DB {
	db, err := config.Database.OpenDB(cardsdb.Schema + "\n" + linksdb.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return db
}

func matchOptions(config Config) market.MatchOptions {
	return market.MatchOptions{
		RelaxNameWithCode: !config.Scrape.DisableCodeNameRelaxation,
	}
}

func marketClient(config Config) *market.Client {
	client, err := market.NewClient(market.ClientOptions{
		BaseUrl:    config.Scrape.MarketUrl,
		MinDelay:   time.Duration(config.Scrape.MinDelayMs) * time.Millisecond,
		Jitter:     time.Duration(config.Scrape.JitterMs) * time.Millisecond,
		RetryDelay: time.Duration(config.Scrape.RetryDelayMs) * time.Millisecond,
	})
	if err != nil {
		serviceutil.Fatal("failed to create market client", err)
	}
	return client
}
