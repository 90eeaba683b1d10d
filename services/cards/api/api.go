// Package api serves the merged card data over HTTP for the frontend.
// Read-only: mutation happens through the scrape and reconcile commands.
package api

import (
	"fmt"
	"net/http"

	"cardarb-backend/services/cards"
	"cardarb-backend/services/chartlinks"
	"cardarb-backend/services/reconcile"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	store   cards.Store
	links   chartlinks.Store
	rateMin float64
}

func NewHandler(store cards.Store, links chartlinks.Store, rateMin float64) Handler {
	return Handler{store: store, links: links, rateMin: rateMin}
}

// Card is the wire shape the frontend consumes. StockOriginal preserves the
// scraped status verbatim; StockNormalized folds failure markers into
// out_of_stock.
type Card struct {
	Id              string `json:"id"`
	No              string `json:"no"`
	CardName        string `json:"card_name"`
	CardNumber      string `json:"card_number"`
	BuyPrice        int    `json:"buy_price"`
	SellPrice       int    `json:"sell_price"`
	StockOriginal   string `json:"stock_original"`
	StockNormalized string `json:"stock_normalized"`
	ImageUrl        string `json:"image_url,omitempty"`
	Profit          int    `json:"profit"`
	ChartUrl        string `json:"chart_url,omitempty"`
}

type FilteredCard struct {
	Card

	GradingFee  int      `json:"grading_fee"`
	NetProfit   int      `json:"net_profit"`
	ProfitRate  float64  `json:"profit_rate"`
	MonthlyRate *float64 `json:"monthly_rate"`
}

func toCard(idx int, r cards.Record, links map[string]string) Card {
	return Card{
		Id:              fmt.Sprintf("%s_%s_%d", r.No, r.Code, idx),
		No:              r.No,
		CardName:        r.Name,
		CardNumber:      r.Code,
		BuyPrice:        r.BuyPrice,
		SellPrice:       r.SellPrice,
		StockOriginal:   r.StockStatus,
		StockNormalized: reconcile.NormalizeStatus(r.StockStatus),
		ImageUrl:        r.ImageURL,
		Profit:          reconcile.Profit(r.BuyPrice, r.SellPrice, r.StockStatus, r.ExpectedProfit),
		ChartUrl:        chartlinks.Lookup(links, r.Code, r.Name),
	}
}

func (h Handler) getCards(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	links, err := h.links.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]Card, 0, len(records))
	for idx, r := range records {
		out = append(out, toCard(idx, r, links))
	}
	c.JSON(http.StatusOK, out)
}

func (h Handler) getFilteredCards(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	links, err := h.links.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filtered := reconcile.FilterAll(records, h.rateMin)
	out := make([]FilteredCard, 0, len(filtered))
	for idx, fc := range filtered {
		card := FilteredCard{
			Card:       toCard(idx, fc.Record, links),
			GradingFee: fc.GradingFee,
			NetProfit:  fc.NetProfit,
			ProfitRate: fc.ProfitRate,
		}
		if fc.MonthlyRate >= 0 {
			rate := fc.MonthlyRate
			card.MonthlyRate = &rate
		}
		out = append(out, card)
	}
	c.JSON(http.StatusOK, out)
}

// Router builds the gin engine with permissive CORS, the frontend runs on a
// different origin during development.
func (h Handler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	api := router.Group("/api")
	{
		api.GET("/cards", h.getCards)
		api.GET("/cards/filtered", h.getFilteredCards)
	}
	return router
}
