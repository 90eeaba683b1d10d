package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardarb-backend/lib/testutil"
	"cardarb-backend/services/cards"
	cardsdb "cardarb-backend/services/cards/db"
	"cardarb-backend/services/chartlinks"
	linksdb "cardarb-backend/services/chartlinks/db"
	"cardarb-backend/services/reconcile"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) (Handler, cards.Store, chartlinks.Store) {
	gin.SetMode(gin.TestMode)
	store := cards.NewStore(testutil.SetupDB(t, cardsdb.Schema))
	links := chartlinks.NewStore(testutil.SetupDB(t, linksdb.Schema))
	return NewHandler(store, links, reconcile.DefaultProfitRateMin), store, links
}

func TestGetCards(t *testing.T) {
	handler, store, links := setupHandler(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, cards.Record{
		No:             "091/064",
		Code:           "091/064",
		Name:           "カシオペア",
		BuyPrice:       12000,
		SellPrice:      9000,
		StockStatus:    cards.StockInStock(3),
		ExpectedProfit: "3000",
		ImageURL:       "https://x.jp/img.jpg",
	}))
	require.NoError(t, store.Upsert(ctx, cards.Record{
		Code:        "092/064",
		Name:        "ブライア",
		BuyPrice:    8000,
		StockStatus: "取得失敗",
	}))
	require.NoError(t, links.Put(ctx, "091/064", "https://pokeca-chart.com/sv6a-091-064/"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	handler.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body []Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)

	first := body[0]
	require.Equal(t, "カシオペア", first.CardName)
	require.Equal(t, 3000, first.Profit)
	require.Equal(t, "in_stock(3)", first.StockNormalized)
	require.Equal(t, "https://pokeca-chart.com/sv6a-091-064/", first.ChartUrl)

	second := body[1]
	require.Equal(t, "取得失敗", second.StockOriginal)
	require.Equal(t, "out_of_stock", second.StockNormalized)
	require.Zero(t, second.Profit)
	require.Empty(t, second.ChartUrl)

	// a card without an image gets no image_url key at all
	require.Contains(t, w.Body.String(), "https://x.jp/img.jpg")
	require.Equal(t, 1, strings.Count(w.Body.String(), `"image_url"`))
}

func TestGetFilteredCards(t *testing.T) {
	handler, store, _ := setupHandler(t)
	ctx := context.Background()

	// clears both the profit floor and the default rate threshold
	require.NoError(t, store.Upsert(ctx, cards.Record{
		Code:        "091/064",
		Name:        "カシオペア",
		BuyPrice:    20000,
		SellPrice:   10000,
		StockStatus: cards.StockInStock(1),
	}))
	// below the profit floor, must not appear
	require.NoError(t, store.Upsert(ctx, cards.Record{
		Code:        "092/064",
		Name:        "ブライア",
		BuyPrice:    8000,
		SellPrice:   4000,
		StockStatus: cards.StockInStock(1),
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cards/filtered", nil)
	handler.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body []FilteredCard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "カシオペア", body[0].CardName)
	require.Equal(t, reconcile.GradeFeeStandard, body[0].GradingFee)
	require.Equal(t, 7000, body[0].NetProfit)
	require.NotNil(t, body[0].MonthlyRate)
}
