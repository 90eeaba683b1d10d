package reconcile

import (
	"testing"

	"cardarb-backend/services/cards"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	require.Equal(t, "out_of_stock", NormalizeStatus(""))
	require.Equal(t, "out_of_stock", NormalizeStatus("nan"))
	require.Equal(t, "out_of_stock", NormalizeStatus("取得失敗"))
	require.Equal(t, "out_of_stock", NormalizeStatus("out_of_stock"))
	require.Equal(t, "in_stock(3)", NormalizeStatus("in_stock(3)"))
	require.Equal(t, "out_of_stock", NormalizeStatus("garbage"))
}

func TestProfit(t *testing.T) {
	// out of stock: buy-sell only when both positive
	require.Equal(t, 3000, Profit(10000, 7000, "out_of_stock", ""))
	require.Equal(t, 0, Profit(10000, 0, "out_of_stock", ""))
	require.Equal(t, 0, Profit(0, 7000, "out_of_stock", ""))
	// cached expected profit is ignored out of stock
	require.Equal(t, 3000, Profit(10000, 7000, "取得失敗", "9999"))

	// in stock: cached value wins
	require.Equal(t, 1234, Profit(10000, 7000, "in_stock(1)", "1234"))
	// unparseable cache yields zero
	require.Equal(t, 0, Profit(10000, 7000, "in_stock(1)", "abc"))
	// no cache: buy-sell unless sell missing
	require.Equal(t, 3000, Profit(10000, 7000, "in_stock(2)", ""))
	require.Equal(t, 0, Profit(10000, 0, "in_stock(2)", ""))
	// negative spreads are reported, not clamped
	require.Equal(t, -500, Profit(6500, 7000, "in_stock(1)", ""))
}

func TestDedup(t *testing.T) {
	records := []cards.Record{
		{Code: "091/064", Name: "a", UpdateDate: "2025/05/01", BuyPrice: 1},
		{Code: "091/064", Name: "a", UpdateDate: "2025/06/01", BuyPrice: 2},
		{Code: "091/064", Name: "b", UpdateDate: "2025/01/01", BuyPrice: 3},
	}
	out := Dedup(records)
	require.Len(t, out, 2)
	require.Equal(t, 2, out[0].BuyPrice)
	require.Equal(t, 3, out[1].BuyPrice)
}

func TestDedupDateOrdering(t *testing.T) {
	// full date beats year-less date
	out := Dedup([]cards.Record{
		{Code: "c", Name: "n", UpdateDate: "12/31", BuyPrice: 1},
		{Code: "c", Name: "n", UpdateDate: "2024/01/01", BuyPrice: 2},
	})
	require.Equal(t, 2, out[0].BuyPrice)

	// unparseable date loses to any parsed date
	out = Dedup([]cards.Record{
		{Code: "c", Name: "n", UpdateDate: "unknown", BuyPrice: 1},
		{Code: "c", Name: "n", UpdateDate: "01/02", BuyPrice: 2},
	})
	require.Equal(t, 2, out[0].BuyPrice)

	// ties keep the first-seen record
	out = Dedup([]cards.Record{
		{Code: "c", Name: "n", UpdateDate: "2025/05/05", BuyPrice: 1},
		{Code: "c", Name: "n", UpdateDate: "2025/05/05", BuyPrice: 2},
	})
	require.Equal(t, 1, out[0].BuyPrice)
}

func TestGradingFee(t *testing.T) {
	_, ok := GradingFee(5000)
	require.False(t, ok)

	fee, ok := GradingFee(5001)
	require.True(t, ok)
	require.Equal(t, GradeFeeStandard, fee)

	fee, ok = GradingFee(29999)
	require.True(t, ok)
	require.Equal(t, GradeFeeStandard, fee)

	fee, ok = GradingFee(30000)
	require.True(t, ok)
	require.Equal(t, GradeFeeExpress, fee)
}

func TestDerive(t *testing.T) {
	fc, ok := Derive(cards.Record{
		BuyPrice:    20000,
		SellPrice:   10000,
		StockStatus: "in_stock(1)",
	})
	require.True(t, ok)
	require.Equal(t, GradeFeeStandard, fc.GradingFee)
	require.Equal(t, 7000, fc.NetProfit)
	// 7000 / (10000 + 3000) * 100 = 53.8...
	require.InDelta(t, 53.8, fc.ProfitRate, 0.05)
	require.InDelta(t, 26.9, fc.MonthlyRate, 0.05)

	// express tier has no monthly rate
	fc, ok = Derive(cards.Record{
		BuyPrice:    50000,
		SellPrice:   15000,
		StockStatus: "in_stock(1)",
	})
	require.True(t, ok)
	require.Equal(t, GradeFeeExpress, fc.GradingFee)
	require.Negative(t, fc.MonthlyRate)

	// below visibility floor
	_, ok = Derive(cards.Record{BuyPrice: 8000, SellPrice: 4000, StockStatus: "in_stock(1)"})
	require.False(t, ok)
}

func TestFilterAllUnroundedComparison(t *testing.T) {
	// rate computes to 19.99..%, display rounds to 20.0 but the filter must
	// still drop it at a threshold of 20
	records := []cards.Record{{
		BuyPrice:    17999,
		SellPrice:   12000,
		StockStatus: "in_stock(1)",
	}}
	// max profit 5999, net 2999, raw rate 2999/15000 = 19.993%
	fc, ok := Derive(records[0])
	require.True(t, ok)
	require.Equal(t, 2999, fc.NetProfit)
	require.Equal(t, 20.0, fc.ProfitRate)

	out := FilterAll(records, DefaultProfitRateMin)
	require.Empty(t, out)

	out = FilterAll(records, 19)
	require.Len(t, out, 1)
}
