package cards

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVRoundtrip(t *testing.T) {
	records := []Record{
		{
			No: "091/064", Code: "091/064", Name: "カシオペア", Rarity: "SAR",
			SetName: "ナイトワンダラー", BuyPrice: 12000, SellPrice: 9000,
			StockStatus: StockInStock(3), UpdateDate: "2025/06/01",
			ExpectedProfit: "3000", ImageURL: "https://x.jp/i.jpg",
			ListingURL: "https://x.jp/product/1",
		},
		{Code: "092/064", Name: "ブライア", BuyPrice: 8500, StockStatus: StockOutOfStock},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, records, got)
}
