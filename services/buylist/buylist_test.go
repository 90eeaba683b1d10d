package buylist

import (
	"testing"

	"cardarb-backend/services/cards"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const buylistFixture = `<!DOCTYPE html>
<html><body>
<table>
<tr><th>弾</th><th>No</th><th>レア</th><th>カード名</th><th>買取金額</th><th>更新日</th></tr>
<tr><td>ナイトワンダラー</td><td>091/064</td><td>SAR</td><td>カシオペア</td><td>¥12,000</td><td>2025/06/01</td></tr>
<tr><td></td><td>092/064</td><td>SAR</td><td>ブライア</td><td>¥8,500円</td><td>2025/06/01</td></tr>
<tr><td>ナイトワンダラー</td><td>093/064</td><td>SR</td><td>オーガポン</td><td>¥7,000</td><td>2025/06/01</td><td>備考</td></tr>
</table>
<table>
<tr><td>テラスタルフェスex</td></tr>
<tr><td>227/190</td><td>SAR</td><td>ピカチュウex</td><td>¥45,000</td><td>06/15</td></tr>
<tr><td>リザードンex</td><td>228/190</td><td>SR</td><td>リザードンex</td><td>¥9,000</td></tr>
<tr><td>229/190</td><td>SR</td><td>無料查定</td><td>お問い合わせ</td><td>06/15</td></tr>
<tr><td>230/190</td><td>SR</td><td>ミライドン</td><td>¥0</td><td>06/15</td></tr>
</table>
<table>
<tr><td>お知らせ</td><td>詳細</td></tr>
</table>
</body></html>`

func TestParseTables(t *testing.T) {
	rows, err := ParseTables([]byte(buylistFixture))
	require.NoError(t, err)

	expected := []cards.Record{
		{
			No: "091/064", Code: "091/064", Name: "カシオペア", Rarity: "SAR",
			SetName: "ナイトワンダラー", BuyPrice: 12000, UpdateDate: "2025/06/01",
		},
		// empty set cell inherits the table's running set name; the 7-cell
		// row after it is a layout drift and parses to nothing
		{
			No: "092/064", Code: "092/064", Name: "ブライア", Rarity: "SAR",
			SetName: "ナイトワンダラー", BuyPrice: 8500, UpdateDate: "2025/06/01",
		},
		// single-cell row establishes the set name for the 5-cell rows below
		{
			No: "227/190", Code: "227/190", Name: "ピカチュウex", Rarity: "SAR",
			SetName: "テラスタルフェスex", BuyPrice: 45000, UpdateDate: "06/15",
		},
		// 5-cell row whose first cell is not a number reads as [set, no, rarity, name, price]
		{
			No: "228/190", Code: "228/190", Name: "リザードンex", Rarity: "SR",
			SetName: "リザードンex", BuyPrice: 9000,
		},
	}
	diff := cmp.Diff(expected, rows)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestCleanPrice(t *testing.T) {
	require.Equal(t, 12000, CleanPrice("¥12,000"))
	require.Equal(t, 8500, CleanPrice("¥8,500円"))
	require.Equal(t, 300, CleanPrice(" 300 "))
	require.Equal(t, 0, CleanPrice("お問い合わせ"))
}
