package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func testDoc(t *testing.T, body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestText(t *testing.T) {
	doc := testDoc(t, `<table><tr>
		<td> ピカチュウ <span>094/080</span><br>¥12,000 </td>
		<td></td>
	</tr></table>`)

	cells := doc.Find("td")
	require.Equal(t, " ピカチュウ 094/080¥12,000 ", Text(cells.First()))
	require.Equal(t, "", Text(cells.Last()))

	require.Equal(t, "ピカチュウ 094/080¥12,000", CleanText(Text(cells.First())))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b", CleanText("  a \t\n  b  "))
	require.Equal(t, "状態A", CleanText("状態A\x00"))
}

func TestListingImage(t *testing.T) {
	doc := testDoc(t, `<ul><li>
		<img src="/images/product/123.jpg">
		<a href="/product/123">カード</a>
	</li></ul>`)
	anchor := doc.Find("a").First()
	require.Equal(t, "/images/product/123.jpg", ListingImage(anchor))

	doc = testDoc(t, `<div><a href="/product/9">カード</a></div>`)
	require.Equal(t, "", ListingImage(doc.Find("a").First()))
}

func TestAbsoluteURL(t *testing.T) {
	base := "https://www.cardrush-pokemon.jp"
	require.Equal(t, "https://cdn.example.jp/a.jpg", AbsoluteURL(base, "//cdn.example.jp/a.jpg"))
	require.Equal(t, "https://www.cardrush-pokemon.jp/a.jpg", AbsoluteURL(base, "/a.jpg"))
	require.Equal(t, "https://www.cardrush-pokemon.jp/a.jpg", AbsoluteURL(base+"/", "a.jpg"))
	require.Equal(t, "http://other.example/a.jpg", AbsoluteURL(base, "http://other.example/a.jpg"))
	require.Equal(t, "", AbsoluteURL(base, ""))
}
