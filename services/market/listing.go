// Package market searches the sell-side storefront for listings matching
// buylist cards and picks the cheapest comparable listing per card.
package market

import (
	"regexp"
	"strconv"
	"strings"
)

// CardListing is one product anchor parsed off a search results page.
type CardListing struct {
	Name     string
	Price    int
	InStock  bool
	Quantity int
	URL      string
	ImageURL string
}

var (
	priceRegex      = regexp.MustCompile(`([\d,]+)円`)
	stockCountRegex = regexp.MustCompile(`在庫数\s*(\d+)`)

	// trailing price / stock fragments the storefront appends to listing text
	priceSuffixRegex = regexp.MustCompile(`\s*\d+[,，]\d+円.*`)
	stockSuffixRegex = regexp.MustCompile(`\s*在庫数\s*\d+枚.*`)
)

// ParsePrice extracts a yen amount from listing text, e.g. "5,480円(税込)".
func ParsePrice(text string) (int, bool) {
	m := priceRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseStockText reads the stock fragment of listing text. "×" and 在庫なし
// mean sold out. 在庫数 N gives an explicit count. 在庫あり asserts presence
// without a count and reports quantity 1.
func ParseStockText(text string) (inStock bool, quantity int) {
	if strings.Contains(text, "×") || strings.Contains(text, "在庫なし") {
		return false, 0
	}
	if m := stockCountRegex.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return true, n
		}
	}
	if strings.Contains(text, "在庫あり") {
		return true, 1
	}
	return false, 0
}

// listingName strips the price and stock suffixes off the anchor text,
// leaving the product name.
func listingName(fullText string) string {
	name := priceSuffixRegex.ReplaceAllString(fullText, "")
	name = stockSuffixRegex.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if len([]rune(name)) > 100 {
		name = string([]rune(name)[:100])
	}
	return name
}
