// Package cards holds the merged per-card record produced by the scraping
// and reconciliation pipeline, and its sqlite store. A record is identified
// by the (code, name) pair: a set/number code alone is NOT unique, the same
// numbering slot can denote two distinct cards disambiguated by name.
package cards

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// StockOutOfStock is the normalized out-of-stock status. In-stock statuses
// are rendered as "in_stock(N)" where N is the observed quantity, or 1 when
// presence was asserted without a count.
const StockOutOfStock = "out_of_stock"

func StockInStock(count int) string {
	if count < 1 {
		count = 1
	}
	return fmt.Sprintf("in_stock(%d)", count)
}

var inStockRegex = regexp.MustCompile(`^in_stock\((\d+)\)$`)

// ParseStock reads a normalized stock status. Anything that is not a
// well-formed in_stock value counts as out of stock; data quality flows
// through this one field, so unknown states degrade pessimistically.
func ParseStock(status string) (inStock bool, count int) {
	m := inStockRegex.FindStringSubmatch(strings.TrimSpace(status))
	if m == nil {
		return false, 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return true, 1
	}
	return true, n
}

type Record struct {
	No             string
	Code           string
	Name           string
	Rarity         string
	SetName        string
	BuyPrice       int
	SellPrice      int
	StockStatus    string
	UpdateDate     string
	ExpectedProfit string
	ImageURL       string
	ListingURL     string
}

// Key returns the composite identifier used to disambiguate cards sharing a
// code.
func (r Record) Key() string {
	return r.Code + "|" + r.Name
}
