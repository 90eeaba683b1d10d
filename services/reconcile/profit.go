// Package reconcile merges buy-side and sell-side observations into profit
// figures and the downstream filtered views built on them.
package reconcile

import (
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/reconcile")

// NormalizeStatus maps legacy and failure stock markers onto the canonical
// out-of-stock value. Well-formed in_stock values pass through untouched.
func NormalizeStatus(status string) string {
	s := strings.TrimSpace(status)
	switch s {
	case "", "nan", "取得失敗", "out_of_stock":
		return "out_of_stock"
	}
	if strings.HasPrefix(s, "in_stock(") && strings.HasSuffix(s, ")") {
		return s
	}
	return "out_of_stock"
}

// Profit computes the expected profit for a card given its buy price, the
// observed sell price, the normalized stock status and any previously cached
// expected-profit string.
//
// Out of stock: the sell price is the last known out-of-stock listing price,
// so profit is buy minus sell only when both sides are positive. In stock: a
// cached figure from a prior run wins over recomputation, keeping values
// stable across partial refreshes; otherwise buy minus sell unless the sell
// side is missing. Unparseable cached values yield zero rather than an error,
// a bad cache entry must not block the whole batch.
func Profit(buyPrice, sellPrice int, status, cachedProfit string) int {
	if NormalizeStatus(status) == "out_of_stock" {
		if buyPrice > 0 && sellPrice > 0 {
			return buyPrice - sellPrice
		}
		return 0
	}

	cached := strings.TrimSpace(cachedProfit)
	if cached != "" && cached != "nan" {
		n, err := strconv.Atoi(cached)
		if err != nil {
			return 0
		}
		return n
	}
	if sellPrice != 0 {
		return buyPrice - sellPrice
	}
	return 0
}
