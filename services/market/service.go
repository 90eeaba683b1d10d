package market

import (
	"context"
	"log/slog"
	"strconv"

	"cardarb-backend/services/cards"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Service struct {
	client *Client
	opts   MatchOptions
}

func NewService(client *Client, opts MatchOptions) Service {
	return Service{client: client, opts: opts}
}

// BatchOptions narrows which buylist rows a batch run processes.
type BatchOptions struct {
	// FilterCode processes a single code; FilterCodes a set. FilterCodes
	// wins when both are given.
	FilterCode  string
	FilterCodes []string
	// Head / Tail keep only the first or last N rows; Head wins.
	Head int
	Tail int
	// Debug caps the batch at the first 5 rows.
	Debug bool
}

func applyBatchFilters(rows []cards.Record, opts BatchOptions) []cards.Record {
	if len(opts.FilterCodes) > 0 {
		allowed := map[string]bool{}
		for _, c := range opts.FilterCodes {
			allowed[c] = true
		}
		var out []cards.Record
		for _, r := range rows {
			if allowed[r.Code] {
				out = append(out, r)
			}
		}
		rows = out
	} else if opts.FilterCode != "" {
		var out []cards.Record
		for _, r := range rows {
			if r.Code == opts.FilterCode {
				out = append(out, r)
			}
		}
		rows = out
	}

	if opts.Head > 0 && opts.Head < len(rows) {
		rows = rows[:opts.Head]
	} else if opts.Tail > 0 && opts.Tail < len(rows) {
		rows = rows[len(rows)-opts.Tail:]
	}
	if opts.Debug && len(rows) > 5 {
		rows = rows[:5]
	}
	return rows
}

// RunBatch searches the sell side for every buylist row and merges the best
// listing into each record. Per-row failures are logged and skipped; the row
// keeps an out-of-stock status so the batch stays complete. On cancellation
// the rows merged so far are returned alongside the error so callers can
// persist partial progress.
func (s Service) RunBatch(ctx context.Context, rows []cards.Record, opts BatchOptions) ([]cards.Record, error) {
	ctx, span := tracer.Start(ctx, "RunBatch")
	defer span.End()

	rows = applyBatchFilters(rows, opts)
	span.SetAttributes(attribute.Int("targets", len(rows)))

	var results []cards.Record
	for idx, row := range rows {
		slog.Info("searching listings", "progress", idx+1, "total", len(rows), "code", row.Code, "name", row.Name)

		keyword := row.Code
		if keyword == "" {
			keyword = row.Name
		}
		if keyword == "" {
			slog.Warn("row has no search keyword, skipping", "name", row.Name)
			row.StockStatus = cards.StockOutOfStock
			results = append(results, row)
			continue
		}

		searchResult, err := s.client.Search(ctx, keyword)
		if err != nil {
			if ctx.Err() != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "batch canceled")
				return results, err
			}
			slog.Warn("search failed", "keyword", keyword, "err", err)
			// same shape as a miss, except a partially loaded page may
			// still have yielded an image worth keeping
			row.SellPrice = 0
			row.StockStatus = cards.StockOutOfStock
			row.ExpectedProfit = ""
			row.ListingURL = ""
			row.ImageURL = searchResult.FallbackImage
			results = append(results, row)
			continue
		}

		results = append(results, s.merge(row, searchResult))
	}

	return results, nil
}

func (s Service) merge(row cards.Record, res SearchResult) cards.Record {
	target := MatchTarget{Code: row.Code, Name: row.Name, Rarity: row.Rarity}
	listing, ok := Match(target, res.Listings, s.opts)
	if !ok {
		// no comparable listing: blank the image and url rather than
		// carry over a different card's
		row.SellPrice = 0
		row.StockStatus = cards.StockOutOfStock
		row.ExpectedProfit = ""
		row.ImageURL = ""
		row.ListingURL = ""
		return row
	}

	row.SellPrice = listing.Price
	if listing.InStock {
		row.StockStatus = cards.StockInStock(listing.Quantity)
	} else {
		row.StockStatus = cards.StockOutOfStock
	}
	row.ListingURL = listing.URL
	row.ImageURL = listing.ImageURL
	if row.BuyPrice > 0 && listing.Price > 0 {
		row.ExpectedProfit = strconv.Itoa(row.BuyPrice - listing.Price)
	} else {
		row.ExpectedProfit = ""
	}
	return row
}
