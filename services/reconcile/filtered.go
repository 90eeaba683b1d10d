package reconcile

import (
	"math"

	"cardarb-backend/services/cards"
)

// Fee and threshold constants shared with the frontend profit calculator.
const (
	GradeFeeStandard = 3000
	GradeFeeExpress  = 10000
	MinProfitToShow  = 5001
	ExpressThreshold = 30000

	DefaultProfitRateMin = 20
)

// GradingFee returns the grading fee tier for an expected maximum profit.
// Profits below the visibility floor return ok=false and are dropped from
// the filtered view entirely.
func GradingFee(maxProfit int) (fee int, ok bool) {
	if maxProfit < MinProfitToShow {
		return 0, false
	}
	if maxProfit >= ExpressThreshold {
		return GradeFeeExpress, true
	}
	return GradeFeeStandard, true
}

// FilteredCard is a card that cleared the profit floor, annotated with the
// fee, net profit and rate figures the filtered view exposes.
type FilteredCard struct {
	cards.Record

	GradingFee int
	NetProfit  int
	// ProfitRate is rounded to one decimal for display; rate filtering uses
	// the unrounded value so 19.99... still falls below a 20 threshold.
	ProfitRate float64
	// MonthlyRate is ProfitRate halved, only meaningful on the standard fee
	// tier where grading takes about two months. Negative means not
	// applicable (express tier).
	MonthlyRate float64

	rateRaw float64
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Derive computes the filtered-view annotation for one record, or ok=false
// when the record falls below the visibility floor.
func Derive(r cards.Record) (FilteredCard, bool) {
	maxProfit := Profit(r.BuyPrice, r.SellPrice, r.StockStatus, r.ExpectedProfit)

	fee, ok := GradingFee(maxProfit)
	if !ok {
		return FilteredCard{}, false
	}

	net := maxProfit - fee
	totalCost := float64(r.SellPrice + fee)
	var rateRaw float64
	if totalCost > 0 {
		rateRaw = float64(net) / totalCost * 100
	}

	out := FilteredCard{
		Record:      r,
		GradingFee:  fee,
		NetProfit:   net,
		ProfitRate:  round1(rateRaw),
		MonthlyRate: -1,
		rateRaw:     rateRaw,
	}
	if fee == GradeFeeStandard {
		out.MonthlyRate = round1(rateRaw / 2)
	}
	return out, true
}

// FilterAll derives the filtered view for a batch, dropping cards whose
// unrounded profit rate is below rateMin.
func FilterAll(records []cards.Record, rateMin float64) []FilteredCard {
	var out []FilteredCard
	for _, r := range records {
		fc, ok := Derive(r)
		if !ok {
			continue
		}
		if fc.rateRaw < rateMin {
			continue
		}
		out = append(out, fc)
	}
	return out
}
