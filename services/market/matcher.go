package market

import (
	"log/slog"
	"strings"

	"cardarb-backend/lib/cardtext"
	"cardarb-backend/lib/condition"

	"github.com/antzucaro/matchr"
)

// MatchTarget identifies a buylist card to locate on the sell side.
type MatchTarget struct {
	Code   string
	Name   string
	Rarity string
}

type MatchOptions struct {
	// RelaxNameWithCode enables the relaxed name rule for candidates whose
	// text or URL carries the target's code: substring match in either
	// direction, or all target tokens present. Without it the strict rule
	// (normalized target contained in candidate name) applies everywhere.
	RelaxNameWithCode bool
}

const (
	masterBallRarity = "マスボ"
	masterBallMirror = "マスターボールミラー"
	conditionMark    = "状態"
	sealedMark       = "未開封"
)

func nameMatches(targetNorm, candidateNorm string, codeMatch bool, opts MatchOptions) bool {
	if targetNorm == "" {
		return false
	}
	if codeMatch && opts.RelaxNameWithCode {
		return strings.Contains(candidateNorm, targetNorm) ||
			strings.Contains(targetNorm, candidateNorm) ||
			cardtext.TokensAllIn(targetNorm, candidateNorm)
	}
	return strings.Contains(candidateNorm, targetNorm)
}

// filterMasterBall keeps only master-ball-mirror listings, preferring those
// without a condition mark in the name.
func filterMasterBall(candidates []CardListing) []CardListing {
	var mirror []CardListing
	for _, c := range candidates {
		if strings.Contains(c.Name, masterBallMirror) {
			mirror = append(mirror, c)
		}
	}
	if len(mirror) == 0 {
		return nil
	}
	var clean []CardListing
	for _, c := range mirror {
		if !strings.Contains(c.Name, conditionMark) {
			clean = append(clean, c)
		}
	}
	if len(clean) > 0 {
		return clean
	}
	return mirror
}

// preferUnsealed drops sealed-product listings when at least one listing
// without the sealed mark exists.
func preferUnsealed(candidates []CardListing) []CardListing {
	var unsealed []CardListing
	for _, c := range candidates {
		if !strings.Contains(c.Name, sealedMark) {
			unsealed = append(unsealed, c)
		}
	}
	if len(unsealed) > 0 {
		return unsealed
	}
	return candidates
}

// Match picks the single cheapest listing comparable to the target card, or
// ok=false when nothing matches. Graded and damaged listings never match; a
// target code, when present, must appear in the listing text or URL. In- and
// out-of-stock listings compete together, the listing's InStock field tells
// them apart.
func Match(target MatchTarget, listings []CardListing, opts MatchOptions) (CardListing, bool) {
	targetNorm := cardtext.NormalizeName(target.Name)

	seen := map[string]bool{}
	var inStock, outOfStock []CardListing
	var rejectedNames []string

	for _, l := range listings {
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true

		if condition.Excluded(l.Name) {
			continue
		}

		codeMatch := target.Code != "" &&
			(cardtext.CodeInText(target.Code, l.Name) || cardtext.CodeInText(target.Code, l.URL))
		if target.Code != "" && !codeMatch {
			continue
		}

		candidateNorm := cardtext.NormalizeName(l.Name)
		if !nameMatches(targetNorm, candidateNorm, codeMatch, opts) {
			rejectedNames = append(rejectedNames, candidateNorm)
			continue
		}
		if l.InStock {
			inStock = append(inStock, l)
		} else {
			outOfStock = append(outOfStock, l)
		}
	}

	if target.Rarity == masterBallRarity {
		inStock = filterMasterBall(inStock)
		outOfStock = filterMasterBall(outOfStock)
	}

	combined := append(inStock, outOfStock...)
	if len(combined) == 0 {
		logNearMiss(targetNorm, rejectedNames)
		return CardListing{}, false
	}

	preferred := preferUnsealed(combined)
	best := preferred[0]
	for _, c := range preferred[1:] {
		if c.Price < best.Price {
			best = c
		}
	}
	return best, true
}

// logNearMiss reports the closest rejected candidate by name similarity.
// Diagnostic only, it never affects selection.
func logNearMiss(targetNorm string, rejected []string) {
	if targetNorm == "" || len(rejected) == 0 {
		return
	}
	best := ""
	bestScore := 0.0
	for _, name := range rejected {
		score := matchr.JaroWinkler(targetNorm, name, true)
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	if bestScore >= 0.8 {
		slog.Debug(
			"no listing matched, closest candidate",
			"target", targetNorm,
			"candidate", best,
			"similarity", bestScore,
		)
	}
}
