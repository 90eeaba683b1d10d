// Package condition classifies retail listing text that must be excluded
// from price comparison: professionally graded cards and cards sold with an
// explicit damage/condition grade. The buy-side baseline is a PSA10 price,
// so only ungraded, standard-condition listings are comparable.
package condition

import "regexp"

var gradedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PSA\d+`),
	regexp.MustCompile(`(?i)ARS\d+`),
	regexp.MustCompile(`(?i)BGS\d+`),
	regexp.MustCompile(`鑑定`),
	regexp.MustCompile(`鑑定済`),
	regexp.MustCompile(`グレード`),
}

var conditionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`状態[A-Z]`),  // 状態A, 状態B
	regexp.MustCompile(`状態[A-Z]-`), // 状態A-
	regexp.MustCompile(`状態難`),
	regexp.MustCompile(`\(状態`),
	regexp.MustCompile(`\{状態`),
	regexp.MustCompile(`【状態`),
	regexp.MustCompile(`状態\w+`),
}

// Excluded reports whether the listing text carries a grading-service or
// condition-grade marker.
func Excluded(text string) bool {
	for _, p := range gradedPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	for _, p := range conditionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
