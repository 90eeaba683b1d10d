// Package cardtext canonicalizes trading-card display names and set/number
// codes so listings from independently maintained retail catalogs can be
// compared. Normalization is lossy on purpose: the two catalogs disagree on
// width, spacing, decoration and qualifier suffixes, and over-merging the
// occasional pair of names is cheaper than missing real matches.
package cardtext

import (
	"regexp"
	"strings"
)

// decorationRegex strips bracket/punctuation characters and the star glyphs
// both shops use to decorate rarity inside the display name. U+3000 is listed
// explicitly since Go's \s is ASCII-only.
var decorationRegex = regexp.MustCompile(`[【】\[\]（）()「」『』<>＜＞:：・、，,☆★♡♥\s　]`)

var raritySuffixRegex = regexp.MustCompile(`(?i)\s*[(（](SA|HR|SR|SAR|MUR|UR|CSR|SSR|P|PR)[)）]\s*$`)

// foldWidth maps full-width Latin letters, digits and symbols to their
// half-width forms ("ｅｘ" to "ex", "＆" to "&").
func foldWidth(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '！' && r <= '～' {
			r -= 0xfee0
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeName reduces a display name to its comparison key. Two names refer
// to the same card under normalization iff the outputs are equal.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = foldWidth(name)
	// qualifier suffixes like "(SA)" start at the first opening parenthesis
	if i := strings.IndexAny(name, "(（"); i >= 0 {
		name = name[:i]
	}
	name = decorationRegex.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

// NormalizeForSearch prepares a display name for use as a search query:
// full-width ampersands are folded and trailing bracketed rarity qualifiers
// are stripped, repeatedly, so "ピカチュウ (SA) (PR)" becomes "ピカチュウ".
// Unlike NormalizeName this keeps casing and inner spacing, since the remote
// search index is tolerant of those.
func NormalizeForSearch(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "＆", "&")
	for {
		m := raritySuffixRegex.FindStringIndex(s)
		if m == nil {
			break
		}
		s = strings.TrimRight(s[:m[0]], " \t　")
	}
	return s
}

var exSetCodeRegex = regexp.MustCompile(`^ex(s[a-z]*\d+[a-z]?)$`)

func isJapanese(r rune) bool {
	return r >= '぀' && r <= '鿿'
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Tokens splits an already-normalized name at boundaries between Japanese
// script and ASCII alphanumerics, then sub-splits "ex"+set-code runs
// ("exsv5k" into "ex", "sv5k"). Listing names interleave rarity markers
// between the Japanese name and the trailing "ex"/set-code, so matching
// token-by-token survives the interleaving.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	var tokens []string
	var current strings.Builder
	var prev rune
	first := true
	for _, r := range normalized {
		if !first {
			boundary := (isJapanese(prev) && isAlnum(r)) || (isAlnum(prev) && isJapanese(r))
			if boundary && current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
		prev = r
		first = false
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	var expanded []string
	for _, t := range tokens {
		if m := exSetCodeRegex.FindStringSubmatch(t); m != nil {
			expanded = append(expanded, "ex", m[1])
			continue
		}
		expanded = append(expanded, t)
	}
	return expanded
}

// TokensAllIn reports whether every token of the normalized target appears
// somewhere in the normalized candidate. An untokenizable target falls back
// to plain substring containment.
func TokensAllIn(normalizedTarget, normalizedCandidate string) bool {
	if normalizedTarget == "" || normalizedCandidate == "" {
		return false
	}
	tokens := Tokens(normalizedTarget)
	if len(tokens) == 0 {
		return strings.Contains(normalizedCandidate, normalizedTarget)
	}
	for _, t := range tokens {
		if !strings.Contains(normalizedCandidate, t) {
			return false
		}
	}
	return true
}
