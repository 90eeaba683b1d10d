package cardtext

import (
	"regexp"
	"strings"
)

// Ordered extraction patterns, first match wins. The second pattern is
// subsumed by the first for 3-digit codes but is kept as its own attempt so
// the precedence order stays visible. Best effort: a pathological name can
// still yield a false positive.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2,3}/\d{2,3}`),       // 094/080
	regexp.MustCompile(`\d{3}/\d{3}`),           // 001/030
	regexp.MustCompile(`\d{2,3}/[A-Z-]+`),       // 260/SV-P
	regexp.MustCompile(`[A-Z]{1,3}\d{1,3}[a-zA-Z]?`), // SV2a, M2, SV11B
	regexp.MustCompile(`\d{2,3}/S-P`),           // 227/S-P
}

// ExtractCode derives a set/number code from raw listing text. Returns ""
// when no pattern matches.
func ExtractCode(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range codePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// CodeInText reports whether every "/"-separated block of code appears in
// text in order, with arbitrary filler between blocks. Splitting on "/"
// only (not on every non-alphanumeric) keeps "227/S-P" distinct from
// "227/SM-P" while still tolerating shop formatting like "091-064" for
// "091/064".
func CodeInText(code, text string) bool {
	if code == "" || text == "" {
		return false
	}
	var parts []string
	for _, p := range strings.Split(strings.TrimSpace(code), "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return false
	}
	if len(parts) == 1 {
		return strings.Contains(text, parts[0])
	}
	rest := text
	for _, p := range parts {
		i := strings.Index(rest, p)
		if i < 0 {
			return false
		}
		rest = rest[i+len(p):]
	}
	return true
}
