package reconcile

import (
	"strconv"
	"strings"

	"cardarb-backend/services/cards"
)

// parseDate reads buylist update dates. Full dates are "YYYY/MM/DD";
// year-less "MM/DD" entries sort below any full date via year zero.
// Unparseable dates sort oldest so a dated duplicate always wins.
func parseDate(s string) (year, month, day int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	atoi := func(p string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		return n, err == nil
	}
	switch len(parts) {
	case 3:
		y, ok1 := atoi(parts[0])
		m, ok2 := atoi(parts[1])
		d, ok3 := atoi(parts[2])
		if ok1 && ok2 && ok3 {
			return y, m, d, true
		}
	case 2:
		m, ok1 := atoi(parts[0])
		d, ok2 := atoi(parts[1])
		if ok1 && ok2 {
			return 0, m, d, true
		}
	}
	return 0, 0, 0, false
}

func dateLess(a, b string) bool {
	ay, am, ad, aok := parseDate(a)
	by, bm, bd, bok := parseDate(b)
	if !aok || !bok {
		// undated entries lose to dated ones, tie when both undated
		return !aok && bok
	}
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// Dedup collapses records sharing a (code, name) key, keeping the one with
// the newest update date. Ties keep the first-seen record; output preserves
// first-seen order.
func Dedup(records []cards.Record) []cards.Record {
	index := make(map[string]int, len(records))
	var out []cards.Record
	for _, r := range records {
		key := r.Key()
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		if dateLess(out[at].UpdateDate, r.UpdateDate) {
			out[at] = r
		}
	}
	return out
}
