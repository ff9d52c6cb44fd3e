package geometry

import (
	"strconv"
	"strings"
)

// extractPolygonTexts scans free text for POLYGON((...)) substrings and
// returns each match verbatim. A small explicit scanner is used instead of
// a regex: matches are non-overlapping, case-insensitive, and tolerate one
// level of nested parentheses inside the coordinate list (rings do not
// nest further).
func extractPolygonTexts(s string) []string {
	var found []string

	i := 0
	for i < len(s) {
		start := indexFold(s[i:], "POLYGON")
		if start < 0 {
			break
		}
		start += i

		j := start + len("POLYGON")
		for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
			j++
		}
		if j >= len(s) || s[j] != '(' {
			i = start + len("POLYGON")
			continue
		}

		// The coordinate list must open with a second parenthesis, as in
		// POLYGON((...)); a bare POLYGON(...) is not a valid ring.
		k := j + 1
		for k < len(s) && s[k] == ' ' {
			k++
		}
		if k >= len(s) || s[k] != '(' {
			i = start + len("POLYGON")
			continue
		}

		end, ok := scanBalanced(s, j)
		if !ok {
			i = start + len("POLYGON")
			continue
		}

		found = append(found, s[start:end])
		i = end
	}

	return found
}

// scanBalanced walks from the opening parenthesis at open until the
// matching close, returning the index just past it.
func scanBalanced(s string, open int) (int, bool) {
	depth := 0
	for k := open; k < len(s); k++ {
		switch s[k] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return k + 1, true
			}
		}
	}
	return 0, false
}

// indexFold is a case-insensitive strings.Index for ASCII needles.
func indexFold(s, needle string) int {
	return strings.Index(strings.ToUpper(s), strings.ToUpper(needle))
}

// innerRingText pulls the outer coordinate list out of a POLYGON((...))
// string: everything between the double open parenthesis and the first
// close. Hole rings after the first close are dropped.
func innerRingText(wkt string) string {
	open := strings.Index(wkt, "((")
	if open < 0 {
		return ""
	}
	rest := wkt[open+2:]
	close := strings.IndexByte(rest, ')')
	if close < 0 {
		return ""
	}
	return rest[:close]
}

// parseRing splits a WKT coordinate list ("lng lat, lng lat, ...") into
// points. Pairs with a missing or non-finite component are discarded;
// nothing validates ring closure or a minimum vertex count, so degenerate
// shapes still produce a best-effort point set.
func parseRing(coords string) []Point {
	if strings.TrimSpace(coords) == "" {
		return nil
	}

	pairs := strings.Split(coords, ",")
	points := make([]Point, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Fields(pair)
		if len(fields) < 2 {
			continue
		}
		lng, errLng := strconv.ParseFloat(fields[0], 64)
		lat, errLat := strconv.ParseFloat(fields[1], 64)
		if errLng != nil || errLat != nil || !isFinite(lng) || !isFinite(lat) {
			continue
		}
		points = append(points, Point{Lng: lng, Lat: lat})
	}
	return points
}
