package urlx

import (
	"strings"
)

var queryPrefixes = []string{"http://", "https://", "ftp://", "mailto:"}

// queryStop reports bytes that terminate a URL candidate embedded in a query
// string.
func queryStop(b byte) bool {
	switch b {
	case '&', ';', '"', '\'', '<', '>', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// FindInQuery scans the raw query string of an extracted URL for further
// URLs (redirect targets, tracking payloads) and calls fn for each parsed
// hit. Scanning stops when fn returns false.
func FindInQuery(query string, fn func(*URL) bool) {
	lower := strings.ToLower(query)
	pos := 0
	for pos < len(lower) {
		start, prefix := -1, ""
		for _, pfx := range queryPrefixes {
			if i := strings.Index(lower[pos:], pfx); i != -1 && (start == -1 || pos+i < start) {
				start = pos + i
				prefix = pfx
			}
		}
		if start == -1 {
			// no scheme left; try a bare www. host
			if i := strings.Index(lower[pos:], "www."); i != -1 {
				start = pos + i
				prefix = ""
			} else {
				return
			}
		}
		end := start
		for end < len(query) && !queryStop(query[end]) {
			end++
		}
		cand := query[start:end]
		if prefix == "" {
			cand = "http://" + cand
		}
		if u := Parse(cand); u != nil && u.TLD != "" {
			if !fn(u) {
				return
			}
		}
		pos = end + 1
	}
}

// FindDisplayed locates the first URL-looking token in visible anchor text.
// Tokens qualify when they carry a scheme, start with www., or look like a
// bare host with a known public suffix.
func FindDisplayed(text string) *URL {
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ",.!?()[]{}<>\"'")
		if tok == "" {
			continue
		}
		lower := strings.ToLower(tok)
		switch {
		case strings.Contains(lower, "://"):
			if u := Parse(tok); u != nil {
				return u
			}
		case strings.HasPrefix(lower, "www."):
			if u := Parse("http://" + tok); u != nil && u.TLD != "" {
				return u
			}
		case strings.Contains(tok, "."):
			if u := Parse("http://" + tok); u != nil && u.TLD != "" {
				return u
			}
		}
	}
	return nil
}
