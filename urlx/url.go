// Package urlx is the URL collaborator of the HTML processor: parsing and
// normalization on top of net/url, TLD knowledge from the public suffix
// list, a counting URL set, and the small recognizers the processor needs
// (URLs inside query strings, URLs displayed in anchor text).
package urlx

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Flags carries provenance bits accumulated on an extracted URL.
type Flags uint32

const (
	FlagImage Flags = 1 << iota
	FlagDisplayURL
	FlagQuery
	FlagObscured
	FlagSchemaless
	FlagHTMLDisplayed
	FlagFromText
	FlagNoTLD
)

// URL is a parsed, normalized URL plus the bookkeeping the spam pipeline
// wants: occurrence count, provenance flags and the visible anchor text it
// was displayed with.
type URL struct {
	Raw    string // normalized textual form; the set identity
	Scheme string
	Host   string
	TLD    string
	Path   string
	Query  string
	User   string

	Flags Flags
	Count int

	VisiblePart string
}

var knownSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"ftp":    true,
	"file":   true,
	"mailto": true,
	"tel":    true,
	"callto": true,
}

// Parse normalizes raw and returns nil when the input does not resolve to a
// URL with a known scheme and a non-empty host.
func Parse(raw string) *URL {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	scheme := strings.ToLower(u.Scheme)
	if !knownSchemes[scheme] {
		return nil
	}

	out := &URL{
		Raw:    u.String(),
		Scheme: scheme,
		Path:   u.Path,
		Query:  u.RawQuery,
	}
	host := strings.ToLower(u.Hostname())
	if u.User != nil {
		out.User = u.User.Username()
	}

	switch scheme {
	case "mailto", "tel", "callto":
		if host == "" && u.Opaque != "" {
			// mailto:user@host keeps the address in the opaque part
			if at := strings.LastIndexByte(u.Opaque, '@'); at >= 0 {
				out.User = u.Opaque[:at]
				host = strings.ToLower(u.Opaque[at+1:])
			} else {
				host = strings.ToLower(u.Opaque)
			}
		}
	}
	if host == "" {
		return nil
	}
	out.Host = host
	out.TLD = effectiveTLD(host)
	if out.TLD == "" {
		out.Flags |= FlagNoTLD
	}
	return out
}

// effectiveTLD returns the public suffix of host, or the host itself for IP
// literals. Hosts without a recognizable suffix yield "".
func effectiveTLD(host string) string {
	if ip := net.ParseIP(host); ip != nil {
		return host
	}
	ps, icann := publicsuffix.PublicSuffix(host)
	if icann {
		return ps
	}
	// Private-registry suffixes (github.io and friends) still sit on a known
	// ICANN label; fall back to the last label on its own.
	if i := strings.LastIndexByte(host, '.'); i >= 0 && i+1 < len(host) {
		last := host[i+1:]
		if _, icann := publicsuffix.PublicSuffix(last); icann {
			return last
		}
	}
	return ""
}
