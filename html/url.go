package html

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/smarsching/rspamd/mempool"
	"github.com/smarsching/rspamd/urlx"
)

const hexDigits = "0123456789abcdef"

// hasStrangePrefix accepts the schemeless-but-valid prefixes kept verbatim.
func hasStrangePrefix(s []byte) bool {
	if len(s) < len("mailto:") {
		return false
	}
	return bytes.HasPrefix(s, []byte("mailto:")) ||
		bytes.HasPrefix(s, []byte("tel:")) ||
		bytes.HasPrefix(s, []byte("callto:"))
}

// processURL turns a raw href/src/action value into a parsed URL, or nil
// when nothing usable remains. Spam href values arrive padded, split across
// lines and sprinkled with control bytes, so the resolver strips whitespace,
// percent-encodes non-graphic bytes and synthesizes a scheme when the value
// looks like a bare host or address.
func processURL(pool *mempool.Pool, s []byte) *urlx.URL {
	s = trimASCIISpace(s)
	if len(s) == 0 {
		return nil
	}

	prefix := "http://"
	noPrefix := false
	hasBadChars := false

	if !bytes.Contains(s, []byte("://")) && !hasStrangePrefix(s) {
		for i := 0; i < len(s); i++ {
			b := s[i]
			if b&0x80 != 0 || isAlnum(b) {
				continue
			}
			if i == 0 && len(s) > 2 && b == '/' && s[1] == '/' {
				prefix = "http:"
				noPrefix = true
			} else if b == '@' {
				// likely a bare email address
				prefix = "mailto://"
				noPrefix = true
			} else if b == ':' && i != 0 {
				noPrefix = false
			} else if i == 0 {
				// no valid data
				return nil
			} else {
				noPrefix = true
			}
			break
		}
	}

	size := len(s)
	if noPrefix {
		size += len(prefix)
	}
	buf := pool.Alloc(size + 2*len(s))[:0]
	if noPrefix {
		buf = append(buf, prefix...)
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case isSpace(b):
			// internal whitespace usually means an obfuscation attempt
		case b < 0x80 && !isGraph(b):
			buf = append(buf, '%', hexDigits[(b>>4)&0xf], hexDigits[b&0xf])
			hasBadChars = true
		default:
			buf = append(buf, b)
		}
	}

	u := urlx.Parse(string(buf))
	if u == nil || len(u.Host) == 0 {
		return nil
	}
	if hasBadChars {
		u.Flags |= urlx.FlagObscured
	}
	if noPrefix {
		u.Flags |= urlx.FlagSchemaless
		if u.TLD == "" || u.Flags&urlx.FlagNoTLD != 0 {
			// neither schema nor tld: not worth keeping
			return nil
		}
	}
	return u
}

// processURLTag resolves the href component of a tag, joining relative
// references against the part's base URL first.
func (hc *Content) processURLTag(pool *mempool.Pool, tag *Tag) *urlx.URL {
	comp := tag.Component(ComponentHref)
	if len(comp) == 0 {
		return nil
	}

	start := comp
	if hc.BaseURL != nil && len(comp) > 2 {
		if !bytes.Contains(comp, []byte("://")) {
			if len(comp) >= 5 && asciiCaseEqual(comp[:5], "data:") {
				// image data url, never insert as url
				return nil
			}
			if comp[0] == '/' && comp[1] != '/' {
				// relative to the hostname
				joined := hc.BaseURL.Scheme + "://" + hc.BaseURL.Host + string(comp)
				start = []byte(joined)
			} else {
				// plain relative reference below the base
				base := hc.BaseURL.Raw
				sep := ""
				if hc.BaseURL.Path == "" {
					sep = "/"
				}
				start = []byte(base + sep + string(comp))
			}
		}
	}

	u := processURL(pool, start)
	if u != nil && tag.Extra == nil {
		tag.Extra = u
	}
	return u
}

// processHTMLURL records a freshly inserted URL: URLs hiding inside its
// query string join the set with the QUERY flag, then the URL itself joins
// the part's ordered list.
func (hc *Content) processHTMLURL(u *urlx.URL, opts Options) {
	if u.Query != "" && opts.URLSet != nil {
		urlx.FindInQuery(u.Query, func(qu *urlx.URL) bool {
			if qu.Scheme == "mailto" && qu.User == "" {
				return false
			}
			log.Debug().Str("url", qu.Raw).Str("query_of", u.Raw).
				Msg("html: found url in query")
			qu.Flags |= urlx.FlagQuery
			if opts.URLSet.AddOrIncrease(qu) && opts.PartURLs != nil {
				*opts.PartURLs = append(*opts.PartURLs, qu)
			}
			return true
		})
	}
	if opts.PartURLs != nil {
		*opts.PartURLs = append(*opts.PartURLs, u)
	}
}

// checkDisplayedURL inspects the anchor text emitted since hrefOffset. When
// the text itself displays a URL the anchor is a phishing candidate: the
// href gets FlagDisplayURL, an exception span is recorded and the displayed
// URL joins the set.
func (hc *Content) checkDisplayedURL(dest []byte, hrefOffset int, u *urlx.URL, opts Options) {
	if hrefOffset < 0 || hrefOffset > len(dest) {
		return
	}
	visible := string(dest[hrefOffset:])
	visible = strings.TrimFunc(visible, unicode.IsSpace)
	visible = norm.NFC.String(visible)
	u.VisiblePart = visible

	displayed := urlx.FindDisplayed(visible)
	if displayed == nil {
		return
	}

	u.Flags |= urlx.FlagDisplayURL
	if !strings.EqualFold(displayed.Host, u.Host) {
		displayed.Flags |= urlx.FlagDisplayURL
	}

	if opts.Exceptions != nil {
		*opts.Exceptions = append(*opts.Exceptions, Exception{
			Pos:  hrefOffset,
			Len:  len(dest) - hrefOffset,
			Kind: ExceptionURL,
			URL:  u,
		})
	}

	if opts.URLSet != nil {
		turl := opts.URLSet.AddOrReturn(displayed)
		if turl != displayed {
			turl.Flags |= displayed.Flags & urlx.FlagDisplayURL
		}
		if turl.Flags&urlx.FlagFromText != 0 {
			// a URL already seen in the text part is just a hint here
			turl.Flags |= urlx.FlagHTMLDisplayed
			turl.Flags &^= urlx.FlagFromText
		}
		turl.Count++
	}
}
