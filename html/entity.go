package html

import (
	"bytes"

	nethtml "golang.org/x/net/html"
)

// DecodeEntitiesInplace decodes HTML entity references in b, writing the
// result over the input, and returns the new length. Decoding never grows
// the buffer and is a no-op on entity-free text.
func DecodeEntitiesInplace(b []byte) int {
	if bytes.IndexByte(b, '&') == -1 {
		return len(b)
	}
	dec := nethtml.UnescapeString(string(b))
	if len(dec) >= len(b) {
		// nothing decoded (bare ampersands); keep the input untouched
		return len(b)
	}
	return copy(b, dec)
}
