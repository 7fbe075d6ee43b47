package html

import (
	"testing"

	"github.com/smarsching/rspamd/mempool"
	"github.com/smarsching/rspamd/urlx"
)

func TestProcessURL(t *testing.T) {
	t.Parallel()
	pool := mempool.New()
	t.Cleanup(pool.Reset)

	tests := []struct {
		name  string
		input string
		want  string
		flags urlx.Flags
		none  bool
	}{
		{"plain", "http://example.com/path", "http://example.com/path", 0, false},
		{"padded", "  http://example.com/  ", "http://example.com/", 0, false},
		{"protocol_relative", "//cdn.example.com/x", "http://cdn.example.com/x", urlx.FlagSchemaless, false},
		{"bare_email", "user@example.com", "mailto://user@example.com", urlx.FlagSchemaless, false},
		{"bare_host", "www.example.com", "http://www.example.com", urlx.FlagSchemaless, false},
		{"internal_space", "http://exam ple.com/", "http://example.com/", 0, false},
		{"control_byte", "http://example.com/\x01x", "http://example.com/%01x", urlx.FlagObscured, false},
		{"leading_junk", "?query-only", "", 0, true},
		{"bare_word", "clickhere", "", 0, true},
		{"schemaless_no_tld", "foo.nosuchtldzz/x", "", 0, true},
		{"mailto_kept", "mailto:someone@example.com", "mailto:someone@example.com", 0, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			u := processURL(pool, []byte(tc.input))
			if tc.none {
				if u != nil {
					t.Fatalf("processURL(%q) = %q, expected rejection", tc.input, u.Raw)
				}
				return
			}
			if u == nil {
				t.Fatalf("processURL(%q) rejected, expected %q", tc.input, tc.want)
			}
			if u.Raw != tc.want {
				t.Fatalf("processURL(%q) = %q, expected %q", tc.input, u.Raw, tc.want)
			}
			if u.Flags&tc.flags != tc.flags {
				t.Fatalf("processURL(%q) flags = %#x, expected %#x set", tc.input, u.Flags, tc.flags)
			}
		})
	}
}

func TestProcessURLTagDataURLNeverResolved(t *testing.T) {
	t.Parallel()
	pool := mempool.New()
	t.Cleanup(pool.Reset)

	hc := &Content{}
	hc.BaseURL = urlx.Parse("http://ex.com/")
	tag := &Tag{ID: tagA, Flags: FLHref}
	tag.setComponent(ComponentHref, []byte("data:image/png;base64,AAAA"))
	if u := hc.processURLTag(pool, tag); u != nil {
		t.Fatalf("data: url resolved to %q, expected none", u.Raw)
	}
}

func TestProcessURLTagSetsExtraOnce(t *testing.T) {
	t.Parallel()
	pool := mempool.New()
	t.Cleanup(pool.Reset)

	hc := &Content{}
	tag := &Tag{ID: tagA, Flags: FLHref}
	tag.setComponent(ComponentHref, []byte("http://example.com/"))
	u := hc.processURLTag(pool, tag)
	if u == nil {
		t.Fatal("url not resolved")
	}
	if tag.Extra != u {
		t.Fatal("tag extra should hold the resolved url")
	}
	if u2 := hc.processURLTag(pool, tag); u2 == nil || tag.Extra != u {
		t.Fatal("a second resolution should leave the first url in tag extra")
	}
}
