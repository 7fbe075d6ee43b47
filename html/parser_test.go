package html

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarsching/rspamd/mempool"
	"github.com/smarsching/rspamd/urlx"
)

func parse(t *testing.T, input string, opts Options) (*Content, string) {
	t.Helper()
	pool := mempool.New()
	t.Cleanup(pool.Reset)
	hc := &Content{}
	out := ProcessPart(pool, hc, []byte(input), opts)
	return hc, string(out)
}

func TestSimpleParagraph(t *testing.T) {
	t.Parallel()
	hc, text := parse(t, "<p>hello&nbsp;world</p>", Options{})

	assert.Equal(t, "hello\u00a0world\r\n", text)
	assert.True(t, hc.TagSeen("p"))
	assert.Equal(t, Flags(0), hc.Flags)
}

func TestDisplayedAndQueryURLs(t *testing.T) {
	t.Parallel()
	set := urlx.NewSet()
	var partURLs []*urlx.URL
	var exceptions []Exception
	hc, text := parse(t,
		`<a href="http://example.com/?x=http://evil.com">click http://safe.org</a>`,
		Options{URLSet: set, PartURLs: &partURLs, Exceptions: &exceptions})

	assert.Equal(t, "click http://safe.org", text)
	assert.Equal(t, Flags(0), hc.Flags)

	href := set.Lookup("http://example.com/?x=http://evil.com")
	require.NotNil(t, href)
	assert.NotZero(t, href.Flags&urlx.FlagDisplayURL)

	query := set.Lookup("http://evil.com")
	require.NotNil(t, query)
	assert.NotZero(t, query.Flags&urlx.FlagQuery)

	displayed := set.Lookup("http://safe.org")
	require.NotNil(t, displayed)
	assert.NotZero(t, displayed.Flags&urlx.FlagDisplayURL)

	// query URL first, then the href itself, in document order
	require.Len(t, partURLs, 2)
	assert.Equal(t, "http://evil.com", partURLs[0].Raw)
	assert.Equal(t, "http://example.com/?x=http://evil.com", partURLs[1].Raw)

	require.Len(t, exceptions, 1)
	assert.Equal(t, 0, exceptions[0].Pos)
	assert.Equal(t, ExceptionURL, exceptions[0].Kind)
}

func TestDataImage(t *testing.T) {
	t.Parallel()
	hc, _ := parse(t, `<img src="data:image/png;base64,iVBORw0KGgo=" width="10">`, Options{})

	require.Len(t, hc.Images, 1)
	img := hc.Images[0]
	assert.NotZero(t, img.Flags&ImageEmbedded)
	assert.NotZero(t, img.Flags&ImageData)
	assert.Equal(t, 10, img.Width)
	assert.NotZero(t, hc.Flags&FlagHasDataURLs)
}

func TestUnbalancedTags(t *testing.T) {
	t.Parallel()
	hc, text := parse(t, "<b><i>hi</b></i>", Options{})

	assert.Equal(t, "hi", text)
	assert.NotZero(t, hc.Flags&FlagUnbalanced)
	assert.True(t, hc.TagSeen("b"))
	assert.True(t, hc.TagSeen("i"))

	var names []string
	for _, tag := range hc.Tree() {
		if tag.Flags&FLClosing == 0 {
			names = append(names, string(tag.Name))
		}
	}
	assert.Equal(t, []string{"b", "i"}, names)
}

func TestInvisibleBlockSuppressed(t *testing.T) {
	t.Parallel()
	hc, text := parse(t,
		`<body bgcolor="#112233"><p style="color:#ff0000;font-size:2px">x</p></body>`,
		Options{})

	assert.Equal(t, uint32(0x112233ff), hc.BGColor.RGBA())
	assert.NotContains(t, text, "x")

	var pBlock *Block
	for _, bl := range hc.Blocks {
		if bl.Tag.ID == TagByName("p") {
			pBlock = bl
		}
	}
	require.NotNil(t, pBlock)
	assert.Equal(t, uint32(0xff0000ff), pBlock.FontColor.RGBA())
	assert.Equal(t, uint8(2), pBlock.FontSize)
	assert.False(t, pBlock.Visible)
	// background inherited from the body block
	assert.Equal(t, uint32(0x112233ff), pBlock.BackgroundColor.RGBA())
}

func TestBaseURLJoin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		base     string
		expected string
	}{
		{"dir_base", "http://ex.com/a/", "http://ex.com/a/foo/bar"},
		{"host_base", "http://ex.com", "http://ex.com/foo/bar"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			set := urlx.NewSet()
			input := `<base href="` + tc.base + `"><a href="foo/bar">t</a>`
			hc, _ := parse(t, input, Options{URLSet: set})
			require.NotNil(t, hc.BaseURL)
			assert.NotNil(t, set.Lookup(tc.expected),
				"expected %s in url set", tc.expected)
		})
	}
}

func TestHostRelativeJoin(t *testing.T) {
	t.Parallel()
	set := urlx.NewSet()
	input := `<base href="http://ex.com/deep/dir/"><a href="/top">t</a>`
	_, _ = parse(t, input, Options{URLSet: set})
	assert.NotNil(t, set.Lookup("http://ex.com/top"))
}

func TestBadStart(t *testing.T) {
	t.Parallel()
	hc, text := parse(t, "plain text, no markup", Options{})
	assert.NotZero(t, hc.Flags&FlagBadStart)
	assert.Equal(t, "plain text, no markup", text)
}

func TestWhitespaceCollapsing(t *testing.T) {
	t.Parallel()
	_, text := parse(t, "<p>a   b\n\t c</p>", Options{})
	assert.Equal(t, "a b c\r\n", text)
}

func TestBrAndDivNewlines(t *testing.T) {
	t.Parallel()
	_, text := parse(t, "<div>a<br>b</div>", Options{})
	assert.Equal(t, "a\r\nb\r\n", text)
}

func TestCommentsAndDoctype(t *testing.T) {
	t.Parallel()
	hc, text := parse(t, "<!DOCTYPE html><!-- hidden -- comment --><p>ok</p>", Options{})
	assert.Equal(t, "ok\r\n", text)
	assert.Zero(t, hc.Flags&FlagBadElements)
}

func TestInvalidComments(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"<!-->x", "<!--->x"} {
		hc, _ := parse(t, input, Options{})
		assert.NotZero(t, hc.Flags&FlagBadElements, "input %q", input)
	}
}

func TestXMLProcessingInstruction(t *testing.T) {
	t.Parallel()
	hc, text := parse(t, `<?xml version="1.0"?><p>x</p>`, Options{})
	assert.NotZero(t, hc.Flags&FlagXML)
	assert.Equal(t, "x\r\n", text)
}

func TestCDATASkipped(t *testing.T) {
	t.Parallel()
	_, text := parse(t, "<![CDATA[ ignored [nested] ]]><p>x</p>", Options{})
	assert.Equal(t, "x\r\n", text)
}

func TestEmptyTag(t *testing.T) {
	t.Parallel()
	hc, _ := parse(t, "<><p>x</p>", Options{})
	assert.NotZero(t, hc.Flags&FlagBadElements)
}

func TestUnknownElements(t *testing.T) {
	t.Parallel()
	hc, _ := parse(t, "<blink>x</blink>", Options{})
	assert.NotZero(t, hc.Flags&FlagUnknownElements)
}

func TestDuplicateUniqueElements(t *testing.T) {
	t.Parallel()
	hc, _ := parse(t, "<html><body>a</body><body>b</body></html>", Options{})
	assert.NotZero(t, hc.Flags&FlagDuplicateElements)

	hc, _ = parse(t, "<html><body>a</body></html>", Options{})
	assert.Zero(t, hc.Flags&FlagDuplicateElements)
}

func TestTooManyTags(t *testing.T) {
	t.Parallel()
	input := strings.Repeat("<div>", maxTags+100)
	hc, _ := parse(t, input, Options{})
	assert.NotZero(t, hc.Flags&FlagTooManyTags)
	assert.LessOrEqual(t, len(hc.Tree()), maxTags)
}

func TestScriptAndHeadContentIgnored(t *testing.T) {
	t.Parallel()
	_, text := parse(t, "<script>var x = 1;</script><p>visible</p>", Options{})
	assert.Equal(t, "visible\r\n", text)

	_, text = parse(t, "<title>subject line</title><p>body</p>", Options{})
	assert.NotContains(t, text, "subject")
}

func TestAltTextEmitted(t *testing.T) {
	t.Parallel()
	_, text := parse(t, `<p>see<img src="http://x.invalid/i.png" alt="the offer">now</p>`, Options{})
	assert.Contains(t, text, " the offer ")
}

func TestStyleSheetHidesBlock(t *testing.T) {
	t.Parallel()
	input := `<style>.hidden{display:none}</style><div class="hidden">spam</div><div>ham</div>`

	_, text := parse(t, input, Options{AllowCSS: true})
	assert.NotContains(t, text, "spam")
	assert.Contains(t, text, "ham")

	_, text = parse(t, input, Options{})
	assert.Contains(t, text, "spam")
}

func TestContentLengthRollup(t *testing.T) {
	t.Parallel()
	hc, _ := parse(t, "<div><p>abcd</p><p>ef</p></div>", Options{})

	var div *Tag
	for _, tag := range hc.Tree() {
		if tag.ID == TagByName("div") && tag.Flags&FLClosing == 0 {
			div = tag
		}
	}
	require.NotNil(t, div)
	// the paragraphs' 4 + 2 content bytes roll up into the div; text and
	// synthetic newlines emitted after a child's closing tag are not counted
	assert.GreaterOrEqual(t, div.ContentLength, 6)
}

func TestIdempotentOverPlainText(t *testing.T) {
	t.Parallel()
	_, first := parse(t, "some   spaced\t\ttext", Options{})
	_, second := parse(t, first, Options{})
	assert.Equal(t, first, second)
}

func TestVisibleTextBounded(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"<p>hello</p>",
		strings.Repeat("<br>", 100),
		"a<b>c</b>d",
		strings.Repeat("&amp;", 50),
	}
	for _, in := range inputs {
		_, text := parse(t, in, Options{})
		assert.LessOrEqual(t, len(text), 3*len(in), "input %q", in)
	}
}

func TestTagQueries(t *testing.T) {
	t.Parallel()
	assert.Equal(t, -1, TagByName("nosuchtag"))
	id := TagByName("DIV")
	require.NotEqual(t, -1, id)
	assert.Equal(t, "div", TagByID(id))
	assert.Equal(t, "", TagByID(-1))
}

func TestDecodeEntitiesInplace(t *testing.T) {
	t.Parallel()
	b := []byte("a&amp;b")
	n := DecodeEntitiesInplace(b)
	assert.Equal(t, "a&b", string(b[:n]))

	// idempotent over decoded text
	n2 := DecodeEntitiesInplace(b[:n])
	assert.Equal(t, n, n2)

	plain := []byte("no entities here")
	assert.Equal(t, len(plain), DecodeEntitiesInplace(plain))
}

func TestProcessTwiceIsStructurallyEqual(t *testing.T) {
	t.Parallel()
	const input = `<body><a href="http://example.com/x">link http://other.org</a><p>text</p></body>`

	run := func() (Flags, string, int) {
		set := urlx.NewSet()
		hc, text := parse(t, input, Options{URLSet: set})
		return hc.Flags, text, set.Len()
	}
	f1, t1, n1 := run()
	f2, t2, n2 := run()
	assert.Equal(t, f1, f2)
	assert.Equal(t, t1, t2)
	assert.Equal(t, n1, n2)
}
