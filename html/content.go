// Package html parses malformed HTML message parts for spam analysis. One
// pass over the input produces sanitized visible text, a best-effort
// balanced tag tree, extracted URLs with provenance flags, per-block visual
// style and a set of structural-defect flags. The parser never fails: every
// input yields a usable result.
package html

import (
	"github.com/smarsching/rspamd/css"
	"github.com/smarsching/rspamd/mempool"
	"github.com/smarsching/rspamd/urlx"
)

// Flags describes structural defects observed in a part. The values are a
// stable public enumeration.
type Flags uint32

const (
	FlagBadStart          Flags = 0x1
	FlagXML               Flags = 0x2
	FlagUnbalanced        Flags = 0x4
	FlagBadElements       Flags = 0x8
	FlagUnknownElements   Flags = 0x10
	FlagDuplicateElements Flags = 0x20
	FlagTooManyTags       Flags = 0x40
	FlagHasDataURLs       Flags = 0x80
)

// maxTags bounds the number of retained tag records; the excess is dropped
// and FlagTooManyTags recorded.
const maxTags = 8192

// ExceptionKind classifies a span of visible text carrying special
// semantics.
type ExceptionKind int

const (
	// ExceptionURL marks anchor text that displayed a URL.
	ExceptionURL ExceptionKind = iota
)

// Exception marks a region of the visible-text buffer for downstream
// consumers.
type Exception struct {
	Pos  int
	Len  int
	Kind ExceptionKind
	URL  *urlx.URL
}

// Content is the root result object for one part. The caller provides a
// fresh Content per parse; ProcessPart fills it in place.
type Content struct {
	Flags   Flags
	BGColor Color
	BaseURL *urlx.URL

	Images []*Image
	Blocks []*Block

	// Stylesheet accumulates rules from <style> elements when CSS parsing
	// is enabled.
	Stylesheet *css.Stylesheet

	// TotalTags counts the tag tokens attached to the tree (including closing
	// tokens removed again on a successful balance) and the discarded
	// unknown-name tags. Tags dropped past maxTags are not counted.
	TotalTags int

	tree     tree
	tagsSeen []uint64
}

// Options selects the optional outputs of a parse.
type Options struct {
	// AllowCSS enables handing <style> content to the CSS collaborator.
	AllowCSS bool
	// Exceptions receives displayed-URL spans when non-nil.
	Exceptions *[]Exception
	// URLSet deduplicates extracted URLs across parts when non-nil.
	URLSet *urlx.Set
	// PartURLs receives newly inserted URLs in document order when non-nil.
	PartURLs *[]*urlx.URL
}

func (hc *Content) setTagSeen(id int) {
	if id < 0 || id >= len(tagDefs) {
		return
	}
	hc.tagsSeen[id/64] |= 1 << (uint(id) % 64)
}

func (hc *Content) tagSeenID(id int) bool {
	if id < 0 || id >= len(tagDefs) || hc.tagsSeen == nil {
		return false
	}
	return hc.tagsSeen[id/64]&(1<<(uint(id)%64)) != 0
}

// TagSeen reports whether a tag with the given name occurred in the part.
func (hc *Content) TagSeen(name string) bool {
	return hc.tagSeenID(TagByName(name))
}

// Tree exposes the parsed tag records in document order; the root sentinel
// is excluded.
func (hc *Content) Tree() []*Tag {
	if len(hc.tree.nodes) <= 1 {
		return nil
	}
	out := make([]*Tag, 0, len(hc.tree.nodes)-1)
	for _, n := range hc.tree.nodes[1:] {
		if n.tag != nil {
			out = append(out, n.tag)
		}
	}
	return out
}

// Process parses input with every optional output disabled, mirroring the
// common path of the scoring pipeline.
func Process(pool *mempool.Pool, hc *Content, input []byte) []byte {
	return ProcessPart(pool, hc, input, Options{})
}
