package html

import (
	"golang.org/x/net/html/atom"
)

// Static tag class flags from the registry and dynamic flags set while
// parsing. The low bits come from the tag table; the high bits are assigned
// per tag instance.
const (
	CMInline  uint32 = 1 << 0
	CMEmpty   uint32 = 1 << 1
	CMHead    uint32 = 1 << 2
	CMUnknown uint32 = 1 << 3
	CMUnique  uint32 = 1 << 4
	FLBlock   uint32 = 1 << 5
	FLHref    uint32 = 1 << 6

	FLClosing uint32 = 1 << 16
	FLClosed  uint32 = 1 << 17
	FLIgnore  uint32 = 1 << 18
	FLBroken  uint32 = 1 << 19
	FLImage   uint32 = 1 << 20
)

type tagDef struct {
	id    int
	name  string
	atom  atom.Atom
	flags uint32
}

// tagDefs is the immutable registry: dense ids are table indices, so the
// tags-seen set stays a bitset. Balancing semantics hang off the flags:
// CM_EMPTY/CM_INLINE tags never join the open stack, everything else does.
var tagDefs = []tagDef{
	{name: "a", flags: FLHref},
	{name: "abbr", flags: CMInline},
	{name: "address", flags: FLBlock},
	{name: "applet", flags: 0},
	{name: "area", flags: CMEmpty | FLHref},
	{name: "article", flags: FLBlock},
	{name: "aside", flags: FLBlock},
	{name: "audio", flags: 0},
	{name: "b", flags: 0},
	{name: "base", flags: CMHead | CMEmpty},
	{name: "basefont", flags: CMEmpty},
	{name: "bdo", flags: CMInline},
	{name: "big", flags: CMInline},
	{name: "blockquote", flags: FLBlock},
	{name: "body", flags: CMUnique | FLBlock},
	{name: "br", flags: CMEmpty | CMInline},
	{name: "button", flags: 0},
	{name: "caption", flags: 0},
	{name: "center", flags: FLBlock},
	{name: "cite", flags: CMInline},
	{name: "code", flags: CMInline},
	{name: "col", flags: CMEmpty},
	{name: "colgroup", flags: 0},
	{name: "dd", flags: FLBlock},
	{name: "del", flags: CMInline},
	{name: "dfn", flags: CMInline},
	{name: "dir", flags: FLBlock},
	{name: "div", flags: FLBlock},
	{name: "dl", flags: FLBlock},
	{name: "dt", flags: FLBlock},
	{name: "em", flags: CMInline},
	{name: "embed", flags: CMEmpty},
	{name: "fieldset", flags: FLBlock},
	{name: "figcaption", flags: FLBlock},
	{name: "figure", flags: FLBlock},
	{name: "font", flags: FLBlock},
	{name: "footer", flags: FLBlock},
	{name: "form", flags: FLBlock | FLHref},
	{name: "frame", flags: CMEmpty},
	{name: "frameset", flags: 0},
	{name: "h1", flags: FLBlock},
	{name: "h2", flags: FLBlock},
	{name: "h3", flags: FLBlock},
	{name: "h4", flags: FLBlock},
	{name: "h5", flags: FLBlock},
	{name: "h6", flags: FLBlock},
	{name: "head", flags: CMHead | CMUnique},
	{name: "header", flags: FLBlock},
	{name: "hr", flags: CMEmpty},
	{name: "html", flags: CMUnique},
	{name: "i", flags: 0},
	{name: "iframe", flags: 0},
	{name: "img", flags: CMEmpty | CMInline},
	{name: "input", flags: CMEmpty | CMInline},
	{name: "ins", flags: CMInline},
	{name: "kbd", flags: CMInline},
	{name: "label", flags: CMInline},
	{name: "legend", flags: 0},
	{name: "li", flags: FLBlock},
	{name: "link", flags: CMHead | CMEmpty},
	{name: "main", flags: FLBlock},
	{name: "map", flags: 0},
	{name: "mark", flags: CMInline},
	{name: "marquee", flags: FLBlock},
	{name: "menu", flags: FLBlock},
	{name: "meta", flags: CMHead | CMEmpty},
	{name: "nav", flags: FLBlock},
	{name: "nobr", flags: CMInline},
	{name: "noframes", flags: CMHead},
	{name: "noscript", flags: CMHead},
	{name: "object", flags: 0},
	{name: "ol", flags: FLBlock},
	{name: "optgroup", flags: 0},
	{name: "option", flags: 0},
	{name: "output", flags: CMInline},
	{name: "p", flags: FLBlock},
	{name: "param", flags: CMEmpty},
	{name: "picture", flags: 0},
	{name: "pre", flags: FLBlock},
	{name: "q", flags: CMInline},
	{name: "rp", flags: CMInline},
	{name: "rt", flags: CMInline},
	{name: "ruby", flags: CMInline},
	{name: "s", flags: CMInline},
	{name: "samp", flags: CMInline},
	{name: "script", flags: CMHead},
	{name: "section", flags: FLBlock},
	{name: "select", flags: 0},
	{name: "small", flags: CMInline},
	{name: "source", flags: CMEmpty},
	{name: "span", flags: FLBlock},
	{name: "strike", flags: CMInline},
	{name: "strong", flags: CMInline},
	{name: "style", flags: CMHead},
	{name: "sub", flags: CMInline},
	{name: "summary", flags: 0},
	{name: "sup", flags: CMInline},
	{name: "table", flags: FLBlock},
	{name: "tbody", flags: 0},
	{name: "td", flags: FLBlock},
	{name: "textarea", flags: 0},
	{name: "tfoot", flags: 0},
	{name: "th", flags: FLBlock},
	{name: "thead", flags: 0},
	{name: "time", flags: CMInline},
	{name: "title", flags: CMHead | CMUnique},
	{name: "tr", flags: FLBlock},
	{name: "track", flags: CMEmpty},
	{name: "tt", flags: CMInline},
	{name: "u", flags: CMInline},
	{name: "ul", flags: FLBlock},
	{name: "var", flags: CMInline},
	{name: "video", flags: 0},
	{name: "wbr", flags: CMEmpty | CMInline},
	{name: "xmp", flags: FLBlock},
}

var (
	tagsByAtom = map[atom.Atom]*tagDef{}
	tagsByName = map[string]*tagDef{}

	tagA     int
	tagBase  int
	tagBody  int
	tagBR    int
	tagDIV   int
	tagHR    int
	tagImg   int
	tagLink  int
	tagP     int
	tagStyle int
	tagTR    int
)

func init() {
	for i := range tagDefs {
		td := &tagDefs[i]
		td.id = i
		if a := atom.Lookup([]byte(td.name)); a != 0 {
			td.atom = a
			tagsByAtom[a] = td
		}
		tagsByName[td.name] = td
	}
	tagA = tagsByName["a"].id
	tagBase = tagsByName["base"].id
	tagBody = tagsByName["body"].id
	tagBR = tagsByName["br"].id
	tagDIV = tagsByName["div"].id
	tagHR = tagsByName["hr"].id
	tagImg = tagsByName["img"].id
	tagLink = tagsByName["link"].id
	tagP = tagsByName["p"].id
	tagStyle = tagsByName["style"].id
	tagTR = tagsByName["tr"].id
}

// tagDefByName resolves a lowercased, entity-decoded tag name. The atom
// table is the fast path; names outside the atom set fall back to the map.
func tagDefByName(name []byte) *tagDef {
	if a := atom.Lookup(name); a != 0 {
		if td, ok := tagsByAtom[a]; ok {
			return td
		}
		return nil
	}
	return tagsByName[string(name)]
}

// TagByName maps a tag name to its registry id, -1 when unknown.
func TagByName(name string) int {
	b := []byte(name)
	asciiLowerInplace(b)
	if td := tagDefByName(b); td != nil {
		return td.id
	}
	return -1
}

// TagByID maps a registry id back to the canonical name, "" when out of
// range.
func TagByID(id int) string {
	if id < 0 || id >= len(tagDefs) {
		return ""
	}
	return tagDefs[id].name
}
