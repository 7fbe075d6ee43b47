package html

import (
	"github.com/smarsching/rspamd/mempool"
)

// The attribute lexer runs over the bytes between '<' (or '</') and the
// matching '>'. It is fed one byte at a time by the outer tokenizer and
// keeps its state in a plain struct so a tag interior can resume across
// dispatch boundaries.

type attrState uint8

const (
	attrParseStart attrState = iota
	attrParseName
	attrParseAttrName
	attrParseEqual
	attrParseStartDquote
	attrParseDqValue
	attrParseEndDquote
	attrParseStartSquote
	attrParseSqValue
	attrParseEndSquote
	attrParseValue
	attrSpacesAfterName
	attrSpacesBeforeEq
	attrSpacesAfterEq
	attrSpacesAfterParam
	attrIgnoreBadTag
)

type attrParser struct {
	state     attrState
	savedP    int
	nameStart int
	comp      Component
	hasComp   bool
}

func (a *attrParser) reset() {
	a.state = attrParseStart
	a.savedP = -1
	a.nameStart = -1
	a.hasComp = false
}

// store copies the pending attribute value into the arena, decodes entities
// in place and records it on the tag. Repeated attributes keep the first
// value.
func (a *attrParser) store(pool *mempool.Pool, tag *Tag, in []byte, p int) {
	if a.savedP >= 0 && a.hasComp && p > a.savedP {
		if _, ok := tag.Components[a.comp]; !ok {
			v := pool.Copy(in[a.savedP:p])
			v = v[:DecodeEntitiesInplace(v)]
			tag.setComponent(a.comp, v)
		}
	}
	a.savedP = -1
	a.hasComp = false
}

// backtrackName trims trailing non-alphanumerics off an attribute name that
// ran into a quote or control byte.
func (a *attrParser) backtrackName(in []byte, p int) int {
	end := p - 1
	for end > a.savedP && !isAlnum(in[end]) {
		end--
	}
	return end + 1
}

// parseTagContent consumes the byte at in[p] for the current tag.
func parseTagContent(pool *mempool.Pool, hc *Content, tag *Tag, in []byte, p int, a *attrParser) {
	t := in[p]
	var next byte
	if p+1 < len(in) {
		next = in[p+1]
	}

	switch a.state {
	case attrParseStart:
		if !isAlpha(t) && !isSpace(t) {
			hc.Flags |= FlagBadElements
			a.state = attrIgnoreBadTag
			tag.ID = -1
			tag.Flags |= FLBroken
		} else if isAlpha(t) {
			a.state = attrParseName
			a.nameStart = p
		}

	case attrParseName:
		if isSpace(t) || t == '>' || t == '/' {
			if t == '/' {
				tag.Flags |= FLClosed
			}
			name := in[a.nameStart:p]
			if len(name) == 0 {
				hc.Flags |= FlagBadElements
				tag.ID = -1
				tag.Flags |= FLBroken
				a.state = attrIgnoreBadTag
				break
			}
			// copy for in-place entity decoding and lowercasing
			nb := pool.Copy(name)
			nb = nb[:DecodeEntitiesInplace(nb)]
			asciiLowerInplace(nb)
			tag.Name = nb
			if td := tagDefByName(nb); td == nil {
				hc.Flags |= FlagUnknownElements
				tag.ID = -1
			} else {
				tag.ID = td.id
				tag.Flags = td.flags | (tag.Flags & FLClosed)
			}
			a.state = attrSpacesAfterName
		}

	case attrParseAttrName:
		if a.savedP < 0 {
			a.state = attrIgnoreBadTag
			break
		}
		nameEnd := p
		switch {
		case t == '=':
			a.state = attrParseEqual
		case t == '"':
			// quote with no equal sign: broken but recoverable
			a.state = attrParseStartDquote
			nameEnd = a.backtrackName(in, p)
		case isSpace(t):
			a.state = attrSpacesBeforeEq
		case t == '/':
			tag.Flags |= FLClosed
		case !isGraph(t):
			a.state = attrParseValue
			nameEnd = a.backtrackName(in, p)
		default:
			return
		}
		a.comp, a.hasComp = findComponentName(pool, in[a.savedP:nameEnd])
		if !a.hasComp {
			// unknown attributes are parsed but discarded
			a.savedP = -1
		} else if a.state == attrParseValue {
			a.savedP = p + 1
		}

	case attrSpacesAfterName:
		if !isSpace(t) {
			a.savedP = p
			if t == '/' {
				tag.Flags |= FLClosed
			} else if t != '>' {
				a.state = attrParseAttrName
			}
		}

	case attrSpacesBeforeEq:
		if t == '=' {
			a.state = attrParseEqual
		} else if !isSpace(t) {
			switch {
			case t == '>':
				// attribute name followed by the end of the tag: accepted
				// silently as an empty-valued attribute
			case t == '"' || t == '\'':
				// quote right after a name, the '=' went missing
				hc.Flags |= FlagBadElements
				tag.Flags |= FLBroken
				a.state = attrIgnoreBadTag
			default:
				a.state = attrParseAttrName
				a.savedP = p
			}
		}

	case attrSpacesAfterEq:
		if t == '"' {
			a.state = attrParseStartDquote
		} else if t == '\'' {
			a.state = attrParseStartSquote
		} else if !isSpace(t) {
			if a.savedP >= 0 {
				a.savedP = p
			}
			a.state = attrParseValue
		}

	case attrParseEqual:
		if isSpace(t) {
			a.state = attrSpacesAfterEq
		} else if t == '"' {
			a.state = attrParseStartDquote
		} else if t == '\'' {
			a.state = attrParseStartSquote
		} else {
			if a.savedP >= 0 {
				a.savedP = p
			}
			a.state = attrParseValue
		}

	case attrParseStartDquote:
		if t == '"' {
			// empty attribute value
			a.savedP = -1
			a.state = attrSpacesAfterParam
		} else {
			if a.savedP >= 0 {
				a.savedP = p
			}
			a.state = attrParseDqValue
		}

	case attrParseStartSquote:
		if t == '\'' {
			a.savedP = -1
			a.state = attrSpacesAfterParam
		} else {
			if a.savedP >= 0 {
				a.savedP = p
			}
			a.state = attrParseSqValue
		}

	case attrParseDqValue:
		if t == '"' {
			a.store(pool, tag, in, p)
			a.state = attrParseEndDquote
		}

	case attrParseSqValue:
		if t == '\'' {
			a.store(pool, tag, in, p)
			a.state = attrParseEndSquote
		}

	case attrParseValue:
		if t == '/' && next == '>' {
			tag.Flags |= FLClosed
			a.store(pool, tag, in, p)
		} else if isSpace(t) || t == '>' || t == '"' {
			a.store(pool, tag, in, p)
			a.state = attrSpacesAfterParam
		}

	case attrParseEndDquote, attrParseEndSquote:
		if isSpace(t) {
			a.state = attrSpacesAfterParam
		} else if t == '/' && next == '>' {
			tag.Flags |= FLClosed
		} else {
			// no space between attributes, proceed directly to the next name
			a.state = attrParseAttrName
			a.savedP = p
		}

	case attrSpacesAfterParam:
		if !isSpace(t) {
			if t == '/' && next == '>' {
				tag.Flags |= FLClosed
			}
			a.state = attrParseAttrName
			a.savedP = p
		}

	case attrIgnoreBadTag:
	}
}
