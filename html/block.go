package html

import (
	"sort"

	"github.com/rs/zerolog/log"
	nethtml "golang.org/x/net/html"
)

// fontSizeUnset is the sentinel for blocks that never declared a size;
// real sizes are clamped to 32 so the sentinel cannot collide.
const fontSizeUnset uint8 = 0xff

// Block carries the visual style computed for one block-level tag.
type Block struct {
	Tag   *Tag
	Style []byte
	Class []byte

	FontColor       Color
	BackgroundColor Color
	FontSize        uint8
	Visible         bool
}

// processBlockTag builds the style block for an opening block-level tag:
// matching stylesheet rules first, then the color/bgcolor/class attributes,
// then the inline style, then a legacy size= attribute. The inline style
// overrides the stylesheet and color/bgcolor; size= is applied last and
// overrides a font-size from the inline style.
func (hc *Content) processBlockTag(tag *Tag) *Block {
	bl := &Block{Tag: tag, Visible: true, FontSize: fontSizeUnset}
	bl.FontColor.A = 255

	hc.applyStylesheet(bl, tag)

	if comp := tag.Component(ComponentColor); len(comp) > 0 {
		parseColor(comp, &bl.FontColor)
		log.Debug().Str("tag", string(tag.Name)).
			Uint32("color", bl.FontColor.RGBA()).Msg("html: got color")
	}
	if comp := tag.Component(ComponentBgcolor); len(comp) > 0 {
		parseColor(comp, &bl.BackgroundColor)
		log.Debug().Str("tag", string(tag.Name)).
			Uint32("bgcolor", bl.BackgroundColor.RGBA()).Msg("html: got bgcolor")
		if tag.ID == tagBody {
			// global background for the whole part
			hc.BGColor = bl.BackgroundColor
		}
	}
	if comp := tag.Component(ComponentClass); len(comp) > 0 {
		bl.Class = comp
	}
	if comp := tag.Component(ComponentStyle); len(comp) > 0 {
		bl.Style = comp
		hc.processStyle(bl, comp)
	}
	if comp := tag.Component(ComponentSize); len(comp) > 0 {
		processFontSize(comp, &bl.FontSize, false)
	}

	hc.Blocks = append(hc.Blocks, bl)
	tag.Extra = bl
	return bl
}

// applyStylesheet seeds bl from <style> rules matching the tag by element
// name and class. Descendant combinators never match the shadow node; mail
// spam rarely needs them and the inline style still overrides everything.
func (hc *Content) applyStylesheet(bl *Block, tag *Tag) {
	if hc.Stylesheet.Empty() || tag.ID == -1 {
		return
	}
	n := &nethtml.Node{Type: nethtml.ElementNode, Data: string(tag.Name)}
	if cls := tag.Component(ComponentClass); len(cls) > 0 {
		n.Attr = append(n.Attr, nethtml.Attribute{Key: "class", Val: string(cls)})
	}
	props := hc.Stylesheet.ComputeStyle(n)
	if len(props) == 0 {
		return
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hc.applyStyleProperty(bl, []byte(k), []byte(props[k]))
	}
}

// propagateStyle inherits unset fields from the innermost open block, fills
// the remaining gaps with document defaults, and pushes the block onto the
// stack when it carries at least one explicitly set field it can pass down.
func (hc *Content) propagateStyle(tag *Tag, bl *Block, stack []*Block) []*Block {
	push := false

	if len(stack) > 0 {
		parent := stack[len(stack)-1]
		if !bl.BackgroundColor.Valid {
			if parent.BackgroundColor.Valid {
				bl.BackgroundColor = parent.BackgroundColor
			}
		} else {
			push = true
		}
		if !bl.FontColor.Valid {
			if parent.FontColor.Valid {
				bl.FontColor = parent.FontColor
			}
		} else {
			push = true
		}
		if bl.FontSize == fontSizeUnset {
			if parent.FontSize != fontSizeUnset {
				bl.FontSize = parent.FontSize
			}
		} else {
			push = true
		}
	}

	if !bl.FontColor.Valid {
		// black text as a last resort; opacity may already have been set
		bl.FontColor.R = 0
		bl.FontColor.G = 0
		bl.FontColor.B = 0
		bl.FontColor.Valid = true
	} else {
		push = true
	}
	if !bl.BackgroundColor.Valid {
		bl.BackgroundColor = hc.BGColor
	} else {
		push = true
	}
	if bl.FontSize == fontSizeUnset {
		bl.FontSize = 16
	} else {
		push = true
	}

	if push && tag.Flags&FLClosed == 0 {
		stack = append(stack, bl)
	}
	return stack
}
