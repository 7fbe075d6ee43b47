package html

import (
	"bytes"

	"github.com/rs/zerolog/log"

	"github.com/smarsching/rspamd/css"
	"github.com/smarsching/rspamd/mempool"
	"github.com/smarsching/rspamd/urlx"
)

type parserState uint8

const (
	parseStart parserState = iota
	tagBegin
	sgmlTag
	xmlTag
	xmlTagEnd
	compoundTag
	commentTag
	commentContent
	sgmlContent
	tagContent
	tagEnd
	contentIgnore
	contentWrite
	contentStyle
	contentIgnoreSp
)

// ProcessPart runs the single left-to-right pass over one message part and
// returns the visible-text buffer. hc is filled in place; records hang off
// pool and live until the pool is reset.
func ProcessPart(pool *mempool.Pool, hc *Content, input []byte, opts Options) []byte {
	hc.tagsSeen = make([]uint64, (len(tagDefs)+63)/64)
	// white, fully opaque background unless the part says otherwise
	hc.BGColor = Color{R: 255, G: 255, B: 255, A: 255, Valid: true}

	dest := make([]byte, 0, len(input)/3*2)

	var (
		state                 = parseStart
		p, c                  int
		closing               bool
		needDecode, saveSpace bool
		obrace, ebrace        int
		curLevel              int32 = -1
		hrefOffset                  = -1
		curTag                *Tag
		contentTag            *Tag
		url                   *urlx.URL
		attrs                 attrParser
		styleStack            []*Block
	)
	attrs.reset()

	// flushText emits input[c:upto], decoding entities in place when the
	// run contained '&', and keeps the content span of the innermost open
	// tag current.
	flushText := func(upto int) {
		if upto <= c {
			return
		}
		if needDecode {
			old := len(dest)
			if contentTag != nil && contentTag.ContentLength == 0 {
				contentTag.ContentOffset = old
			}
			dest = append(dest, input[c:upto]...)
			nlen := DecodeEntitiesInplace(dest[old:])
			dest = dest[:old+nlen]
			if contentTag != nil {
				contentTag.ContentLength += nlen
			}
		} else {
			if contentTag != nil {
				if contentTag.ContentLength == 0 {
					contentTag.ContentOffset = len(dest)
				}
				contentTag.ContentLength += upto - c
			}
			dest = append(dest, input[c:upto]...)
		}
	}

	// appendNewline emits the synthetic \r\n after BR/HR/P/TR/DIV tokens,
	// never producing two consecutive newlines.
	appendNewline := func() {
		if len(dest) > 0 && dest[len(dest)-1] != '\n' {
			dest = append(dest, '\r', '\n')
			if contentTag != nil {
				if contentTag.ContentLength == 0 {
					// the span starts after the synthetic newline
					contentTag.ContentOffset = len(dest)
				} else {
					contentTag.ContentLength += 2
				}
			}
		}
		saveSpace = false
	}

	for p < len(input) {
		t := input[p]

		switch state {
		case parseStart:
			if t == '<' {
				state = tagBegin
			} else {
				// no opening tag, assume the part starts with content
				hc.Flags |= FlagBadStart
				state = contentWrite
			}

		case tagBegin:
			switch t {
			case '<':
				p++
				closing = false
			case '!':
				state = sgmlTag
				p++
			case '?':
				state = xmlTag
				hc.Flags |= FlagXML
				p++
			case '/':
				closing = true
				p++
			case '>':
				// empty tag
				hc.Flags |= FlagBadElements
				state = tagEnd
				continue
			default:
				state = tagContent
				attrs.reset()
				curTag = &Tag{ID: -1}
			}

		case sgmlTag:
			switch t {
			case '[':
				state = compoundTag
				obrace = 1
				ebrace = 0
				p++
			case '-':
				state = commentTag
				p++
			default:
				state = sgmlContent
			}

		case xmlTag:
			if t == '?' {
				state = xmlTagEnd
			} else if t == '>' {
				// misformed xml tag
				hc.Flags |= FlagBadElements
				state = tagEnd
				continue
			}
			p++

		case xmlTagEnd:
			if t == '>' {
				state = tagEnd
				continue
			}
			hc.Flags |= FlagBadElements
			p++

		case compoundTag:
			if t == '[' {
				obrace++
			} else if t == ']' {
				ebrace++
			} else if t == '>' && obrace == ebrace {
				state = tagEnd
				continue
			}
			p++

		case commentTag:
			if t != '-' {
				hc.Flags |= FlagBadElements
				state = tagEnd
			} else {
				p++
				ebrace = 0
				// <!--> and <!---> comments are invalid per the html5 syntax
				// rules for comment text
				if p < len(input) && input[p] == '-' && p+1 < len(input) && input[p+1] == '>' {
					hc.Flags |= FlagBadElements
					p++
					state = tagEnd
				} else if p < len(input) && input[p] == '>' {
					hc.Flags |= FlagBadElements
					state = tagEnd
				} else {
					state = commentContent
				}
			}

		case commentContent:
			if t == '-' {
				ebrace++
			} else if t == '>' && ebrace >= 2 {
				state = tagEnd
				continue
			} else {
				ebrace = 0
			}
			p++

		case contentIgnore:
			if t != '<' {
				p++
			} else {
				state = tagBegin
			}

		case contentWrite:
			if t != '<' {
				if t == '&' {
					needDecode = true
				} else if isSpace(t) {
					saveSpace = true
					flushText(p)
					c = p
					state = contentIgnoreSp
				} else if saveSpace {
					// collapse the pending whitespace run into one space
					if len(dest) > 0 && !isSpace(dest[len(dest)-1]) {
						dest = append(dest, ' ')
						if contentTag != nil {
							if contentTag.ContentLength == 0 {
								contentTag.ContentOffset = len(dest)
							} else {
								contentTag.ContentLength++
							}
						}
					}
					saveSpace = false
				}
			} else {
				flushText(p)
				contentTag = nil
				state = tagBegin
				continue
			}
			p++

		case contentStyle:
			// search for the closing </s...; everything before it belongs
			// to the style sheet
			idx := bytes.Index(input[p:], []byte("</"))
			if idx == -1 || p+idx+2 >= len(input) || toLower(input[p+idx+2]) != 's' {
				state = contentIgnore
			} else {
				if opts.AllowCSS {
					ss, err := css.ParseStyle(hc.Stylesheet, input[p:p+idx])
					if err != nil {
						log.Info().Err(err).Msg("html: cannot parse css")
					} else {
						hc.Stylesheet = ss
					}
				}
				p += idx
				state = tagBegin
			}

		case contentIgnoreSp:
			if !isSpace(t) {
				c = p
				state = contentWrite
				continue
			}
			p++

		case sgmlContent:
			if t == '>' {
				// doctypes and friends carry nothing we score
				state = tagEnd
				curTag = nil
				continue
			}
			p++

		case tagContent:
			parseTagContent(pool, hc, curTag, input, p, &attrs)
			if t == '>' {
				if closing {
					curTag.Flags |= FLClosing
					if curTag.Flags&FLClosed != 0 {
						// bad mix of closed and closing
						hc.Flags |= FlagBadElements
					}
					closing = false
				}
				state = tagEnd
				continue
			}
			p++

		case tagEnd:
			attrs.reset()

			if curTag == nil {
				state = contentWrite
				p++
				c = p
				continue
			}

			balanced := true
			if hc.processTag(curTag, &curLevel, &balanced) {
				state = contentWrite
				needDecode = false
			} else if curTag.ID == tagStyle {
				state = contentStyle
			} else {
				state = contentIgnore
			}

			if curTag.ID != -1 && curTag.ID < len(tagDefs) {
				if curTag.Flags&CMUnique != 0 && curTag.Flags&FLClosing == 0 &&
					hc.tagSeenID(curTag.ID) {
					hc.Flags |= FlagDuplicateElements
				}
				hc.setTagSeen(curTag.ID)
			}

			if curTag.Flags&(FLClosed|FLClosing) == 0 {
				contentTag = curTag
			}

			if curTag.ID == tagBR || curTag.ID == tagHR {
				appendNewline()
			}
			if curTag.ID == tagP || curTag.ID == tagTR || curTag.ID == tagDIV {
				appendNewline()
			}

			if curTag.Flags&FLHref != 0 {
				prevHrefOffset := hrefOffset
				if curTag.Flags&FLClosing == 0 {
					url = hc.processURLTag(pool, curTag)
					if url != nil {
						if opts.URLSet != nil {
							if existing := opts.URLSet.AddOrReturn(url); existing == url {
								hc.processHTMLURL(url, opts)
							} else {
								url = existing
								url.Count++
							}
						}
						hrefOffset = len(dest)
					}
				}

				if curTag.ID == tagA {
					if !balanced && curLevel > 0 {
						// an <a> opened while the previous one never closed:
						// check the previous anchor's visible span now
						if prev := hc.tree.prevSibling(curLevel); prev > 0 {
							prevTag := hc.tree.nodes[prev].tag
							if prevTag != nil && prevTag.ID == tagA &&
								prevTag.Flags&FLClosing == 0 {
								if purl, ok := prevTag.Extra.(*urlx.URL); ok && purl != nil {
									hc.checkDisplayedURL(dest, prevHrefOffset, purl, opts)
								}
							}
						}
					}
					if curTag.Flags&FLClosing != 0 {
						if url != nil && hrefOffset >= 0 && len(dest) > hrefOffset {
							hc.checkDisplayedURL(dest, hrefOffset, url, opts)
						}
						hrefOffset = -1
						url = nil
					}
				}
			} else if curTag.ID == tagBase && curTag.Flags&FLClosing == 0 {
				// base is only allowed within head, but mail HTML puts it
				// anywhere; the first valid one wins
				if hc.BaseURL == nil {
					if u := hc.processURLTag(pool, curTag); u != nil {
						log.Debug().Str("base", u.Raw).Msg("html: got valid base tag")
						hc.BaseURL = u
						curTag.Extra = u
						curTag.Flags |= FLHref
					} else {
						log.Debug().Msg("html: got invalid base tag")
					}
				}
			}

			if curTag.ID == tagImg && curTag.Flags&FLClosing == 0 {
				dest = hc.processImgTag(pool, curTag, opts, dest)
			} else if curTag.ID == tagLink && curTag.Flags&FLClosing == 0 {
				hc.processLinkTag(pool, curTag, opts)
			} else if curTag.Flags&FLBlock != 0 {
				if curTag.Flags&FLClosing != 0 {
					if len(styleStack) > 0 {
						styleStack = styleStack[:len(styleStack)-1]
					}
				} else {
					bl := hc.processBlockTag(curTag)
					styleStack = hc.propagateStyle(curTag, bl, styleStack)
					if bl.FontSize < 3 || bl.FontColor.A < 10 {
						bl.Visible = false
						log.Debug().Uint8("font_size", bl.FontSize).
							Uint8("alpha", bl.FontColor.A).
							Msg("html: tag is not visible")
					}
					if !bl.Visible {
						state = contentIgnore
					}
				}
			}

			p++
			c = p
			curTag = nil
		}
	}

	// trailing content after the last tag
	if state == contentWrite {
		flushText(len(input))
	}

	hc.propagateLengths()
	return dest
}
