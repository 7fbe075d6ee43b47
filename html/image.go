package html

import (
	"bytes"
	"encoding/base64"

	"github.com/rs/zerolog/log"

	"github.com/smarsching/rspamd/images"
	"github.com/smarsching/rspamd/mempool"
	"github.com/smarsching/rspamd/urlx"
)

// ImageFlags classifies how an image's payload is delivered.
type ImageFlags uint32

const (
	ImageEmbedded ImageFlags = 1 << iota
	ImageExternal
	ImageData
)

// Image is the semantic payload of an img (or link rel=icon) tag.
type Image struct {
	Tag *Tag
	Src []byte
	URL *urlx.URL

	Width  int
	Height int
	Flags  ImageFlags

	// Embedded holds the detector result for data: payloads.
	Embedded *images.Meta
}

// processImgTag interprets an img tag: cid:/data: sources mark embedded
// images, external sources join the URL set, and dimensions come from the
// width/height attributes, the inline style, or the decoded payload, in
// that order. Alt text is appended to dest with space padding.
func (hc *Content) processImgTag(pool *mempool.Pool, tag *Tag, opts Options, dest []byte) []byte {
	img := &Image{Tag: tag}
	tag.Flags |= FLImage

	seenWidth, seenHeight := false, false

	if src := tag.Component(ComponentHref); len(src) > 0 {
		img.Src = src
		switch {
		case len(src) > 4 && bytes.HasPrefix(src, []byte("cid:")):
			img.Flags |= ImageEmbedded
		case len(src) > 5 && bytes.HasPrefix(src, []byte("data:")):
			img.Flags |= ImageEmbedded | ImageData
			hc.processDataImage(img, src)
			hc.Flags |= FlagHasDataURLs
		default:
			img.Flags |= ImageExternal
			if u := processURL(pool, src); u != nil {
				img.URL = u
				u.Flags |= urlx.FlagImage
				if opts.URLSet != nil {
					existing := opts.URLSet.AddOrReturn(u)
					if existing != u {
						// same URL from another part or tag: keep the image
						// flag on the stored copy
						existing.Flags |= u.Flags
						existing.Count++
					} else if opts.PartURLs != nil {
						*opts.PartURLs = append(*opts.PartURLs, u)
					}
				}
			}
		}
	}

	if comp := tag.Component(ComponentHeight); len(comp) > 0 {
		if v, ok := strtoulPrefix(comp); ok {
			img.Height = int(v)
			seenHeight = true
		}
	}
	if comp := tag.Component(ComponentWidth); len(comp) > 0 {
		if v, ok := strtoulPrefix(comp); ok {
			img.Width = int(v)
			seenWidth = true
		}
	}
	if style := tag.Component(ComponentStyle); len(style) > 0 {
		if !seenHeight {
			if v, ok := scanStyleDimension(style, "height"); ok {
				img.Height = v
				seenHeight = true
			}
		}
		if !seenWidth {
			if v, ok := scanStyleDimension(style, "width"); ok {
				img.Width = v
				seenWidth = true
			}
		}
	}
	if alt := tag.Component(ComponentAlt); len(alt) > 0 && dest != nil {
		dest = appendPadded(dest, alt)
	}

	if img.Embedded != nil {
		if !seenHeight {
			img.Height = img.Embedded.Height
		}
		if !seenWidth {
			img.Width = img.Embedded.Width
		}
	}

	hc.Images = append(hc.Images, img)
	tag.Extra = img
	return dest
}

// processDataImage parses a `data:image/xxx;base64,payload` source. Only
// base64 payloads are decoded; the media type is ignored. Decode or
// detection failures drop the embedded metadata but keep the tag.
func (hc *Content) processDataImage(img *Image, src []byte) {
	semi := bytes.IndexByte(src, ';')
	if semi == -1 {
		return
	}
	rest := src[semi+1:]
	if !bytes.HasPrefix(rest, []byte("base64,")) {
		return
	}
	payload := rest[len("base64,"):]

	decoded, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(string(payload))
	}
	if err != nil {
		log.Debug().Err(err).Msg("html: cannot decode data url payload")
		return
	}
	if meta, ok := images.Detect(decoded); ok {
		log.Debug().Str("format", meta.Format).
			Int("width", meta.Width).Int("height", meta.Height).
			Msg("html: detected image in data url")
		img.Embedded = meta
	}
}

// processLinkTag reuses the image handler for favicon links.
func (hc *Content) processLinkTag(pool *mempool.Pool, tag *Tag, opts Options) {
	rel := tag.Component(ComponentRel)
	if asciiCaseEqual(rel, "icon") {
		hc.processImgTag(pool, tag, opts, nil)
	}
}

// scanStyleDimension hunts for a `height`/`width` token inside an inline
// style and takes the first numeric run after it.
func scanStyleDimension(style []byte, key string) (int, bool) {
	pos := indexCaseless(style, key)
	if pos == -1 {
		return 0, false
	}
	p := pos + len(key)
	for p < len(style) {
		b := style[p]
		if isDigit(b) {
			v, _ := strtoulPrefix(style[p:])
			return int(v), true
		}
		if !isSpace(b) && b != '=' && b != ':' {
			break
		}
		p++
	}
	return 0, false
}

// appendPadded writes alt text surrounded by single spaces.
func appendPadded(dest, text []byte) []byte {
	if len(dest) > 0 && !isSpace(dest[len(dest)-1]) {
		dest = append(dest, ' ')
	}
	dest = append(dest, text...)
	if len(dest) > 0 && !isSpace(dest[len(dest)-1]) {
		dest = append(dest, ' ')
	}
	return dest
}
