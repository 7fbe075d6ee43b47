// Package images detects the format and dimensions of decoded image
// payloads. It is the collaborator the HTML processor hands base64-decoded
// data: URLs to; it never performs a full pixel decode.
package images

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Meta describes a recognized image.
type Meta struct {
	Format string
	Width  int
	Height int
}

// Detect inspects data and returns its format and dimensions. It reads only
// as much of the header as the format requires.
func Detect(data []byte) (*Meta, bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	return &Meta{Format: format, Width: cfg.Width, Height: cfg.Height}, true
}
