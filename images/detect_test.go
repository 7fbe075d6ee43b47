package images

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"
)

func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a})

	var chunk bytes.Buffer
	chunk.WriteString("IHDR")
	binary.Write(&chunk, binary.BigEndian, w)
	binary.Write(&chunk, binary.BigEndian, h)
	chunk.Write([]byte{8, 2, 0, 0, 0}) // depth, truecolor, deflate, none, no interlace

	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk.Bytes())
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk.Bytes()))
	return buf.Bytes()
}

func gifHeader(w, h uint16) []byte {
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	binary.Write(&buf, binary.LittleEndian, w)
	binary.Write(&buf, binary.LittleEndian, h)
	buf.Write([]byte{0, 0, 0}) // no color table
	return buf.Bytes()
}

func TestDetectPNG(t *testing.T) {
	t.Parallel()
	meta, ok := Detect(pngHeader(12, 34))
	if !ok {
		t.Fatal("png header not detected")
	}
	if meta.Format != "png" || meta.Width != 12 || meta.Height != 34 {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestDetectGIF(t *testing.T) {
	t.Parallel()
	meta, ok := Detect(gifHeader(2, 3))
	if !ok {
		t.Fatal("gif header not detected")
	}
	if meta.Format != "gif" || meta.Width != 2 || meta.Height != 3 {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestDetectGarbage(t *testing.T) {
	t.Parallel()
	if _, ok := Detect([]byte("definitely not an image")); ok {
		t.Fatal("garbage detected as image")
	}
	if _, ok := Detect(nil); ok {
		t.Fatal("empty input detected as image")
	}
}

func TestDetectTruncatedPNG(t *testing.T) {
	t.Parallel()
	// bare signature without IHDR, as seen in tiny data: payloads
	sig := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	if _, ok := Detect(sig); ok {
		t.Fatal("truncated png should not be detected")
	}
}
