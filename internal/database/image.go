package database

import (
	"bytes"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
)

// pngSignature is the 8-byte magic every PNG container starts with.
var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// normalizePNG returns raw unchanged when it already carries the PNG
// signature. Anything else is decoded with the registered image codecs
// (JPEG, GIF, BMP) and re-encoded as PNG. Bytes no codec understands come
// back untouched; normalization never fails a read.
func normalizePNG(raw []byte) []byte {
	if bytes.HasPrefix(raw, pngSignature) {
		return raw
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return raw
	}
	return buf.Bytes()
}
