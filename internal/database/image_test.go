package database

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func bmpBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("bmp.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizePNGPassThrough(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	original := buf.Bytes()

	got := normalizePNG(original)
	if !bytes.Equal(got, original) {
		t.Error("PNG input was rewritten, want byte-identical pass-through")
	}
}

func TestNormalizePNGConvertsBMP(t *testing.T) {
	raw := bmpBytes(t, 5, 7)

	got := normalizePNG(raw)
	if !bytes.HasPrefix(got, pngSignature) {
		t.Fatal("converted output does not start with the PNG signature")
	}

	decoded, err := png.Decode(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("png.Decode() of converted output error: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 5 || bounds.Dy() != 7 {
		t.Errorf("converted dimensions = %dx%d, want 5x7", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizePNGUndecodable(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "garbage", raw: []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x02, 0x03}},
		{name: "empty", raw: []byte{}},
		{name: "truncated header", raw: []byte{0x89, 0x50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePNG(tt.raw)
			if !bytes.Equal(got, tt.raw) {
				t.Error("undecodable input was altered, want byte-identical pass-through")
			}
		})
	}
}
