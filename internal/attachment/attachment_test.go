package attachment

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func testPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestProcessFormats(t *testing.T) {
	for name, data := range map[string][]byte{"jpeg": testJPEG(100, 80), "png": testPNG(100, 80)} {
		t.Run(name, func(t *testing.T) {
			p, err := Process(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if p.MIME != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", p.MIME)
			}
			if p.Ref != Ref(p.Data) {
				t.Errorf("ref %s does not match stored bytes", p.Ref)
			}
			if !ValidRef(p.Ref) {
				t.Errorf("expected valid ref, got %s", p.Ref)
			}
			if w, h := decodedSize(t, p.Data); w != 100 || h != 80 {
				t.Errorf("small image should not be resized: got %dx%d", w, h)
			}
		})
	}
}

func TestProcessDownscale(t *testing.T) {
	p, err := Process(bytes.NewReader(testJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if w, h := decodedSize(t, p.Data); w != MaxDimension || h != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, w, h)
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	data := testPNG(64, 64)
	a, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	b, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if a.Ref != b.Ref {
		t.Errorf("expected equal refs, got %s and %s", a.Ref, b.Ref)
	}
}

func TestProcessRejects(t *testing.T) {
	tests := map[string][]byte{
		"text":  []byte("not an image"),
		"gif":   []byte("GIF89a..."),
		"empty": nil,
	}
	for name, data := range tests {
		if _, err := Process(bytes.NewReader(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestProcessTooLarge(t *testing.T) {
	data := append(testJPEG(8, 8), make([]byte, MaxUploadSize)...)
	if _, err := Process(bytes.NewReader(data)); err == nil {
		t.Error("expected error for oversized upload")
	}
}

func TestValidRef(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{Ref([]byte("hello")), true},
		{"blake3:" + strings.Repeat("0", 64), true},
		{"blake3:" + strings.Repeat("z", 64), false},
		{"blake3:abc", false},
		{"sha256:" + strings.Repeat("0", 64), false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidRef(tt.ref); got != tt.want {
			t.Errorf("ValidRef(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
