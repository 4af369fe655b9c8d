// Package attachment turns uploaded images into stored attachments
// addressed by a content reference.
package attachment

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/image/draw"
)

// MaxUploadSize is the largest accepted upload in bytes.
const MaxUploadSize = 5 << 20

// MaxDimension is the maximum width or height of a stored image.
const MaxDimension = 1024

// JPEGQuality is the compression quality for stored images.
const JPEGQuality = 85

// RefPrefix starts every attachment reference.
const RefPrefix = "blake3:"

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Processed is an image ready to be stored.
type Processed struct {
	Ref  string
	MIME string
	Data []byte
}

// Process reads an uploaded image, checks its format from the bytes
// themselves, shrinks it to fit MaxDimension and re-encodes it as JPEG.
// The reference is derived from the stored bytes, so uploading the same
// image twice yields the same reference.
func Process(r io.Reader) (*Processed, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUploadSize)
	}

	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxDimension), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	out := buf.Bytes()
	return &Processed{Ref: Ref(out), MIME: "image/jpeg", Data: out}, nil
}

// Ref returns the content reference of data.
func Ref(data []byte) string {
	sum := blake3.Sum256(data)
	return RefPrefix + hex.EncodeToString(sum[:])
}

// ValidRef reports whether ref has the shape of a content reference.
func ValidRef(ref string) bool {
	digest, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok || len(digest) != 64 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

// fit scales img down with Catmull-Rom so neither side exceeds maxDim,
// keeping the aspect ratio. Smaller images are returned as is.
func fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
