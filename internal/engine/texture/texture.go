// Package texture decodes images from disk and uploads them as GPU textures.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/planetarium/internal/engine/gpu"
)

var (
	// ErrDecode is returned when image data of a known format is corrupt.
	ErrDecode = errors.New("texture decode failed")
	// ErrUnsupported is returned for an image format no decoder recognises.
	ErrUnsupported = errors.New("unsupported texture format")
)

// Load reads and decodes an image file. PNG, JPEG, BMP and TGA are supported.
func Load(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, filepath.Ext(path))
}

// Decode decodes data into top-down RGBA. ext selects TGA, which has no magic
// number; other formats are detected from their header.
func Decode(data []byte, ext string) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(ext, ".tga") {
		img, err = DecodeTGA(data)
	} else {
		var format string
		img, format, err = image.Decode(bytes.NewReader(data))
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to an *image.RGBA with its origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FlipVertical returns a copy of img with rows reversed. GL samples row 0 at
// v = 0, images store it at the top.
func FlipVertical(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		dst := out.Pix[(b.Dy()-1-y)*out.Stride:]
		copy(dst, src)
	}
	return out
}

// Upload creates a texture on dev from img and returns its handle.
func Upload(dev gpu.Device, img *image.RGBA) uint32 {
	flipped := FlipVertical(img)
	b := flipped.Bounds()
	return dev.CreateTexture2D(int32(b.Dx()), int32(b.Dy()), flipped.Pix)
}
