package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/planetarium/internal/engine/gpu/gputest"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

// twoRows is 2x2 with a red top row and a blue bottom row.
func twoRows() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.SetRGBA(x, 0, red)
		img.SetRGBA(x, 1, blue)
	}
	return img
}

// tgaHeader builds an 18-byte header for a true-color image.
func tgaHeader(imageType byte, w, h int, bpp byte, topToBottom bool) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	if topToBottom {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, twoRows()))

	img, err := Decode(buf.Bytes(), ".png")
	require.NoError(t, err)
	assert.Equal(t, red, img.RGBAAt(0, 0))
	assert.Equal(t, blue, img.RGBAAt(1, 1))
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, twoRows()))

	// Extension is ignored for formats with a magic number.
	img, err := Decode(buf.Bytes(), ".dat")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, red, img.RGBAAt(1, 0))
	assert.Equal(t, blue, img.RGBAAt(0, 1))
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"), ".xyz")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// Bottom-up 2x2, 24 bpp: first row in the file is the bottom row.
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, false)
	data = append(data,
		255, 0, 0, 255, 0, 0, // blue blue (BGR)
		0, 0, 255, 0, 0, 255, // red red
	)

	img, err := Decode(data, ".TGA")
	require.NoError(t, err)
	assert.Equal(t, red, img.RGBAAt(0, 0))
	assert.Equal(t, blue, img.RGBAAt(1, 1))
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(TGATypeRLE, 3, 1, 32, true)
	data = append(data,
		0x81, 0, 0, 255, 128, // run of 2 red, alpha 128
		0x00, 255, 0, 0, 255, // 1 raw blue
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	rgba := ToRGBA(img)
	assert.Equal(t, color.RGBA{255, 0, 0, 128}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 128}, rgba.RGBAAt(1, 0))
	assert.Equal(t, blue, rgba.RGBAAt(2, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0, 2}, ErrDecode},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, false); h[1] = 1; return h }(), ErrUnsupported},
		{"grayscale", tgaHeader(3, 1, 1, 8, false), ErrUnsupported},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, false), ErrUnsupported},
		{"truncated pixels", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, false), 1, 2, 3), ErrDecode},
		{"truncated rle", append(tgaHeader(TGATypeRLE, 4, 1, 24, false), 0x83), ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestToRGBARebasesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, red)
	out := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 1), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(0, 0))
}

func TestFlipVertical(t *testing.T) {
	flipped := FlipVertical(twoRows())
	assert.Equal(t, blue, flipped.RGBAAt(0, 0))
	assert.Equal(t, red, flipped.RGBAAt(1, 1))
}

func TestLoadAndUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planet.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, twoRows()))
	require.NoError(t, f.Close())

	img, err := Load(path)
	require.NoError(t, err)

	dev := gputest.NewDevice()
	tex := Upload(dev, img)
	assert.NotZero(t, tex)
	assert.Equal(t, [2]int32{2, 2}, dev.Textures[tex])
	assert.Empty(t, dev.Errors)

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
