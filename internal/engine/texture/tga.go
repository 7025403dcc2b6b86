package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

const tgaHeaderSize = 18

// DecodeTGA decodes an uncompressed or RLE true-color TGA image with 24 or 32
// bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: tga header truncated", ErrDecode)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	switch {
	case colorMapType != 0:
		return nil, fmt.Errorf("%w: color-mapped tga", ErrUnsupported)
	case imageType != TGATypeUncompressed && imageType != TGATypeRLE:
		return nil, fmt.Errorf("%w: tga type %d", ErrUnsupported, imageType)
	case bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("%w: tga depth %d", ErrUnsupported, bpp)
	case width == 0 || height == 0:
		return nil, fmt.Errorf("%w: empty tga", ErrDecode)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: tga id field truncated", ErrDecode)
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		bytesPer:    bpp / 8,
		topToBottom: topToBottom,
	}
	var err error
	if imageType == TGATypeUncompressed {
		err = d.raw()
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

// tgaDecoder writes pixels in file order, flipping rows for bottom-up images.
type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	pixel       int
	bytesPer    int
	topToBottom bool
}

func (d *tgaDecoder) total() int {
	b := d.img.Bounds()
	return b.Dx() * b.Dy()
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() (color.RGBA, bool) {
	if d.pos+d.bytesPer > len(d.src) {
		return color.RGBA{}, false
	}
	p := d.src[d.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bytesPer == 4 {
		c.A = p[3]
	}
	d.pos += d.bytesPer
	return c, true
}

func (d *tgaDecoder) put(c color.RGBA) {
	w := d.img.Bounds().Dx()
	x, y := d.pixel%w, d.pixel/w
	if !d.topToBottom {
		y = d.img.Bounds().Dy() - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.pixel++
}

func (d *tgaDecoder) raw() error {
	for d.pixel < d.total() {
		c, ok := d.next()
		if !ok {
			return fmt.Errorf("%w: tga pixel data truncated", ErrDecode)
		}
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	for d.pixel < d.total() {
		if d.pos >= len(d.src) {
			return fmt.Errorf("%w: tga rle data truncated", ErrDecode)
		}
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7f) + 1

		if packet&0x80 != 0 {
			c, ok := d.next()
			if !ok {
				return fmt.Errorf("%w: tga rle data truncated", ErrDecode)
			}
			for i := 0; i < count && d.pixel < d.total(); i++ {
				d.put(c)
			}
			continue
		}
		for i := 0; i < count && d.pixel < d.total(); i++ {
			c, ok := d.next()
			if !ok {
				return fmt.Errorf("%w: tga rle data truncated", ErrDecode)
			}
			d.put(c)
		}
	}
	return nil
}
