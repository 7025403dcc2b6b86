package texture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshotter writes framebuffer captures as timestamped PNG files.
type Screenshotter struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewScreenshotter saves into dir, which is created on first use. An empty
// dir means the working directory.
func NewScreenshotter(dir, prefix string) *Screenshotter {
	return &Screenshotter{dir: dir, prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture would be written to.
func (s *Screenshotter) Filename() string {
	name := fmt.Sprintf("%s_%s.png", s.prefix, s.now().Format("2006-01-02_15-04-05.000"))
	return filepath.Join(s.dir, name)
}

// Save writes bottom-up RGBA pixels, as read back from the framebuffer, to a
// new PNG file and returns its path.
func (s *Screenshotter) Save(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("%w: screenshot needs %d bytes, got %d", ErrDecode, width*height*4, len(pixels))
	}
	img := &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return s.SaveImage(FlipVertical(img))
}

// SaveImage writes img to a new PNG file and returns its path.
func (s *Screenshotter) SaveImage(img image.Image) (string, error) {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return "", fmt.Errorf("creating screenshot dir: %w", err)
		}
	}

	path := s.Filename()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding screenshot: %w", err)
	}
	return path, f.Close()
}
