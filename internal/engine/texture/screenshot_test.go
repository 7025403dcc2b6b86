package texture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
}

func TestScreenshotFilename(t *testing.T) {
	s := NewScreenshotter("shots", "planetarium")
	s.now = fixedClock
	assert.Equal(t, filepath.Join("shots", "planetarium_2026-03-14_15-09-26.535.png"), s.Filename())
}

func TestScreenshotSaveFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screens")
	s := NewScreenshotter(dir, "frame")
	s.now = fixedClock

	// Bottom-up: the first row in memory is the bottom of the frame.
	pixels := []byte{
		0, 0, 255, 255, 0, 0, 255, 255, // blue bottom row
		255, 0, 0, 255, 255, 0, 0, 255, // red top row
	}
	path, err := s.Save(pixels, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, red, img.RGBAAt(0, 0))
	assert.Equal(t, blue, img.RGBAAt(1, 1))
}

func TestScreenshotSizeMismatch(t *testing.T) {
	s := NewScreenshotter(t.TempDir(), "frame")
	_, err := s.Save(make([]byte, 10), 2, 2)
	assert.ErrorIs(t, err, ErrDecode)

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
