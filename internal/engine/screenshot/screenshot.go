// Package screenshot writes rendered frames to timestamped PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture saves frames into a directory.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
	last      string
	seq       int
}

// New creates a capture writing <prefix>_<timestamp>.png files into dir.
func New(dir, prefix string) *Capture {
	return &Capture{
		outputDir: dir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SaveGL writes bottom-up RGBA rows, as read back from GL, flipping them
// upright. It returns the file path.
func (c *Capture) SaveGL(pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return c.Save(img)
}

// Save writes img and returns the file path.
func (c *Capture) Save(img image.Image) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// Filename returns the next file path. Captures within the same second get
// a numeric suffix.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s", c.prefix, c.now().Format("2006-01-02_15-04-05"))
	if name == c.last {
		c.seq++
	} else {
		c.last = name
		c.seq = 0
	}
	if c.seq > 0 {
		name = fmt.Sprintf("%s_%d", name, c.seq)
	}
	return filepath.Join(c.outputDir, name+".png")
}
