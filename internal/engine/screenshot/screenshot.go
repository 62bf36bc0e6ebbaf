// Package screenshot saves the current framebuffer as a PNG.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Capture reads the back buffer and writes it to dir as
// <prefix>_<timestamp>.png. It returns the file name.
func Capture(dir, prefix string, width, height int) (string, error) {
	pixels := make([]byte, width*height*4)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	img, err := FromPixels(pixels, width, height)
	if err != nil {
		return "", err
	}
	return Save(dir, prefix, time.Now(), img)
}

// FromPixels builds an image from bottom-up RGBA rows as GL returns them.
func FromPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := range height {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

// Filename returns the path a capture taken at t is written to.
func Filename(dir, prefix string, t time.Time) string {
	name := fmt.Sprintf("%s_%s.png", prefix, t.Format("2006-01-02_15-04-05"))
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// Save encodes img into dir, creating it when missing.
func Save(dir, prefix string, t time.Time, img image.Image) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	name := Filename(dir, prefix, t)
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return "", err
	}
	return name, f.Close()
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
