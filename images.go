package inkpress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// DefaultMaxImageWidth is the widest an optimized image gets.
	DefaultMaxImageWidth = 800
	jpegQuality          = 80
)

// imageExts are the source formats the optimizer accepts.
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// OptimizedImage describes one processed file.
type OptimizedImage struct {
	Source  string
	Output  string
	Width   int
	Height  int
	Size    int
	Skipped bool // output was already newer than the source
}

// ProcessImage decodes an image from src, downscales it to maxWidth if it
// is wider, and re-encodes it as JPEG. Aspect ratio is preserved.
func ProcessImage(src io.Reader, maxWidth int) (w, h int, data []byte, err error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxImageWidth
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h = bounds.Dx(), bounds.Dy()
	if w > maxWidth {
		newH := h * maxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return 0, 0, nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return w, h, buf.Bytes(), nil
}

// OptimizeDir walks srcDir, optimizes every image into dstDir (mirroring
// the directory layout, outputs always .jpg), and returns a report per
// file. Outputs newer than their source are skipped.
func OptimizeDir(srcDir, dstDir string, maxWidth int) ([]OptimizedImage, error) {
	var report []OptimizedImage
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !imageExts[ext] {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dstDir, strings.TrimSuffix(rel, ext)+".jpg")

		if upToDate(path, out) {
			report = append(report, OptimizedImage{Source: path, Output: out, Skipped: true})
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		w, h, data, err := ProcessImage(f, maxWidth)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		report = append(report, OptimizedImage{Source: path, Output: out, Width: w, Height: h, Size: len(data)})
		return nil
	})
	return report, err
}

// upToDate reports whether out exists and is at least as new as src.
func upToDate(src, out string) bool {
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	oi, err := os.Stat(out)
	if err != nil {
		return false
	}
	return !oi.ModTime().Before(si.ModTime())
}
