// Package render turns source documents into per-page PNG files.
package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	"chessbot/pkg/logx"
)

// Fitz rasterizes documents supported by MuPDF (PDF, EPUB, XPS, CBZ).
type Fitz struct {
	log logx.Logger
}

func NewFitz(log logx.Logger) Fitz {
	if log.IsZero() {
		log = logx.Nop()
	}
	return Fitz{log: log}
}

// Render writes one PNG per page under outDir. Filenames are zero-padded
// (page_0001.png) so lexicographic sort equals page order.
func (f Fitz) Render(ctx context.Context, src, outDir string, dpi int) (int, error) {
	doc, err := fitz.New(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return i, fmt.Errorf("render page %d: %w", i+1, err)
		}
		path := filepath.Join(outDir, fmt.Sprintf("page_%04d.png", i+1))
		if err := writePNG(path, img); err != nil {
			return i, err
		}
		f.log.Debug("page rendered", logx.String("file", path))
	}
	return total, nil
}

func writePNG(path string, img image.Image) error {
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
