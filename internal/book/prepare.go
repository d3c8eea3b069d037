package book

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"chessbot/pkg/logx"
)

// Rasterizer converts a source document into one image file per page
// under outDir, named so that lexicographic sort equals page order.
// It returns the number of pages written.
type Rasterizer interface {
	Render(ctx context.Context, src, outDir string, dpi int) (int, error)
}

// Prepare makes a document publishable: download the source if the local
// file is absent, then rasterize it unless the page directory is already
// populated. Safe to call on every startup; completed work is skipped.
func Prepare(ctx context.Context, client *http.Client, doc Document, r Rasterizer, dpi int, log logx.Logger) error {
	if err := os.MkdirAll(doc.PagesDir, 0o755); err != nil {
		return err
	}

	if _, err := os.Stat(doc.SourceFile); os.IsNotExist(err) {
		if err := download(ctx, client, doc.SourceURL, doc.SourceFile); err != nil {
			return fmt.Errorf("download %s: %w", doc.Name, err)
		}
		log.Info("source downloaded", logx.String("doc", doc.Name), logx.String("file", doc.SourceFile))
	}

	pages, err := ListPages(doc.PagesDir)
	if err != nil {
		return err
	}
	if len(pages) > 0 {
		log.Debug("pages already rendered", logx.String("doc", doc.Name), logx.Int("pages", len(pages)))
		return nil
	}

	n, err := r.Render(ctx, doc.SourceFile, doc.PagesDir, dpi)
	if err != nil {
		return fmt.Errorf("render %s: %w", doc.Name, err)
	}
	log.Info("pages rendered", logx.String("doc", doc.Name), logx.Int("pages", n))
	return nil
}

func download(ctx context.Context, client *http.Client, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}

	// Write to a temp name and rename, so an interrupted download never
	// passes for a complete source file.
	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
