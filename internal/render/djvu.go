package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chessbot/pkg/logx"
)

// DJVU rasterizes DJVU sources by converting them to a temporary PDF
// with the ddjvu tool (djvulibre) and delegating to the MuPDF renderer.
type DJVU struct {
	pdf Fitz
	log logx.Logger
}

func NewDJVU(log logx.Logger) DJVU {
	if log.IsZero() {
		log = logx.Nop()
	}
	return DJVU{pdf: NewFitz(log), log: log}
}

// CheckTool reports whether ddjvu is available on PATH.
func (d DJVU) CheckTool() error {
	if _, err := exec.LookPath("ddjvu"); err != nil {
		return fmt.Errorf("ddjvu not found (install djvulibre): %w", err)
	}
	return nil
}

func (d DJVU) Render(ctx context.Context, src, outDir string, dpi int) (int, error) {
	if err := d.CheckTool(); err != nil {
		return 0, err
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	tmp := filepath.Join(os.TempDir(), base+".djvu-render.pdf")
	defer os.Remove(tmp)

	cmd := exec.CommandContext(ctx, "ddjvu", "-format=pdf", src, tmp)
	if out, err := cmd.CombinedOutput(); err != nil {
		return 0, fmt.Errorf("ddjvu convert: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	d.log.Debug("djvu converted to pdf", logx.String("src", src), logx.String("pdf", tmp))

	return d.pdf.Render(ctx, tmp, outDir, dpi)
}
