package app

import (
	"strings"
	"testing"

	"chessbot/internal/book"
	"chessbot/internal/config"
	"chessbot/pkg/logx"
)

func TestNewRejectsInvalidPublishTime(t *testing.T) {
	t.Parallel()

	for _, at := range []string{"", "25:00", "10:60", "ten"} {
		cfg := config.Config{PublishAt: at}
		if _, err := New(cfg, logx.Nop()); err == nil {
			t.Errorf("New with PublishAt=%q: expected error", at)
		}
	}
}

func TestDocumentsDerivedFromConfiguredSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pdf     string
		djvu    string
		want    []string
		formats []book.Format
	}{
		{"both", "https://example.org/b.pdf", "https://example.org/b.djvu",
			[]string{"pdf", "djvu"}, []book.Format{book.FormatPDF, book.FormatDJVU}},
		{"pdf only", "https://example.org/b.pdf", "",
			[]string{"pdf"}, []book.Format{book.FormatPDF}},
		{"djvu only", "", "https://example.org/b.djvu",
			[]string{"djvu"}, []book.Format{book.FormatDJVU}},
		{"none", "", "", nil, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			docs := documents(config.Config{PDFURL: tt.pdf, DJVUURL: tt.djvu, DataDir: "/data"})
			if len(docs) != len(tt.want) {
				t.Fatalf("got %d documents, want %d", len(docs), len(tt.want))
			}
			for i, d := range docs {
				if d.Name != tt.want[i] {
					t.Errorf("doc[%d].Name = %q, want %q", i, d.Name, tt.want[i])
				}
				if d.Format != tt.formats[i] {
					t.Errorf("doc[%d].Format = %v, want %v", i, d.Format, tt.formats[i])
				}
				if !strings.HasPrefix(d.SourceFile, "/data/") || !strings.HasPrefix(d.PagesDir, "/data/") {
					t.Errorf("doc[%d] paths not under data dir: %q %q", i, d.SourceFile, d.PagesDir)
				}
			}
		})
	}
}
