// Package book implements the paginated-document side of the bot: page
// catalogs, the publication cursor engine and source preparation.
package book

import (
	"os"
	"sort"
	"strings"
)

// Format names the source document format. The publication engine is
// format-agnostic; Format only selects the rasterization collaborator.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDJVU Format = "djvu"
)

// Document is a named content stream published incrementally.
type Document struct {
	// Name identifies the document in the cursor store and in logs.
	Name string

	// SourceURL is where the source file is downloaded from when
	// SourceFile is absent.
	SourceURL string

	// SourceFile is the local path of the downloaded source document.
	SourceFile string

	// PagesDir holds one rendered image per page, named so that
	// lexicographic order equals page order.
	PagesDir string

	Format Format
}

// ListPages enumerates the rendered page files of a document, sorted by
// filename. A missing or empty directory yields an empty catalog, which
// is a valid state (document not yet rendered) distinct from "fully
// published".
func ListPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	pages := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		pages = append(pages, name)
	}
	// ReadDir already sorts, but the cursor semantics depend on a total
	// stable order; do not rely on enumeration behavior.
	sort.Strings(pages)
	return pages, nil
}
