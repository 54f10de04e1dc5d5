// Package assemble concatenates rendered content documents in resolved
// order and produces the page map the cross-reference resolver needs.
package assemble

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kmandel/bindery/internal/catalog"
)

// ErrNothingToAssemble is returned when no content document survives.
var ErrNothingToAssemble = errors.New("no content documents to assemble")

// PageMapEntry records where one document's pages land inside the content
// block. Entries are contiguous and ordered identically to the merged
// record ordering: no gaps, no overlaps.
type PageMapEntry struct {
	ID               string
	ContentStartPage int // 1-indexed within the content block
	ContentPageCount int
}

// PageMap is the ordered set of page map entries.
type PageMap []PageMapEntry

// Start returns the 1-indexed content start page for an id.
func (pm PageMap) Start(id string) (int, bool) {
	for _, e := range pm {
		if e.ID == id {
			return e.ContentStartPage, true
		}
	}
	return 0, false
}

// TotalPages returns the page count of the whole content block.
func (pm PageMap) TotalPages() int {
	if len(pm) == 0 {
		return 0
	}
	last := pm[len(pm)-1]
	return last.ContentStartPage + last.ContentPageCount - 1
}

// FindEntryForPage returns the id owning a content page and the 1-indexed
// page within that document. Returns ("", 0) when out of range.
func (pm PageMap) FindEntryForPage(page int) (string, int) {
	for _, e := range pm {
		if page >= e.ContentStartPage && page < e.ContentStartPage+e.ContentPageCount {
			return e.ID, page - e.ContentStartPage + 1
		}
	}
	return "", 0
}

// Lookup maps a record id to its rendered PDF path.
type Lookup func(id string) string

// DirLookup returns a Lookup over renderedDir using "<id>.pdf" names.
func DirLookup(renderedDir string) Lookup {
	return func(id string) string {
		return filepath.Join(renderedDir, id+".pdf")
	}
}

// Result holds the assembled page map and the per-document failures.
type Result struct {
	PageMap PageMap
	Failed  []catalog.Mismatch
}

// Assemble concatenates the rendered PDFs for ordered into outPath,
// preserving any outline entries embedded by the renderer. A missing or
// empty rendered document excludes that id only; it is recorded as a
// render-failure mismatch and assembly continues.
func Assemble(ordered []catalog.MergedRecord, lookup Lookup, outPath string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := &Result{}
	var files []string
	nextStart := 1

	for _, r := range ordered {
		path := lookup(r.ID)
		count, err := pdfPageCount(path)
		if err != nil || count == 0 {
			if err != nil {
				logger.Warn("excluding document from assembly", "id", r.ID, "error", err)
			} else {
				logger.Warn("excluding empty document from assembly", "id", r.ID)
			}
			res.Failed = append(res.Failed, catalog.Mismatch{
				ID:        r.ID,
				Reason:    catalog.ReasonRenderFailed,
				PresentIn: []string{catalog.SourceDocuments},
			})
			continue
		}

		files = append(files, path)
		res.PageMap = append(res.PageMap, PageMapEntry{
			ID:               r.ID,
			ContentStartPage: nextStart,
			ContentPageCount: count,
		})
		nextStart += count
	}

	if len(files) == 0 {
		return nil, ErrNothingToAssemble
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := api.MergeCreateFile(files, outPath, false, nil); err != nil {
		return nil, fmt.Errorf("failed to merge content documents: %w", err)
	}

	logger.Info("assembled content block",
		"documents", len(files),
		"pages", res.PageMap.TotalPages(),
		"excluded", len(res.Failed))
	return res, nil
}

func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("rendered PDF not found: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	return n, nil
}
