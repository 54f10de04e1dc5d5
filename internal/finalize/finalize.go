// Package finalize produces the deliverables: the composite PDF with the
// rendered TOC prepended, a navigable outline, clickable TOC entries, and
// the mismatch report. The composite is written atomically; a failed run
// never leaves a partial file at the output path.
package finalize

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/kmandel/bindery/internal/catalog"
	"github.com/kmandel/bindery/internal/resolve"
	"github.com/kmandel/bindery/internal/tocplan"
)

// mm to PostScript points.
const ptPerMM = 72.0 / 25.4

// Inputs carries everything the finalizer needs. ScratchDir receives the
// rendered TOC; the caller owns its lifecycle.
type Inputs struct {
	Draft       *tocplan.Draft
	Composite   *resolve.Composite
	ContentPath string
	OutputPath  string
	ReportPath  string
	Mismatches  []catalog.Mismatch
	ScratchDir  string
	Logger      *slog.Logger
}

// Finalize renders the TOC with resolved page numbers, prepends it to the
// content block, attaches the outline and the TOC link annotations, and
// moves the result into place with a rename.
func Finalize(in Inputs) error {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if in.Draft == nil || in.Composite == nil {
		return errors.New("finalize requires a draft and a resolved composite")
	}

	tocPath := filepath.Join(in.ScratchDir, "toc.pdf")
	if err := tocplan.Render(in.Draft, in.Composite.NavTable, tocPath); err != nil {
		return fmt.Errorf("failed to render TOC: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(in.OutputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Staged in the output directory so the final rename stays on one
	// filesystem.
	tmp := filepath.Join(filepath.Dir(in.OutputPath), "."+filepath.Base(in.OutputPath)+".tmp")
	defer os.Remove(tmp)

	if err := api.MergeCreateFile([]string{tocPath, in.ContentPath}, tmp, false, nil); err != nil {
		return fmt.Errorf("failed to prepend TOC: %w", err)
	}

	if err := api.AddBookmarksFile(tmp, "", outline(in.Draft, in.Composite), true, nil); err != nil {
		return fmt.Errorf("failed to attach outline: %w", err)
	}

	links := linkAnnotations(in.Draft, in.Composite)
	if len(links) > 0 {
		if err := api.AddAnnotationsMapFile(tmp, "", links, nil, false); err != nil {
			return fmt.Errorf("failed to attach TOC links: %w", err)
		}
	}

	if err := os.Rename(tmp, in.OutputPath); err != nil {
		return fmt.Errorf("failed to move composite into place: %w", err)
	}
	logger.Info("wrote composite",
		"path", in.OutputPath,
		"toc_pages", in.Composite.TOCPages,
		"total_pages", in.Composite.TotalPages)

	if in.ReportPath != "" {
		if err := WriteReport(in.ReportPath, in.Mismatches); err != nil {
			return fmt.Errorf("failed to write mismatch report: %w", err)
		}
		logger.Info("wrote mismatch report", "path", in.ReportPath, "mismatches", len(in.Mismatches))
	}
	return nil
}

// outline builds the document outline: the TOC title first, then one node
// per section anchored at its TOC page, with the section's documents as
// kids anchored at their resolved content pages.
func outline(draft *tocplan.Draft, comp *resolve.Composite) []pdfcpu.Bookmark {
	bms := []pdfcpu.Bookmark{{Title: draft.Layout.Title, PageFrom: 1, Bold: true}}

	var cur *pdfcpu.Bookmark
	for _, e := range draft.Entries {
		switch e.Kind {
		case tocplan.SectionHeader:
			bms = append(bms, pdfcpu.Bookmark{
				Title:    strings.Join(e.Lines, " "),
				PageFrom: e.Page,
				Bold:     true,
			})
			cur = &bms[len(bms)-1]
		case tocplan.DocumentEntry:
			page, ok := comp.NavTable[e.AnchorID]
			if !ok || cur == nil {
				continue
			}
			cur.Kids = append(cur.Kids, pdfcpu.Bookmark{
				Title:    strings.TrimSpace(e.Text),
				PageFrom: page,
			})
		}
	}
	return bms
}

// linkAnnotations returns one full-row link rectangle per TOC entry,
// keyed by TOC page. Geometry converts from the layout's top-left mm
// coordinates to PDF bottom-left points.
func linkAnnotations(draft *tocplan.Draft, comp *resolve.Composite) map[int][]model.AnnotationRenderer {
	l := draft.Layout
	out := make(map[int][]model.AnnotationRenderer)

	for _, e := range draft.Entries {
		page, ok := comp.NavTable[e.AnchorID]
		if !ok {
			continue
		}
		height := l.LineHeight * float64(maxInt(len(e.Lines), 1))
		rect := types.RectForWidthAndHeight(
			l.Margin*ptPerMM,
			(l.PageHeight-(e.Y+height))*ptPerMM,
			l.ContentWidth()*ptPerMM,
			height*ptPerMM,
		)
		dest := &model.Destination{Typ: model.DestFit, PageNr: page}
		ann := model.NewLinkAnnotation(
			*rect, 0, "", "", "", 0, nil, dest, "", nil, false, 0, model.BSSolid)
		out[e.Page] = append(out[e.Page], ann)
	}
	return out
}

// WriteReport writes the tab-separated mismatch report: one line per id
// with its reason and the sources it appeared in, sorted by id.
func WriteReport(path string, mismatches []catalog.Mismatch) error {
	sorted := make([]catalog.Mismatch, len(mismatches))
	copy(sorted, mismatches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var b strings.Builder
	b.WriteString("id\treason\tpresent_in\n")
	for _, m := range sorted {
		b.WriteString(m.ID)
		b.WriteByte('\t')
		b.WriteString(string(m.Reason))
		b.WriteByte('\t')
		b.WriteString(strings.Join(m.PresentIn, ","))
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
