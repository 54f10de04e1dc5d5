package tocplan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Render replays a draft into a TOC PDF at outPath, writing the resolved
// page number (keyed by anchor id) into each entry's reserved slot. Every
// element is drawn at its recorded position; nothing re-flows.
func Render(draft *Draft, resolved map[string]int, outPath string) error {
	l := draft.Layout
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)
	pdf.SetAutoPageBreak(false, l.Margin)
	pdf.AddPage()
	page := 1

	// Title banner, mirroring the planner's cursor.
	pdf.SetFont(l.FontFamily, "", l.TitleFontSize)
	pdf.SetXY(l.Margin, l.Margin)
	pdf.CellFormat(l.ContentWidth(), 10, l.Title, "", 0, "L", false, 0, "")

	for _, e := range draft.Entries {
		for page < e.Page {
			pdf.AddPage()
			page++
		}
		switch e.Kind {
		case SectionHeader:
			pdf.SetFont(l.FontFamily, "B", l.HeaderFontSize)
			for i, line := range e.Lines {
				pdf.SetXY(l.Margin, e.Y+float64(i)*l.LineHeight)
				pdf.CellFormat(l.ContentWidth(), l.LineHeight, line, "", 0, "L", false, 0, "")
			}
		case DocumentEntry:
			n, ok := resolved[e.AnchorID]
			if !ok {
				return fmt.Errorf("no resolved page for anchor %s", e.AnchorID)
			}
			writeEntryRow(pdf, l, e, strconv.Itoa(n))
		}
	}

	if page != draft.PageCount {
		return fmt.Errorf("replay produced %d pages, draft planned %d", page, draft.PageCount)
	}
	return pdf.OutputFileAndClose(outPath)
}

// writeEntryRow draws one document line: indented title, dot leader, and
// the right-aligned page number in the reserved slot.
func writeEntryRow(pdf *gofpdf.Fpdf, l Layout, e Entry, pageStr string) {
	pdf.SetFont(l.FontFamily, "", l.FontSize)

	text := e.Text
	textW := pdf.GetStringWidth(text)
	if textW > e.TextW {
		textW = e.TextW
	}
	pdf.SetXY(l.Margin, e.Y)
	pdf.CellFormat(textW, l.LineHeight, text, "", 0, "L", false, 0, "")

	if dotsW := e.TextW - textW - 1; dotsW > 0 {
		if dotW := pdf.GetStringWidth("."); dotW > 0 {
			dots := strings.Repeat(".", int(dotsW/dotW))
			pdf.CellFormat(dotsW, l.LineHeight, dots, "", 0, "R", false, 0, "")
		}
	}

	pdf.SetXY(e.NumX, e.Y)
	pdf.CellFormat(e.NumW, l.LineHeight, pageStr, "", 0, "R", false, 0, "")
}
