// Package tocplan lays out the table of contents for an ordered record
// set. The planner runs the layout engine once, with a fixed-width
// placeholder in every page-number slot, and records the absolute position
// of each element. Later passes patch real page numbers into the recorded
// slots without ever re-flowing the layout.
package tocplan

import (
	"errors"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/kmandel/bindery/internal/catalog"
)

// ErrNoEntries is returned when there are no records to lay out.
var ErrNoEntries = errors.New("no records to lay out")

// Layout holds the page geometry and font metrics for the TOC.
// All lengths are millimeters.
type Layout struct {
	Title             string
	PageWidth         float64
	PageHeight        float64
	Margin            float64
	FontFamily        string
	FontSize          float64
	HeaderFontSize    float64
	TitleFontSize     float64
	LineHeight        float64
	PlaceholderDigits int
}

// DefaultLayout returns the A4 layout used unless configured otherwise.
func DefaultLayout() Layout {
	return Layout{
		Title:             "Table of Contents",
		PageWidth:         210,
		PageHeight:        297,
		Margin:            15,
		FontFamily:        "Arial",
		FontSize:          8,
		HeaderFontSize:    10,
		TitleFontSize:     12,
		LineHeight:        6,
		PlaceholderDigits: 4,
	}
}

// ContentWidth returns the usable width between the margins.
func (l Layout) ContentWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

// Kind discriminates TOC entries.
type Kind int

const (
	SectionHeader Kind = iota
	DocumentEntry
)

// Entry is one laid-out TOC element with its recorded geometry. The
// reserved numeral slot stays empty until the replay renderer writes the
// resolved page number into it.
type Entry struct {
	Kind          Kind
	AnchorID      string
	Text          string   // display text (single line for entries)
	Lines         []string // wrapped lines for headers
	SectionNumber string
	RecordID      string // empty for headers

	Page  int     // 1-indexed TOC page
	Y     float64 // top of the row, mm from page top
	TextW float64 // width available for text and dot leader
	NumX  float64 // left edge of the reserved numeral slot
	NumW  float64 // width of the reserved numeral slot
}

// Draft is the laid-out TOC: entries with geometry plus the page count the
// layout actually needed. Immutable once produced.
type Draft struct {
	Layout    Layout
	Entries   []Entry
	PageCount int
}

// SectionAnchor returns the anchor id for a section header.
func SectionAnchor(sectionNumber string) string { return "sec/" + sectionNumber }

// DocAnchor returns the anchor id for a document entry.
func DocAnchor(id string) string { return "doc/" + id }

// Plan lays out one SectionHeader per section transition followed by one
// DocumentEntry per record, and returns the draft with placeholder slots.
// It touches no content documents.
func Plan(ordered []catalog.MergedRecord, l Layout) (*Draft, error) {
	if len(ordered) == 0 {
		return nil, ErrNoEntries
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)
	pdf.SetAutoPageBreak(false, l.Margin)
	pdf.AddPage()

	c := &cursor{pdf: pdf, l: l, page: 1, y: l.Margin}
	c.title()

	draft := &Draft{Layout: l}
	lastSection := ""
	for _, r := range ordered {
		if r.SectionNumber != lastSection {
			draft.Entries = append(draft.Entries, c.header(r))
			lastSection = r.SectionNumber
		}
		draft.Entries = append(draft.Entries, c.entry(r))
	}

	draft.PageCount = c.page
	return draft, nil
}

// cursor walks the page top-down, breaking to a new page when a row would
// cross the bottom margin.
type cursor struct {
	pdf  *gofpdf.Fpdf
	l    Layout
	page int
	y    float64
}

func (c *cursor) breakIfNeeded(rowHeight float64) {
	if c.y+rowHeight > c.l.PageHeight-c.l.Margin {
		c.page++
		c.y = c.l.Margin
	}
}

func (c *cursor) title() {
	c.pdf.SetFont(c.l.FontFamily, "", c.l.TitleFontSize)
	c.y += 10 + 5 // banner row plus gap, mirrored by the replay renderer
}

func (c *cursor) header(r catalog.MergedRecord) Entry {
	c.pdf.SetFont(c.l.FontFamily, "B", c.l.HeaderFontSize)
	text := r.SectionNumber + "  " + r.SectionName
	lines := c.pdf.SplitText(text, c.l.ContentWidth())
	lh := c.l.LineHeight

	needed := lh*0.25 + lh*float64(len(lines)) + lh*0.25
	c.breakIfNeeded(needed)

	c.y += lh * 0.25
	e := Entry{
		Kind:          SectionHeader,
		AnchorID:      SectionAnchor(r.SectionNumber),
		Text:          text,
		Lines:         lines,
		SectionNumber: r.SectionNumber,
		Page:          c.page,
		Y:             c.y,
		TextW:         c.l.ContentWidth(),
	}
	c.y += lh*float64(len(lines)) + lh*0.25
	return e
}

func (c *cursor) entry(r catalog.MergedRecord) Entry {
	c.pdf.SetFont(c.l.FontFamily, "", c.l.FontSize)
	lh := c.l.LineHeight

	// Reserve the numeral slot wide enough that no real page number can
	// ever need more room than the placeholder.
	numW := c.pdf.GetStringWidth(strings.Repeat("8", c.l.PlaceholderDigits)) + 1

	c.breakIfNeeded(lh + lh/4)

	e := Entry{
		Kind:          DocumentEntry,
		AnchorID:      DocAnchor(r.ID),
		Text:          "  " + r.DisplayTitle(),
		SectionNumber: r.SectionNumber,
		RecordID:      r.ID,
		Page:          c.page,
		Y:             c.y,
		TextW:         c.l.ContentWidth() - numW - 1,
		NumX:          c.l.Margin + c.l.ContentWidth() - numW,
		NumW:          numW,
	}
	c.y += lh + lh/4
	return e
}
