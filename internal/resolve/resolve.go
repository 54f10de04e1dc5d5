// Package resolve patches the TOC draft against the assembled page map:
// the classic second pass of a two-pass assembler. Pass 1 fixed the TOC
// page count and the content page offsets; this pass computes every final
// page number and navigation destination. It is a pure function of
// (draft, page map) and never re-invokes layout. If a real page number
// would not fit the reserved placeholder slot, resolution fails and the
// caller must re-plan with a wider slot.
package resolve

import (
	"errors"
	"fmt"

	"github.com/kmandel/bindery/internal/assemble"
	"github.com/kmandel/bindery/internal/tocplan"
)

// ErrCapacityExceeded means a resolved page number needs more digits than
// the placeholder slot reserved. Recovery is re-planning with a wider
// slot; the resolver never retries internally.
var ErrCapacityExceeded = errors.New("toc capacity exceeded")

// Composite is the resolved cross-reference table for the final document.
type Composite struct {
	TOCPages     int
	ContentPages int
	TotalPages   int

	// NavTable maps every anchor id to its absolute page in the
	// composite. Section headers resolve to their first member's page.
	NavTable map[string]int
}

// Resolve computes the final absolute page for every TOC entry and
// navigation anchor. Content start pages shift by the TOC page count;
// any result outside [1, total] is an invariant violation.
func Resolve(draft *tocplan.Draft, pageMap assemble.PageMap) (*Composite, error) {
	if draft == nil || draft.PageCount < 1 {
		return nil, errors.New("draft has no pages")
	}

	t := draft.PageCount
	comp := &Composite{
		TOCPages:     t,
		ContentPages: pageMap.TotalPages(),
		NavTable:     make(map[string]int, len(draft.Entries)),
	}
	comp.TotalPages = comp.TOCPages + comp.ContentPages

	// First surviving member of each section, for header targets.
	sectionStart := make(map[string]int)
	for _, e := range draft.Entries {
		if e.Kind != tocplan.DocumentEntry {
			continue
		}
		start, ok := pageMap.Start(e.RecordID)
		if !ok {
			continue
		}
		if cur, seen := sectionStart[e.SectionNumber]; !seen || start < cur {
			sectionStart[e.SectionNumber] = start
		}
	}

	for _, e := range draft.Entries {
		var start int
		switch e.Kind {
		case tocplan.DocumentEntry:
			s, ok := pageMap.Start(e.RecordID)
			if !ok {
				return nil, fmt.Errorf("no page map entry for %s", e.RecordID)
			}
			start = s
		case tocplan.SectionHeader:
			s, ok := sectionStart[e.SectionNumber]
			if !ok {
				return nil, fmt.Errorf("section %s has no surviving documents", e.SectionNumber)
			}
			start = s
		}

		page := t + start
		if page < 1 || page > comp.TotalPages {
			return nil, fmt.Errorf("anchor %s resolves to page %d, outside [1, %d]",
				e.AnchorID, page, comp.TotalPages)
		}
		if e.Kind == tocplan.DocumentEntry && digits(page) > draft.Layout.PlaceholderDigits {
			return nil, fmt.Errorf("%w: page %d needs %d digits, slot holds %d",
				ErrCapacityExceeded, page, digits(page), draft.Layout.PlaceholderDigits)
		}
		comp.NavTable[e.AnchorID] = page
	}

	return comp, nil
}

// ShiftBookmark converts a content-block page to its absolute page in the
// composite. Used when re-homing intra-content outline destinations.
func (c *Composite) ShiftBookmark(contentPage int) int {
	return c.TOCPages + contentPage
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
