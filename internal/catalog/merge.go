package catalog

import (
	"sort"
	"strings"
)

// resolvedMapping is a mapping row that survived validation against the
// category source.
type resolvedMapping struct {
	sectionNumber string
	sectionName   string
}

// Merge joins discovered records with the section mapping and category
// sources. It returns the surviving records ordered by numeric section
// number (discovery order within a section) plus one mismatch for every
// record that failed the join. Given identical inputs the outputs are
// identical across runs.
func Merge(records []SourceRecord, mapping []SectionMapping, categories []SectionCategory) ([]MergedRecord, []Mismatch) {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.SectionNumber] = c.SectionName
	}

	var mismatches []Mismatch
	// index of an id's mismatch entry, so a document whose mapping row
	// already failed join 1 extends that entry instead of adding a second
	// one for the same id.
	mismatchIdx := make(map[string]int)
	addMismatch := func(m Mismatch) {
		mismatchIdx[m.ID] = len(mismatches)
		mismatches = append(mismatches, m)
	}

	// Join 1: mapping rows against categories. Invalid or uncategorized
	// rows are dropped here so they cannot match a document below.
	byID := make(map[string]resolvedMapping, len(mapping))
	mappingOrder := make([]string, 0, len(mapping))
	for _, m := range mapping {
		id := NormalizeID(m.ID)
		switch {
		case !ValidSectionNumber(m.SectionNumber):
			addMismatch(Mismatch{
				ID:        id,
				Reason:    ReasonMalformedSection,
				PresentIn: []string{SourceMapping},
			})
		case names[m.SectionNumber] == "":
			addMismatch(Mismatch{
				ID:        id,
				Reason:    ReasonNoCategory,
				PresentIn: []string{SourceMapping},
			})
		default:
			if _, dup := byID[id]; !dup {
				mappingOrder = append(mappingOrder, id)
			}
			byID[id] = resolvedMapping{
				sectionNumber: m.SectionNumber,
				sectionName:   names[m.SectionNumber],
			}
		}
	}

	// Join 2: documents against the resolved mapping, in discovery order.
	var merged []MergedRecord
	matched := make(map[string]bool, len(records))
	for _, r := range records {
		id := NormalizeID(r.ID)
		rm, ok := byID[id]
		if !ok {
			if i, seen := mismatchIdx[id]; seen {
				mismatches[i].PresentIn = append(mismatches[i].PresentIn, SourceDocuments)
				continue
			}
			addMismatch(Mismatch{
				ID:        id,
				Reason:    ReasonNotInMapping,
				PresentIn: []string{SourceDocuments},
			})
			continue
		}
		matched[id] = true
		if conflict(id, rm.sectionNumber) {
			mismatches = append(mismatches, Mismatch{
				ID:        id,
				Reason:    ReasonPrefixConflict,
				PresentIn: []string{SourceDocuments, SourceMapping},
			})
			continue
		}
		merged = append(merged, MergedRecord{
			ID:            id,
			Path:          r.Path,
			Title:         r.Title,
			SectionNumber: rm.sectionNumber,
			SectionName:   rm.sectionName,
		})
	}

	// Mapping rows that never matched a discovered document.
	for _, id := range mappingOrder {
		if !matched[id] {
			mismatches = append(mismatches, Mismatch{
				ID:        id,
				Reason:    ReasonNotDiscovered,
				PresentIn: []string{SourceMapping},
			})
		}
	}

	sortMerged(merged)
	return merged, mismatches
}

// sortMerged orders records by numeric section number, keeping discovery
// order within a section, and assigns OrderWithinSection.
func sortMerged(merged []MergedRecord) {
	sort.SliceStable(merged, func(i, j int) bool {
		return CompareSectionNumbers(merged[i].SectionNumber, merged[j].SectionNumber) < 0
	})
	n := 0
	for i := range merged {
		if i > 0 && merged[i].SectionNumber != merged[i-1].SectionNumber {
			n = 0
		}
		merged[i].OrderWithinSection = n
		n++
	}
}

// conflict applies the filename-prefix consistency rule: table and figure
// documents (t*, f*) belong under section 14, listings (l*) under 16.
func conflict(id, sectionNumber string) bool {
	if id == "" {
		return false
	}
	switch id[0] {
	case 't', 'f':
		return !strings.HasPrefix(sectionNumber, "14")
	case 'l':
		return !strings.HasPrefix(sectionNumber, "16")
	}
	return false
}

// NormalizeID canonicalizes a document id for joining: trimmed and
// lowercased, matching how mapping files reference filenames.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
