package catalog

// Automatic section assignment derives section numbers from the first
// character of a document id instead of a user-supplied mapping file.
// Table (t*) and figure (f*) outputs land in section 14, listings (l*)
// in section 16.

var autoPrefixTable = map[byte]string{
	't': "14.2",
	'f': "14.3",
	'l': "16.1",
}

// AutoMapping builds a synthetic section mapping from document id
// prefixes. Ids with an unmapped prefix become mismatches.
func AutoMapping(records []SourceRecord) ([]SectionMapping, []Mismatch) {
	var mapping []SectionMapping
	var mismatches []Mismatch
	for _, r := range records {
		id := NormalizeID(r.ID)
		if id == "" {
			mismatches = append(mismatches, Mismatch{
				ID:        r.ID,
				Reason:    ReasonUnmappedPrefix,
				PresentIn: []string{SourceDocuments},
			})
			continue
		}
		section, ok := autoPrefixTable[id[0]]
		if !ok {
			mismatches = append(mismatches, Mismatch{
				ID:        id,
				Reason:    ReasonUnmappedPrefix,
				PresentIn: []string{SourceDocuments},
			})
			continue
		}
		mapping = append(mapping, SectionMapping{ID: id, SectionNumber: section})
	}
	return mapping, mismatches
}

// DefaultCategories returns the category table used in automatic mode.
func DefaultCategories() []SectionCategory {
	return []SectionCategory{
		{SectionNumber: "14.2", SectionName: "Tables"},
		{SectionNumber: "14.3", SectionName: "Figures"},
		{SectionNumber: "16.1", SectionName: "Listings"},
	}
}
