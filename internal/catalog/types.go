// Package catalog merges discovered source documents with section mapping
// and category sources into a single ordered record set, reporting every
// record that fails the join.
package catalog

// SourceRecord describes one discovered content document.
// Created during discovery; immutable afterwards.
type SourceRecord struct {
	ID    string // normalized filename stem, lowercase
	Path  string // absolute path to the source file
	Title string // extracted document title, may be empty
}

// SectionMapping assigns a document id to a section number.
// Rows come from the user-supplied mapping source.
type SectionMapping struct {
	ID            string
	SectionNumber string
}

// SectionCategory names a section. Rows come from the fixed
// categorization source.
type SectionCategory struct {
	SectionNumber string
	SectionName   string
}

// MergedRecord is the validated join of a SourceRecord with its section
// mapping and category. Consumed read-only downstream.
type MergedRecord struct {
	ID                 string
	Path               string
	Title              string
	SectionNumber      string
	SectionName        string
	OrderWithinSection int
}

// DisplayTitle returns the title to show in the TOC, falling back to the
// document id when no title was extracted.
func (r MergedRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}

// Source names used in Mismatch.PresentIn.
const (
	SourceDocuments  = "documents"
	SourceMapping    = "mapping"
	SourceCategories = "categories"
)

// Reason classifies why a record was excluded from the composite.
type Reason string

const (
	ReasonNoCategory       Reason = "no category"
	ReasonNotInMapping     Reason = "not in mapping"
	ReasonNotDiscovered    Reason = "not discovered"
	ReasonMalformedSection Reason = "malformed section"
	ReasonUnmappedPrefix   Reason = "unmapped prefix"
	ReasonPrefixConflict   Reason = "section prefix conflict"
	ReasonRenderFailed     Reason = "render failed"
)

// Mismatch records a document excluded from the composite.
// An id appears in exactly one of merged records or mismatches, never both.
type Mismatch struct {
	ID        string
	Reason    Reason
	PresentIn []string
}
