package catalog

import (
	"testing"
)

func testRecords() []SourceRecord {
	return []SourceRecord{
		{ID: "t-alpha", Title: "Alpha Table"},
		{ID: "t-beta", Title: "Beta Table"},
		{ID: "f-gamma", Title: "Gamma Figure"},
	}
}

func testMapping() []SectionMapping {
	return []SectionMapping{
		{ID: "t-alpha", SectionNumber: "14.1"},
		{ID: "t-beta", SectionNumber: "14.1"},
		{ID: "f-gamma", SectionNumber: "14.2"},
	}
}

func testCategories() []SectionCategory {
	return []SectionCategory{
		{SectionNumber: "14.1", SectionName: "Demographics"},
		{SectionNumber: "14.2", SectionName: "Efficacy"},
	}
}

func TestMerge(t *testing.T) {
	t.Run("full join", func(t *testing.T) {
		merged, mismatches := Merge(testRecords(), testMapping(), testCategories())
		if len(mismatches) != 0 {
			t.Fatalf("expected no mismatches, got %v", mismatches)
		}
		if len(merged) != 3 {
			t.Fatalf("expected 3 merged records, got %d", len(merged))
		}
		if merged[0].ID != "t-alpha" || merged[1].ID != "t-beta" || merged[2].ID != "f-gamma" {
			t.Errorf("unexpected order: %v", merged)
		}
		if merged[0].SectionName != "Demographics" {
			t.Errorf("expected section name Demographics, got %s", merged[0].SectionName)
		}
		if merged[0].OrderWithinSection != 0 || merged[1].OrderWithinSection != 1 || merged[2].OrderWithinSection != 0 {
			t.Errorf("unexpected within-section ordering: %v", merged)
		}
	})

	t.Run("numeric section ordering", func(t *testing.T) {
		records := []SourceRecord{
			{ID: "t-ten"},
			{ID: "t-two"},
			{ID: "t-one"},
		}
		mapping := []SectionMapping{
			{ID: "t-ten", SectionNumber: "14.10"},
			{ID: "t-two", SectionNumber: "14.2"},
			{ID: "t-one", SectionNumber: "14.1"},
		}
		categories := []SectionCategory{
			{SectionNumber: "14.1", SectionName: "A"},
			{SectionNumber: "14.2", SectionName: "B"},
			{SectionNumber: "14.10", SectionName: "C"},
		}
		merged, _ := Merge(records, mapping, categories)
		if len(merged) != 3 {
			t.Fatalf("expected 3 records, got %d", len(merged))
		}
		want := []string{"14.1", "14.2", "14.10"}
		for i, w := range want {
			if merged[i].SectionNumber != w {
				t.Fatalf("expected section order %v, got %s at %d", want, merged[i].SectionNumber, i)
			}
		}
	})

	t.Run("discovery order within section", func(t *testing.T) {
		records := []SourceRecord{
			{ID: "t-zz"},
			{ID: "t-aa"},
		}
		mapping := []SectionMapping{
			{ID: "t-zz", SectionNumber: "14.1"},
			{ID: "t-aa", SectionNumber: "14.1"},
		}
		merged, _ := Merge(records, mapping, testCategories())
		if merged[0].ID != "t-zz" || merged[1].ID != "t-aa" {
			t.Errorf("expected stable discovery order, got %v", merged)
		}
	})

	t.Run("partition with distinct reasons", func(t *testing.T) {
		// Mapping references id "t-d" that was never discovered, and
		// discovered "t-e" is absent from the mapping.
		records := append(testRecords(), SourceRecord{ID: "t-e"})
		mapping := append(testMapping(), SectionMapping{ID: "t-d", SectionNumber: "14.1"})
		merged, mismatches := Merge(records, mapping, testCategories())

		if len(merged) != 3 {
			t.Fatalf("expected 3 merged records, got %d", len(merged))
		}
		if len(mismatches) != 2 {
			t.Fatalf("expected 2 mismatches, got %v", mismatches)
		}
		reasons := make(map[string]Reason)
		for _, m := range mismatches {
			reasons[m.ID] = m.Reason
		}
		if reasons["t-e"] != ReasonNotInMapping {
			t.Errorf("expected t-e to be %q, got %q", ReasonNotInMapping, reasons["t-e"])
		}
		if reasons["t-d"] != ReasonNotDiscovered {
			t.Errorf("expected t-d to be %q, got %q", ReasonNotDiscovered, reasons["t-d"])
		}

		// No id appears on both sides.
		seen := make(map[string]bool)
		for _, r := range merged {
			seen[r.ID] = true
		}
		for _, m := range mismatches {
			if seen[m.ID] {
				t.Errorf("id %s in both merged and mismatches", m.ID)
			}
		}
	})

	t.Run("malformed section number", func(t *testing.T) {
		mapping := []SectionMapping{{ID: "t-alpha", SectionNumber: "14.x"}}
		merged, mismatches := Merge(testRecords()[:1], mapping, testCategories())
		if len(merged) != 0 {
			t.Fatalf("expected no merged records, got %v", merged)
		}
		found := false
		for _, m := range mismatches {
			if m.ID == "t-alpha" && m.Reason == ReasonMalformedSection {
				found = true
			}
		}
		if !found {
			t.Errorf("expected malformed section mismatch, got %v", mismatches)
		}
	})

	t.Run("no category", func(t *testing.T) {
		mapping := []SectionMapping{{ID: "t-alpha", SectionNumber: "14.9"}}
		merged, mismatches := Merge(testRecords()[:1], mapping, testCategories())
		if len(merged) != 0 {
			t.Fatalf("expected no merged records, got %v", merged)
		}
		if len(mismatches) == 0 || mismatches[0].Reason != ReasonNoCategory {
			t.Errorf("expected no-category mismatch, got %v", mismatches)
		}
	})

	t.Run("empty sources exclude everything", func(t *testing.T) {
		merged, mismatches := Merge(testRecords(), nil, nil)
		if len(merged) != 0 {
			t.Fatalf("expected no merged records, got %v", merged)
		}
		if len(mismatches) != 3 {
			t.Errorf("expected every record mismatched, got %v", mismatches)
		}
	})

	t.Run("prefix conflict", func(t *testing.T) {
		records := []SourceRecord{{ID: "l-listing"}}
		mapping := []SectionMapping{{ID: "l-listing", SectionNumber: "14.1"}}
		merged, mismatches := Merge(records, mapping, testCategories())
		if len(merged) != 0 {
			t.Fatalf("expected conflict to exclude record, got %v", merged)
		}
		if len(mismatches) != 1 || mismatches[0].Reason != ReasonPrefixConflict {
			t.Errorf("expected prefix conflict mismatch, got %v", mismatches)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		m1, mm1 := Merge(testRecords(), testMapping(), testCategories())
		m2, mm2 := Merge(testRecords(), testMapping(), testCategories())
		if len(m1) != len(m2) || len(mm1) != len(mm2) {
			t.Fatal("expected identical outputs across runs")
		}
		for i := range m1 {
			if m1[i] != m2[i] {
				t.Fatalf("merged records differ at %d: %v vs %v", i, m1[i], m2[i])
			}
		}
	})
}

func TestAutoMapping(t *testing.T) {
	records := []SourceRecord{
		{ID: "t-alpha"},
		{ID: "f-gamma"},
		{ID: "l-delta"},
		{ID: "x-unknown"},
	}

	mapping, mismatches := AutoMapping(records)
	if len(mapping) != 3 {
		t.Fatalf("expected 3 mapped records, got %v", mapping)
	}
	if len(mismatches) != 1 || mismatches[0].ID != "x-unknown" || mismatches[0].Reason != ReasonUnmappedPrefix {
		t.Fatalf("expected unmapped prefix mismatch for x-unknown, got %v", mismatches)
	}

	wantSections := map[string]string{
		"t-alpha": "14.2",
		"f-gamma": "14.3",
		"l-delta": "16.1",
	}
	for _, m := range mapping {
		if wantSections[m.ID] != m.SectionNumber {
			t.Errorf("expected %s -> %s, got %s", m.ID, wantSections[m.ID], m.SectionNumber)
		}
	}

	t.Run("feeds merge cleanly", func(t *testing.T) {
		merged, mm := Merge(records[:3], mapping, DefaultCategories())
		if len(merged) != 3 || len(mm) != 0 {
			t.Errorf("expected automatic mapping to merge fully, got %v / %v", merged, mm)
		}
	})
}
