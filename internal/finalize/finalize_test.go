package finalize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kmandel/bindery/internal/assemble"
	"github.com/kmandel/bindery/internal/catalog"
	"github.com/kmandel/bindery/internal/resolve"
	"github.com/kmandel/bindery/internal/tocplan"
)

func makeContent(t *testing.T, path string, pages int) {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, "content")
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write content PDF: %v", err)
	}
}

func fixture(t *testing.T) (*tocplan.Draft, *resolve.Composite) {
	t.Helper()
	recs := []catalog.MergedRecord{
		{ID: "a", Title: "Alpha", SectionNumber: "1.1", SectionName: "Intro"},
		{ID: "b", Title: "Beta", SectionNumber: "1.1", SectionName: "Intro", OrderWithinSection: 1},
		{ID: "c", Title: "Gamma", SectionNumber: "2.1", SectionName: "Body"},
	}
	draft, err := tocplan.Plan(recs, tocplan.DefaultLayout())
	if err != nil {
		t.Fatalf("failed to plan: %v", err)
	}
	pm := assemble.PageMap{
		{ID: "a", ContentStartPage: 1, ContentPageCount: 2},
		{ID: "b", ContentStartPage: 3, ContentPageCount: 1},
		{ID: "c", ContentStartPage: 4, ContentPageCount: 3},
	}
	comp, err := resolve.Resolve(draft, pm)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	return draft, comp
}

func TestFinalize(t *testing.T) {
	draft, comp := fixture(t)

	t.Run("writes composite and report", func(t *testing.T) {
		scratch := t.TempDir()
		outDir := t.TempDir()
		content := filepath.Join(scratch, "content.pdf")
		makeContent(t, content, comp.ContentPages)

		out := filepath.Join(outDir, "composite.pdf")
		report := filepath.Join(outDir, "mismatches.txt")
		err := Finalize(Inputs{
			Draft:       draft,
			Composite:   comp,
			ContentPath: content,
			OutputPath:  out,
			ReportPath:  report,
			Mismatches: []catalog.Mismatch{
				{ID: "x-1", Reason: catalog.ReasonNotInMapping, PresentIn: []string{catalog.SourceDocuments}},
			},
			ScratchDir: scratch,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := os.Open(out)
		if err != nil {
			t.Fatalf("expected composite: %v", err)
		}
		defer f.Close()
		n, err := api.PageCount(f, nil)
		if err != nil {
			t.Fatalf("composite unreadable: %v", err)
		}
		if n != comp.TotalPages {
			t.Errorf("composite has %d pages, want %d", n, comp.TotalPages)
		}

		if _, err := os.Stat(report); err != nil {
			t.Errorf("expected report: %v", err)
		}

		// No staging leftovers.
		entries, err := os.ReadDir(outDir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("staging file left behind: %s", e.Name())
			}
		}
	})

	t.Run("missing content leaves no output", func(t *testing.T) {
		scratch := t.TempDir()
		out := filepath.Join(t.TempDir(), "composite.pdf")
		err := Finalize(Inputs{
			Draft:       draft,
			Composite:   comp,
			ContentPath: filepath.Join(scratch, "nope.pdf"),
			OutputPath:  out,
			ScratchDir:  scratch,
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if _, statErr := os.Stat(out); statErr == nil {
			t.Error("expected no output file on failure")
		}
	})
}

func TestOutline(t *testing.T) {
	draft, comp := fixture(t)
	bms := outline(draft, comp)

	if len(bms) != 3 {
		t.Fatalf("expected title plus two sections, got %d", len(bms))
	}
	if bms[0].PageFrom != 1 || !bms[0].Bold {
		t.Errorf("unexpected title node: %+v", bms[0])
	}
	if len(bms[1].Kids) != 2 || len(bms[2].Kids) != 1 {
		t.Errorf("unexpected kid counts: %d, %d", len(bms[1].Kids), len(bms[2].Kids))
	}
	if bms[1].Kids[0].PageFrom != comp.NavTable["doc/a"] {
		t.Errorf("first entry targets %d, want %d", bms[1].Kids[0].PageFrom, comp.NavTable["doc/a"])
	}
	if bms[1].PageFrom != draft.Entries[0].Page {
		t.Errorf("section node targets %d, want its TOC page %d", bms[1].PageFrom, draft.Entries[0].Page)
	}
}

func TestLinkAnnotations(t *testing.T) {
	draft, comp := fixture(t)
	links := linkAnnotations(draft, comp)

	total := 0
	for page, anns := range links {
		if page < 1 || page > comp.TOCPages {
			t.Errorf("links keyed outside TOC pages: %d", page)
		}
		total += len(anns)
	}
	if total != len(draft.Entries) {
		t.Errorf("expected one link per entry, got %d of %d", total, len(draft.Entries))
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report", "mismatches.txt")
	mismatches := []catalog.Mismatch{
		{ID: "z-9", Reason: catalog.ReasonRenderFailed, PresentIn: []string{catalog.SourceDocuments}},
		{ID: "a-1", Reason: catalog.ReasonNoCategory, PresentIn: []string{catalog.SourceMapping, catalog.SourceDocuments}},
	}
	if err := WriteReport(path, mismatches); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "id\treason\tpresent_in" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "a-1\t") {
		t.Errorf("expected rows sorted by id, got %q", lines[1])
	}
	if lines[2] != "z-9\trender failed\tdocuments" {
		t.Errorf("unexpected row: %q", lines[2])
	}
}
