package scan

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleRTF = `{\rtf1\ansi\deff0{\fonttbl{\f0 Courier;}}
{\info{\title ignored}}
\f0\fs16 Table 14.1.1|\par
Demographic Summary\par
}`

func TestRTFToText(t *testing.T) {
	t.Run("basic document", func(t *testing.T) {
		text := rtfToText(sampleRTF)
		if got := firstLine(text); got != "Table 14.1.1" {
			t.Errorf("expected first line 'Table 14.1.1', got %q", got)
		}
	})

	t.Run("metadata groups skipped", func(t *testing.T) {
		text := rtfToText(`{\rtf1{\fonttbl{\f0 Arial;}}{\*\generator SAS 9.4;}Hello\par}`)
		if got := firstLine(text); got != "Hello" {
			t.Errorf("expected 'Hello', got %q", got)
		}
	})

	t.Run("escapes decoded", func(t *testing.T) {
		text := rtfToText(`{\rtf1 caf\'e9 \u8212?dash\par}`)
		if got := firstLine(text); got != "café —dash" {
			t.Errorf("unexpected decode: %q", got)
		}
	})
}

func TestCleanText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Table   1  ", "Table 1"},
		{"a b", "a b"},
		{"a​b", "a b"},
		{"ctrl\x01char", "ctrl char"},
		{"no€markers~here", "no markers here"},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Errorf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractTitle(t *testing.T) {
	t.Run("rtf file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "t-alpha.rtf")
		if err := os.WriteFile(path, []byte(sampleRTF), 0o644); err != nil {
			t.Fatal(err)
		}
		title, err := ExtractTitle(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if title != "Table 14.1.1" {
			t.Errorf("expected 'Table 14.1.1', got %q", title)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ExtractTitle(filepath.Join(t.TempDir(), "nope.rtf")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"T-Beta.rtf":  sampleRTF,
		"t-alpha.rtf": sampleRTF,
		"notes.txt":   "not a source",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	records, err := Discover(dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Name order, ids normalized to lowercase stems.
	if records[0].ID != "t-beta" || records[1].ID != "t-alpha" {
		t.Errorf("unexpected discovery order: %v, %v", records[0].ID, records[1].ID)
	}
	if records[0].Title != "Table 14.1.1" {
		t.Errorf("expected extracted title, got %q", records[0].Title)
	}
	if !filepath.IsAbs(records[0].Path) {
		t.Errorf("expected absolute path, got %s", records[0].Path)
	}
}
