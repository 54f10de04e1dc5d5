// Package scan discovers RTF source documents in an input directory and
// extracts a display title from each.
package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kmandel/bindery/internal/catalog"
)

// maxTitleBytes caps how much of each file is read for title extraction.
// Titles live in the first paragraph; reading more is wasted work on
// multi-megabyte table outputs.
const maxTitleBytes = 10 * 1024

// Discover scans inputDir for *.rtf files and returns one SourceRecord per
// file in stable name order. That order is the discovery order used for
// within-section tie-breaking downstream.
func Discover(inputDir string, logger *slog.Logger) ([]catalog.SourceRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".rtf") {
			paths = append(paths, filepath.Join(inputDir, e.Name()))
		}
	}
	sort.Strings(paths)

	records := make([]catalog.SourceRecord, 0, len(paths))
	titled := 0
	for _, p := range paths {
		title, err := ExtractTitle(p)
		if err != nil {
			logger.Warn("failed to extract title", "file", filepath.Base(p), "error", err)
		}
		if title != "" {
			titled++
		}
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		records = append(records, catalog.SourceRecord{
			ID:    catalog.NormalizeID(stem),
			Path:  abs,
			Title: title,
		})
	}

	logger.Info("discovered source documents", "dir", inputDir, "files", len(records), "titled", titled)
	return records, nil
}

// ExtractTitle reads the head of an RTF file and returns its first
// non-empty plain-text line. Returns "" when no usable title is found.
func ExtractTitle(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, maxTitleBytes)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	head := buf[:n]

	if !strings.HasPrefix(string(head), `{\rtf`) {
		// Not fatal: some generators emit a BOM or stray bytes first.
		return firstLine(string(head)), nil
	}

	return firstLine(rtfToText(string(head))), nil
}

// firstLine returns the first non-empty line, with a trailing '|' cell
// separator trimmed, cleaned of control characters.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimRight(line, "|")
		line = CleanText(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// CleanText strips control and non-printable characters and collapses
// whitespace runs, so extracted titles are safe for TOC and bookmark text.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\u00a0':
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		case r < 0x20 || r == 0x7f,
			r >= 0x200b && r <= 0x200f,
			r >= 0x2028 && r <= 0x202f,
			r >= 0x2060 && r <= 0x206f,
			r == '€' || r == '~':
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
