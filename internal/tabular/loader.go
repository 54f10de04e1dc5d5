// Package tabular reads the section mapping and category sources from CSV
// files. Column presence is validated before any merging happens; a missing
// required column is a configuration error, not a per-row mismatch.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kmandel/bindery/internal/catalog"
)

// Required column names.
const (
	ColFilename      = "filename"
	ColSectionNumber = "section_number"
	ColSectionName   = "section_name"
)

// LoadSectionMappings reads {filename, section_number} rows from path.
func LoadSectionMappings(path string) ([]catalog.SectionMapping, error) {
	var mappings []catalog.SectionMapping
	err := readRows(path, []string{ColFilename, ColSectionNumber}, func(row map[string]string) {
		mappings = append(mappings, catalog.SectionMapping{
			ID:            catalog.NormalizeID(row[ColFilename]),
			SectionNumber: strings.TrimSpace(row[ColSectionNumber]),
		})
	})
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// LoadSectionCategories reads {section_number, section_name} rows from path.
func LoadSectionCategories(path string) ([]catalog.SectionCategory, error) {
	var categories []catalog.SectionCategory
	err := readRows(path, []string{ColSectionNumber, ColSectionName}, func(row map[string]string) {
		categories = append(categories, catalog.SectionCategory{
			SectionNumber: strings.TrimSpace(row[ColSectionNumber]),
			SectionName:   strings.TrimSpace(row[ColSectionName]),
		})
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// readRows parses a CSV file with a header row and calls fn once per data
// row with values keyed by column name.
func readRows(path string, required []string, fn func(map[string]string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%q column not in %s", name, path)
		}
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		row := make(map[string]string, len(required))
		for _, name := range required {
			if i := cols[name]; i < len(rec) {
				row[name] = rec[i]
			}
		}
		fn(row)
	}
}
