// Package render drives the external document-to-PDF rendering
// collaborator. The engine behind it (a headless office converter) supports
// a single session, so all render calls are serialized through one slot
// regardless of how many workers the caller runs.
package render

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Renderer converts one source document into a PDF at dstPath and reports
// the page count of the result.
type Renderer interface {
	Render(ctx context.Context, srcPath, dstPath string) (pageCount int, err error)
}

// RenderError marks a failure inside the rendering engine, as opposed to
// an I/O failure reading the source or writing the output.
type RenderError struct {
	Src string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.Src, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// pageCount returns the number of pages in a PDF file.
func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open rendered PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	return n, nil
}
