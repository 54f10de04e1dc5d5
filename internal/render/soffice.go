package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBinary is the headless office converter used when none is
// configured.
const DefaultBinary = "soffice"

// Soffice renders documents by shelling out to a LibreOffice binary in
// headless mode. Not safe for concurrent use; wrap in Serialized.
type Soffice struct {
	Binary  string
	Timeout time.Duration
}

// NewSoffice returns a Soffice renderer. An empty binary selects
// DefaultBinary; a zero timeout means 2 minutes per document.
func NewSoffice(binary string, timeout time.Duration) *Soffice {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Soffice{Binary: binary, Timeout: timeout}
}

// Render converts srcPath to a PDF at dstPath and returns its page count.
// Engine failures come back as *RenderError; filesystem problems around
// the conversion are plain errors.
func (s *Soffice) Render(ctx context.Context, srcPath, dstPath string) (int, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return 0, fmt.Errorf("source not readable: %w", err)
	}

	// The converter names its output after the source stem, so give it a
	// private directory and move the result where the caller wants it.
	tmpDir, err := os.MkdirTemp("", "bindery-render-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Binary,
		"--headless",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", tmpDir,
		srcPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, &RenderError{Src: srcPath, Err: fmt.Errorf("%w (output: %s)", err, strings.TrimSpace(string(output)))}
	}

	base := filepath.Base(srcPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	produced := filepath.Join(tmpDir, stem+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return 0, &RenderError{Src: srcPath, Err: fmt.Errorf("converter did not produce expected output: %w", err)}
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := moveFile(produced, dstPath); err != nil {
		return 0, fmt.Errorf("failed to move rendered PDF: %w", err)
	}

	n, err := pageCount(dstPath)
	if err != nil {
		return 0, &RenderError{Src: srcPath, Err: err}
	}
	if n == 0 {
		return 0, &RenderError{Src: srcPath, Err: fmt.Errorf("rendered PDF has no pages")}
	}
	return n, nil
}

// moveFile renames src to dst, falling back to copy+remove across
// filesystems (temp dirs often live on a different mount).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}
