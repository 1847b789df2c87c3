package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsbrief/internal/ports"
)

// FileWriter persists each rendered digest as a dated HTML file for review.
type FileWriter struct {
	dir string
}

var _ ports.DigestWriter = (*FileWriter)(nil)

// NewFileWriter targets an output directory; empty means the working dir.
func NewFileWriter(dir string) *FileWriter {
	if dir == "" {
		dir = "."
	}
	return &FileWriter{dir: dir}
}

// Write stores the digest as newsletter_<YYYYMMDD>.html and returns the path.
func (w *FileWriter) Write(runDate time.Time, digest string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("newsletter_%s.html", runDate.Format("20060102"))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(digest), 0o644); err != nil {
		return "", fmt.Errorf("write digest file: %w", err)
	}
	return path, nil
}
