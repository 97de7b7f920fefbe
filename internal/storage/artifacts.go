// Package storage persists run artifacts and the run history.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout names artifacts down to the second; combined with the
// content hash, distinct runs never collide and identical payloads are
// identifiable.
const timestampLayout = "20060102150405"

// Writer persists the raw fio document and the formatted report into an
// output directory.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// ShortHash returns the first 8 hex characters of the SHA-256 digest of
// payload.
func ShortHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:8]
}

// WriteRaw stores the raw result document, returning the file path.
func (w *Writer) WriteRaw(ts time.Time, payload []byte) (string, error) {
	name := fmt.Sprintf("fio_result_%s_%s.json", ts.Format(timestampLayout), ShortHash(payload))
	return w.write(name, payload)
}

// WriteReport stores the formatted report, returning the file path.
func (w *Writer) WriteReport(ts time.Time, report string) (string, error) {
	payload := []byte(report)
	name := fmt.Sprintf("DiskMark_%s_%s.txt", ts.Format(timestampLayout), ShortHash(payload))
	return w.write(name, payload)
}

func (w *Writer) write(name string, payload []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// HistoryPath is the default location of the run-history database under
// the output directory.
func (w *Writer) HistoryPath() string {
	return filepath.Join(w.Dir, "history.db")
}
