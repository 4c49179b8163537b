// Package resume reads the resume PDF that the agent uploads to applications.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrInvalid is returned when the resume path is not an existing PDF file.
var ErrInvalid = errors.New("resume must be an existing PDF file")

// Resume is the file handed to the agent plus whatever text could be extracted from it.
type Resume struct {
	Path  string
	Pages int
	Text  string
	// ExtractErr records why text extraction failed; the file is still usable for upload.
	ExtractErr error
}

// Load checks the resume file and extracts its plain text.
// Extraction failures are recorded on the result, not returned.
func Load(path string) (*Resume, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resume path: %w", err)
	}

	r := &Resume{Path: abs}
	r.Pages, r.Text, r.ExtractErr = extractText(abs)
	return r, nil
}

// Excerpt returns the extracted text cut to at most limit bytes on a rune boundary.
func (r *Resume) Excerpt(limit int) string {
	text := strings.TrimSpace(r.Text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return strings.TrimSpace(text[:cut]) + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func extractText(path string) (pages int, text string, err error) {
	defer func() {
		// the pdf reader panics on some malformed cross-reference tables
		if rec := recover(); rec != nil {
			pages, text, err = 0, "", fmt.Errorf("pdf extraction panicked: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	plain, err := reader.GetPlainText()
	if err != nil {
		return reader.NumPage(), "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return reader.NumPage(), "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return reader.NumPage(), collapseWhitespace(buf.String()), nil
}

// collapseWhitespace drops blank lines and trims each remaining line.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
