package htmlconv

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Result holds a rendered document together with its format.
//
// The underlying bytes are never modified, so a Result may be shared
// between goroutines.
type Result struct {
	data   []byte
	format Format
	// pages is the slide count for decks built by BuildDeck;
	// zero means unknown.
	pages int
}

// NewResult wraps already-rendered bytes, e.g. a PDF produced elsewhere.
func NewResult(data []byte, format Format) *Result {
	return &Result{data: data, format: format}
}

// Format returns the document format.
func (r *Result) Format() Format {
	return r.format
}

// Bytes returns the raw document content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the document encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the document content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full document to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the document to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the document in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Pages returns the page count of a PDF or the slide count of a deck.
// Documents are parsed on every call unless the count is already known.
func (r *Result) Pages() (int, error) {
	if r.format == FormatPPTX {
		if r.pages > 0 {
			return r.pages, nil
		}
		return r.countSlides()
	}
	return PDFPageCount(r.Reader())
}

func (r *Result) countSlides() (int, error) {
	dir, err := os.MkdirTemp("", "htmlconv-deck-*")
	if err != nil {
		return 0, fmt.Errorf("htmlconv: counting slides: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "deck.pptx")
	if err := r.WriteToFile(path, 0o600); err != nil {
		return 0, fmt.Errorf("htmlconv: counting slides: %w", err)
	}
	return DeckSlideCount(path)
}

var disablePDFConfig sync.Once

// PDFPageCount parses a PDF and returns its page count.
func PDFPageCount(rs io.ReadSeeker) (int, error) {
	disablePDFConfig.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("htmlconv: counting PDF pages: %w", err)
	}
	return n, nil
}
