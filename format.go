package htmlconv

import (
	"fmt"
	"strings"
)

// Format identifies the kind of document a conversion produces.
type Format string

const (
	// FormatPDF is a paginated PDF document rendered by a headless browser.
	FormatPDF Format = "pdf"
	// FormatPPTX is an Office Open XML slide deck.
	FormatPPTX Format = "pptx"
)

// Formats lists every supported output format.
var Formats = []Format{FormatPDF, FormatPPTX}

// ParseFormat returns the Format named by s. Matching is exact, as it is on
// the wire: "PDF" is not accepted.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPDF, FormatPPTX:
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type of documents in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	return "application/octet-stream"
}

// Label returns the upper-case display name, e.g. "PDF".
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

func (f Format) String() string {
	return string(f)
}
