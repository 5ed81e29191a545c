package htmlconv

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
//
// Errors caused by the caller's input all wrap [ErrInvalidInput], so a
// transport layer can classify them with a single [errors.Is] check.
var (
	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("htmlconv: converter is closed")

	// ErrInvalidInput is the parent of every input validation error.
	ErrInvalidInput = errors.New("htmlconv: invalid input")

	// ErrDecode is returned when the payload is not valid base64.
	ErrDecode = fmt.Errorf("%w: invalid base64 encoding", ErrInvalidInput)

	// ErrNotHTML is returned when the decoded payload does not look like HTML.
	ErrNotHTML = fmt.Errorf("%w: only HTML documents are accepted", ErrInvalidInput)

	// ErrUnsupportedFormat is returned for output formats other than pdf and pptx.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrInvalidInput)

	// ErrBrowserNotFound is returned when no Chrome or Chromium installation
	// can be located. It signals a broken environment rather than a failed
	// conversion.
	ErrBrowserNotFound = errors.New("htmlconv: no browser installation found")

	// ErrRender wraps failures while producing an artifact: browser launch,
	// navigation, PDF export or slide-deck serialization.
	ErrRender = errors.New("htmlconv: render failed")

	// ErrStorage wraps failures while persisting an artifact.
	ErrStorage = errors.New("htmlconv: storing artifact failed")
)
