package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultMaxBodyBytes is the request body limit used when none is given.
const DefaultMaxBodyBytes = 10 << 20

var (
	// ErrBodyTooLarge is returned by ParseJSON when the body exceeds the limit.
	ErrBodyTooLarge = errors.New("request body too large")
	// ErrInvalidJSON is returned by ParseJSON for malformed bodies.
	ErrInvalidJSON = errors.New("invalid JSON")
)

// ParseJSON decodes the request body into dest, reading at most limit
// bytes (DefaultMaxBodyBytes when limit <= 0).
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	return nil
}
