package htmlconv

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// htmlSniff matches a doctype declaration after optional white space, or an
// opening <html> tag anywhere on the first line. White space is the Unicode
// set plus a byte order mark; RE2's \s alone is ASCII only.
var htmlSniff = regexp.MustCompile(
	`(?i)^([\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]*<!doctype html>|.*<html[\s\v\p{Zs}>])`)

// DecodeHTML decodes a base64 payload into HTML text.
//
// Whitespace inside the payload is ignored so that line-wrapped base64 is
// accepted, and unpadded input is decoded with the raw alphabet. Invalid
// UTF-8 sequences are replaced with U+FFFD. The result must pass [IsHTML];
// otherwise an error wrapping [ErrNotHTML] is returned.
func DecodeHTML(encoded string) (string, error) {
	data, err := decodeBase64(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	text := strings.ToValidUTF8(string(data), "�")
	if !IsHTML(text) {
		return "", ErrNotHTML
	}
	return text, nil
}

// IsHTML reports whether text looks like an HTML document. Nothing else is
// checked: scripts and malformed markup pass.
func IsHTML(text string) bool {
	return htmlSniff.MatchString(text)
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return -1
		}
		return r
	}, s)

	if len(s)%4 != 0 && !strings.HasSuffix(s, "=") {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return base64.StdEncoding.DecodeString(s)
}
