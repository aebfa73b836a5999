package extractor

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ReadLines reads the whole input and splits it into decoded lines.
func ReadLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return SplitLines(data), nil
}

// SplitLines decodes data permissively and splits it on \n, \r\n and \r.
// A trailing line terminator does not produce an extra empty line.
func SplitLines(data []byte) []string {
	text := DecodeText(data)
	if text == "" {
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")

	return strings.Split(text, "\n")
}

// DecodeText decodes UTF-8 (or UTF-16 when a byte order mark says so) and
// drops undecodable bytes instead of failing.
func DecodeText(data []byte) string {
	decoder := transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)

	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}

	return string(out)
}
