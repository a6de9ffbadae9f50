package zonetable

import (
	"errors"
	"fmt"
)

const (
	// quote delimits string and byte literals in every dialect.
	quote = '"'
	// backslash starts an escape sequence in every dialect.
	backslash = '\\'
	// lowerHex holds the digits used for \xHH escapes.
	lowerHex = "0123456789abcdef"
)

// ErrInvalidEscape is returned by Unescape for text the escaper never produces.
var ErrInvalidEscape = errors.New("invalid escaped literal")

// escapeTable maps every byte value to its literal form.
//
//nolint:gochecknoglobals // Built once and read-only afterwards.
var escapeTable = buildEscapeTable()

func buildEscapeTable() [256]string {
	var table [256]string

	for i := range table {
		b := byte(i)
		if isLiteral(b) {
			table[i] = string(b)
			continue
		}

		table[i] = string([]byte{backslash, 'x', lowerHex[b>>4], lowerHex[b&0x0f]})
	}

	return table
}

// isLiteral reports whether b is written as itself inside a literal.
func isLiteral(b byte) bool {
	return b >= 0x20 && b <= 0x7e && b != quote && b != backslash
}

// EscapeByte returns the literal form of a single byte: the byte itself or a \xHH escape.
func EscapeByte(b byte) string {
	return escapeTable[b]
}

// AppendEscaped appends the escaped form of data to dst, without surrounding quotes.
func AppendEscaped(dst, data []byte) []byte {
	for _, b := range data {
		dst = append(dst, escapeTable[b]...)
	}

	return dst
}

// Escape returns the escaped form of data, without surrounding quotes.
func Escape(data []byte) string {
	return string(AppendEscaped(make([]byte, 0, len(data)), data))
}

// Unescape reverses Escape. It accepts exactly the text Escape can produce:
// literal bytes that need no escape and lowercase \xHH sequences for all others.
func Unescape(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != backslash {
			if !isLiteral(c) {
				return nil, fmt.Errorf("%w: unescaped byte 0x%02x at offset %d", ErrInvalidEscape, c, i)
			}

			out = append(out, c)

			continue
		}

		if i+3 >= len(s) || s[i+1] != 'x' {
			return nil, fmt.Errorf("%w: truncated or unknown escape at offset %d", ErrInvalidEscape, i)
		}

		hi, okHi := hexValue(s[i+2])
		lo, okLo := hexValue(s[i+3])

		if !okHi || !okLo {
			return nil, fmt.Errorf("%w: bad hex digits at offset %d", ErrInvalidEscape, i)
		}

		b := hi<<4 | lo
		if isLiteral(b) {
			return nil, fmt.Errorf("%w: byte 0x%02x must not be escaped at offset %d", ErrInvalidEscape, b, i)
		}

		out = append(out, b)
		i += 3
	}

	return out, nil
}

// hexValue decodes a lowercase hex digit.
func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}
