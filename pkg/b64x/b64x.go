// Package b64x implements the URL-safe base64 framing used by every segment
// of a signed token and by stored credential records.
//
// Encoding uses the URL-safe alphabet without padding. Decoding restores the
// padding before handing the text to a strict standard decoder, so a segment
// only ever decodes to one byte sequence.
package b64x

import (
	"encoding/base64"
	"fmt"
	"strings"
)

var strictStd = base64.StdEncoding.Strict()

// DecodeError reports a segment that could not be decoded.
type DecodeError struct {
	// Offset is the byte offset of the first offending character, or -1
	// when the text as a whole failed to decode.
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("b64x: illegal character at offset %d", e.Offset)
	}
	return fmt.Sprintf("b64x: invalid base64: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode returns the URL-safe, unpadded base64 form of b.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode reverses Encode. Trailing '=' padding is tolerated but never
// required.
func Decode(s string) ([]byte, error) {
	var sb strings.Builder
	sb.Grow(len(s) + 3)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-':
			sb.WriteByte('+')
		case c == '_':
			sb.WriteByte('/')
		case c == '=', isAlnum(c):
			sb.WriteByte(c)
		default:
			return nil, &DecodeError{Offset: i}
		}
	}

	for sb.Len()%4 != 0 {
		sb.WriteByte('=')
	}

	out, err := strictStd.DecodeString(sb.String())
	if err != nil {
		return nil, &DecodeError{Offset: -1, Err: err}
	}
	return out, nil
}

func isAlnum(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
