// Package encoding provides text encoding utilities for WAD lump and texture names.
package encoding

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// NameSize is the fixed size of lump, flat and texture names.
const NameSize = 8

// CP437ToUTF8 converts DOS code page 437 bytes to a UTF-8 string.
// Returns the bytes as-is if conversion fails.
func CP437ToUTF8(data []byte) string {
	result, _, err := transform.Bytes(charmap.CodePage437.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToCP437 converts a UTF-8 string to code page 437 bytes.
// Characters with no CP437 equivalent are replaced by the encoder's substitute.
func UTF8ToCP437(s string) []byte {
	encoder := charmap.CodePage437.NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// TrimNullBytes removes everything from the first null byte on.
func TrimNullBytes(data []byte) []byte {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		return data[:idx]
	}
	return data
}

// FixedName decodes a null-terminated fixed-size name field.
func FixedName(data []byte) string {
	return CP437ToUTF8(TrimNullBytes(data))
}

// PadName encodes a name into a null-padded 8-byte field.
// Names longer than 8 bytes are truncated.
func PadName(s string) [NameSize]byte {
	var out [NameSize]byte
	copy(out[:], UTF8ToCP437(s))
	return out
}

// NormalizeName upper-cases a name for case-insensitive lookups.
func NormalizeName(name string) string {
	return strings.ToUpper(name)
}
