// Package charset normalizes catalog file encodings to UTF-8. French
// spreadsheet exports arrive either as UTF-8 (often with a BOM) or as
// Windows-1252 / ISO-8859-1 legacy text.
package charset

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingISO88591    Encoding = "iso-8859-1"
)

// DetectEncoding detects the encoding of a byte buffer. Valid UTF-8 is
// always preferred; anything else is treated as Windows-1252, which is a
// superset of ISO-8859-1 on the printable range.
func DetectEncoding(data []byte) Encoding {
	// Check for UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return EncodingUTF8
	}

	if utf8.Valid(data) {
		return EncodingUTF8
	}

	return EncodingWindows1252
}

// Decode converts a byte buffer from the specified encoding to UTF-8.
// Valid UTF-8 input is returned as-is regardless of the requested encoding,
// so a mislabelled file is never double-decoded.
func Decode(data []byte, enc Encoding) ([]byte, error) {
	if enc == "" {
		enc = DetectEncoding(data)
	}

	if utf8.Valid(data) {
		return data, nil
	}

	var cm *charmap.Charmap
	switch enc {
	case EncodingISO88591:
		cm = charmap.ISO8859_1
	default:
		cm = charmap.Windows1252
	}

	decoded, _, err := transform.Bytes(cm.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// ToUTF8Reader wraps a reader with a decoder to convert to UTF-8
func ToUTF8Reader(r io.Reader, enc Encoding) (io.Reader, error) {
	var decoder encoding.Encoding

	switch enc {
	case EncodingWindows1252:
		decoder = charmap.Windows1252
	case EncodingISO88591:
		decoder = charmap.ISO8859_1
	default:
		return r, nil
	}

	return transform.NewReader(r, decoder.NewDecoder()), nil
}
