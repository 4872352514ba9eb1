package encoding

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw mail part or document bytes to a UTF-8 string.
//
// A declared charset (e.g. from a Content-Type header) is trusted when it is known.
// Otherwise the encoding is detected:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Valid UTF-8 is returned as-is
//  3. Heuristic detection via chardet
//  4. Fallback to Windows-1252
func Decode(raw []byte, charset string) (string, error) {
	if enc := lookup(charset); enc != nil {
		return decodeWith(enc, raw)
	}

	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), raw)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), raw)
	case utf8.Valid(raw):
		return string(raw), nil
	}

	sample := raw
	if len(sample) > 4096 {
		sample = sample[:4096]
	}

	if result, err := chardet.NewTextDetector().DetectBest(sample); err == nil {
		if enc := lookup(result.Charset); enc != nil {
			return decodeWith(enc, raw)
		}
	}

	return decodeWith(charmap.Windows1252, raw)
}

func lookup(charset string) xencoding.Encoding {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		return nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil
	}

	return enc
}

func decodeWith(enc xencoding.Encoding, raw []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}

	return string(out), nil
}

// CharsetReader decodes input from a named charset, for mime.WordDecoder.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc := lookup(charset)
	if enc == nil {
		return nil, fmt.Errorf("unknown charset %q", charset)
	}

	return enc.NewDecoder().Reader(input), nil
}
