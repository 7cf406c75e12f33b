package service

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrUndecodableText is returned when a text file yields no usable content.
var ErrUndecodableText = errors.New("Could not decode the text file with any supported encoding")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText turns raw bytes into a string. UTF-8 is tried first, UTF-16
// when a byte order mark says so, then Latin-1, which accepts any input.
func decodeText(data []byte) (string, error) {
	for _, dec := range candidateDecoders(data) {
		text, ok := dec(data)
		if !ok {
			continue
		}
		text = sanitizeText(text)
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", ErrUndecodableText
}

type textDecoder func(data []byte) (string, bool)

func candidateDecoders(data []byte) []textDecoder {
	var decoders []textDecoder
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		decoders = append(decoders, decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)))
	}
	return append(decoders, decodeUTF8, decodeWith(charmap.ISO8859_1))
}

func decodeUTF8(data []byte) (string, bool) {
	data = bytes.TrimPrefix(data, bomUTF8)
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func decodeWith(enc encoding.Encoding) textDecoder {
	return func(data []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}
