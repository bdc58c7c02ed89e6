// Package render formats frame payloads for display.
package render

import (
	"encoding/hex"
	"strings"
)

// Renderer turns a payload into a single line of text.
type Renderer interface {
	Render(payload []byte) string
}

// Hex renders two lowercase hex digits per byte with no separators.
type Hex struct{}

// Render implements Renderer.
func (Hex) Render(payload []byte) string {
	return hex.EncodeToString(payload)
}

// Text renders printable ASCII bytes as themselves and everything else as 0xHH.
type Text struct{}

const hexDigits = "0123456789abcdef"

// Render implements Renderer.
func (Text) Render(payload []byte) string {
	var b strings.Builder
	b.Grow(len(payload))
	for _, c := range payload {
		if IsPrint(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteString("0x")
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

// IsPrint reports whether c is printable ASCII, space included.
func IsPrint(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}
