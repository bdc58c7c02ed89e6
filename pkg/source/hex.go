package source

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	hexToken     = regexp.MustCompile(`\b0[xX](\w*)`)
	hexByte      = regexp.MustCompile(`^[0-9a-fA-F]{1,2}$`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
)

// ParseHex extracts every 0xHH token from a C array style dump, in order.
// Comments are ignored so annotations cannot inject bytes. A 0x token that is
// not one or two hex digits is an error rather than a silently dropped byte.
func ParseHex(data []byte) ([]byte, error) {
	matches := hexToken.FindAllSubmatch(stripComments(data), -1)
	out := make([]byte, 0, len(matches))
	for _, m := range matches {
		if !hexByte.Match(m[1]) {
			return nil, fmt.Errorf("malformed hex token %q", m[0])
		}
		v, err := strconv.ParseUint(string(m[1]), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("parse hex token %q: %w", m[0], err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func stripComments(data []byte) []byte {
	data = blockComment.ReplaceAll(data, nil)
	return lineComment.ReplaceAll(data, nil)
}
