// Package source loads a capture buffer from disk.
//
// Three encodings are understood: raw bytes, hex text as produced by
// Wireshark's "Copy as C array" (or by the rewrite listing), and pcap/pcapng
// captures whose TCP payloads are concatenated in capture order.
package source

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/bft-labs/xferdump/internal/domain"
)

// Format names an input encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatRaw  Format = "raw"
	FormatHex  Format = "hex"
	FormatPcap Format = "pcap"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatRaw, FormatHex, FormatPcap:
		return f, nil
	default:
		return "", fmt.Errorf("unknown input format %q (want auto, raw, hex or pcap)", s)
	}
}

// Options tune how a capture is loaded.
type Options struct {
	// Port keeps only TCP segments from or to this port; 0 keeps all.
	Port uint16
}

// Load reads path and decodes it according to format.
// It returns the buffer and the format actually used.
func Load(path string, format Format, opts Options) ([]byte, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, format, &domain.IOError{Op: "read", Path: path, Err: err}
	}
	return Decode(data, format, opts)
}

// Decode turns file contents into a capture buffer.
func Decode(data []byte, format Format, opts Options) ([]byte, Format, error) {
	if format == FormatAuto || format == "" {
		format = Detect(data)
	}
	switch format {
	case FormatRaw:
		return data, format, nil
	case FormatHex:
		buf, err := ParseHex(data)
		return buf, format, err
	case FormatPcap:
		buf, err := ReadPcap(bytes.NewReader(data), opts.Port)
		return buf, format, err
	default:
		return nil, format, fmt.Errorf("unknown input format %q", format)
	}
}

// Detect guesses the encoding of data.
func Detect(data []byte) Format {
	if isPcap(data) {
		return FormatPcap
	}
	if isText(data) && hexToken.Match(stripComments(data)) {
		return FormatHex
	}
	return FormatRaw
}

func isPcap(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	switch binary.BigEndian.Uint32(data) {
	case 0xa1b2c3d4, 0xd4c3b2a1, 0xa1b23c4d, 0x4d3cb2a1, 0x0a0d0d0a:
		return true
	}
	return false
}

func isText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, c := range data {
		if c == '\n' || c == '\r' || c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
