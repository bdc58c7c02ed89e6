// Package sink persists frame payloads.
//
// Two FrameWriter implementations are provided: DirWriter writes one file per
// frame, BoltWriter stores frames in a bbolt database. Both name a frame by an
// 8-digit lowercase hex key derived from its identifier.
package sink

import (
	"fmt"

	"github.com/bft-labs/xferdump/internal/domain"
)

// FrameWriter persists payloads.
type FrameWriter interface {
	// WriteAll stores the whole capture buffer.
	WriteAll(buf []byte) error

	// Write stores one frame payload under key.
	// Failures are reported as *domain.IOError.
	Write(payload []byte, key uint32) error

	// Close releases resources held by the writer.
	Close() error
}

// KeyName formats a frame key the way destinations are named.
func KeyName(key uint32) string {
	return fmt.Sprintf("%08x", key)
}

func ioErr(op, path string, err error) error {
	return &domain.IOError{Op: op, Path: path, Err: err}
}
