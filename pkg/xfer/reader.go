package xfer

import "github.com/bft-labs/xferdump/internal/domain"

// Frame is one length-prefixed transfer. See domain.Frame.
type Frame = domain.Frame

// Error kinds surfaced by a walk.
type (
	FramingError  = domain.FramingError
	SequenceError = domain.SequenceError
)

var (
	ErrFraming  = domain.ErrFraming
	ErrSequence = domain.ErrSequence
)

// Reader yields frames one at a time.
type Reader interface {
	// Next returns the next frame.
	// Returns io.EOF after the last frame.
	// Any other error is terminal and is returned again by later calls.
	Next() (Frame, error)

	// Reset rewinds the reader to the first frame.
	Reset()
}
