package xfer

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bft-labs/xferdump/internal/domain"
)

// PrefixSize is the size of the length field at the start of each frame.
const PrefixSize = domain.PrefixSize

// DecodeLength reads the unsigned big-endian 32-bit value at off.
func DecodeLength(buf []byte, off int) (uint32, error) {
	if off < 0 || off+PrefixSize > len(buf) {
		return 0, &FramingError{
			Offset: off,
			Reason: fmt.Sprintf("truncated length prefix: %d bytes left, need %d", max(len(buf)-off, 0), PrefixSize),
		}
	}
	return binary.BigEndian.Uint32(buf[off : off+PrefixSize]), nil
}

// Option configures a Walker.
type Option func(*Walker)

// WithSequenceCheck enables validation of the counter stored at offset
// within each frame.
func WithSequenceCheck(offset int) Option {
	return func(w *Walker) {
		w.seq = NewSequenceChecker(offset)
	}
}

var _ Reader = (*Walker)(nil)

// Walker implements Reader over an in-memory buffer.
type Walker struct {
	buf []byte
	off int
	idx int
	seq *SequenceChecker
	err error
}

// NewWalker creates a Walker positioned at the start of buf.
func NewWalker(buf []byte, opts ...Option) *Walker {
	w := &Walker{buf: buf}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Next returns the next frame, or io.EOF once the buffer is exhausted.
func (w *Walker) Next() (Frame, error) {
	if w.err != nil {
		return Frame{}, w.err
	}
	if w.off >= len(w.buf) {
		return Frame{}, io.EOF
	}

	n, err := DecodeLength(w.buf, w.off)
	if err != nil {
		return Frame{}, w.fail(err)
	}

	// Compare in uint64 so values past 2^31 never wrap.
	length := uint64(n)
	remaining := uint64(len(w.buf) - w.off)
	switch {
	case length < PrefixSize:
		return Frame{}, w.fail(&FramingError{
			Offset: w.off,
			Reason: fmt.Sprintf("declared length %d is smaller than the %d-byte prefix", length, PrefixSize),
		})
	case length > remaining:
		return Frame{}, w.fail(&FramingError{
			Offset: w.off,
			Reason: fmt.Sprintf("declared length %d exceeds remaining %d bytes", length, remaining),
		})
	}

	end := w.off + int(length)
	frame := Frame{
		Index:   w.idx,
		Offset:  w.off,
		Length:  int(length),
		Payload: w.buf[w.off:end:end],
	}

	if w.seq != nil {
		counter, err := w.seq.Check(frame.Payload)
		if err != nil {
			return Frame{}, w.fail(withOffset(err, frame.Offset))
		}
		frame.Sequence = counter
		frame.Sequenced = true
	}

	w.off = end
	w.idx++
	return frame, nil
}

// Reset rewinds the walker and clears any terminal error.
func (w *Walker) Reset() {
	w.off = 0
	w.idx = 0
	w.err = nil
	if w.seq != nil {
		w.seq.Reset()
	}
}

func (w *Walker) fail(err error) error {
	w.err = err
	return err
}

// withOffset stamps the frame offset onto errors raised by the checker,
// which only sees the payload.
func withOffset(err error, off int) error {
	switch e := err.(type) {
	case *FramingError:
		e.Offset = off
	case *SequenceError:
		e.Offset = off
	}
	return err
}

// Walk calls fn for every frame in buf, stopping at the first error.
func Walk(buf []byte, fn func(Frame) error, opts ...Option) error {
	w := NewWalker(buf, opts...)
	for {
		frame, err := w.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
}

// Frames collects every frame in buf.
func Frames(buf []byte, opts ...Option) ([]Frame, error) {
	var frames []Frame
	err := Walk(buf, func(f Frame) error {
		frames = append(frames, f)
		return nil
	}, opts...)
	return frames, err
}
