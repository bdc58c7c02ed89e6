package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	// ErrFraming marks a malformed or out-of-bounds record.
	ErrFraming = errors.New("xferdump: framing error")

	// ErrSequence marks a break in the embedded sequence counter.
	ErrSequence = errors.New("xferdump: sequence error")

	// ErrIO marks a destination that could not be opened or written.
	ErrIO = errors.New("xferdump: io error")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("xferdump: invalid configuration")
)

// FramingError reports a bad record at Offset.
type FramingError struct {
	Offset int
	Reason string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error at offset %d: %s", e.Offset, e.Reason)
}

func (e *FramingError) Is(target error) bool { return target == ErrFraming }

// SequenceError reports a counter that did not follow its predecessor.
type SequenceError struct {
	Offset   int
	Expected uint32
	Actual   uint32
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("sequence error at offset %d: expected %08d but got %08d", e.Offset, e.Expected, e.Actual)
}

func (e *SequenceError) Is(target error) bool { return target == ErrSequence }

// IOError reports a failed operation on a destination.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Is(target error) bool { return target == ErrIO }

func (e *IOError) Unwrap() error { return e.Err }
