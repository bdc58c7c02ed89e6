package xfer

import (
	"encoding/binary"
	"fmt"
)

// DefaultSequenceOffset is where the counter sits inside a frame, counted
// from the start of the length prefix.
const DefaultSequenceOffset = 23

// SequenceChecker verifies that consecutive counters increase by one.
// The first counter seen seeds the expectation. A checker belongs to one walk.
type SequenceChecker struct {
	offset   int
	seeded   bool
	expected uint32
}

// NewSequenceChecker creates a checker reading the counter at offset.
func NewSequenceChecker(offset int) *SequenceChecker {
	return &SequenceChecker{offset: offset}
}

// Check reads the counter from payload and validates it against the
// previous one. It returns the counter read.
func (c *SequenceChecker) Check(payload []byte) (uint32, error) {
	if c.offset < 0 || len(payload) < c.offset+4 {
		return 0, &FramingError{
			Reason: fmt.Sprintf("frame of %d bytes too short for sequence counter at byte %d", len(payload), c.offset),
		}
	}
	counter := binary.BigEndian.Uint32(payload[c.offset : c.offset+4])
	if c.seeded && counter != c.expected {
		return counter, &SequenceError{Expected: c.expected, Actual: counter}
	}
	c.seeded = true
	c.expected = counter + 1
	return counter, nil
}

// Expected returns the next counter value and whether a counter has been seen.
func (c *SequenceChecker) Expected() (uint32, bool) {
	return c.expected, c.seeded
}

// Reset forgets the expectation.
func (c *SequenceChecker) Reset() {
	c.seeded = false
	c.expected = 0
}
