package domain

// PrefixSize is the size of the big-endian length field that starts every frame.
// The declared length covers the prefix itself.
const PrefixSize = 4

// Frame is one length-prefixed record within a capture buffer.
// Payload is a view into the buffer and must not be modified.
type Frame struct {
	// Index is the 0-based position of the frame in the walk
	Index int

	// Offset is the byte offset of the length prefix in the buffer
	Offset int

	// Length is the declared record size, prefix included
	Length int

	// Payload is buffer[Offset : Offset+Length]
	Payload []byte

	// Sequence is the embedded counter, valid only when Sequenced is set
	Sequence  uint32
	Sequenced bool
}

// Body returns the payload without its length prefix.
func (f Frame) Body() []byte {
	if len(f.Payload) < PrefixSize {
		return nil
	}
	return f.Payload[PrefixSize:]
}
