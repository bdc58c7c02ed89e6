package state

import "time"

// State summarizes the last walk of an input.
// Watch mode compares Size and ModTime to skip inputs that have not changed.
type State struct {
	// Input is the path that was walked
	Input string `json:"input"`

	// Format is the decoded input format
	Format string `json:"format"`

	// Size and ModTime identify the input revision
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`

	// Options fingerprints the walk settings the input was walked with
	Options string `json:"options"`

	// Frames is the number of frames walked successfully
	Frames int `json:"frames"`

	// Bytes is the buffer size after decoding
	Bytes int `json:"bytes"`

	// LastSequence is the last counter seen when validation was enabled
	LastSequence *uint32 `json:"last_sequence,omitempty"`

	// Error is the terminal error of the walk, empty on success
	Error string `json:"error,omitempty"`

	// CompletedAt is when the walk finished
	CompletedAt time.Time `json:"completed_at"`
}

// IsEmpty returns true if no walk has been recorded.
func (s State) IsEmpty() bool {
	return s.Input == ""
}

// SameRevision reports whether the same input revision was already walked
// successfully with the same options. A failed walk never matches.
func (s State) SameRevision(input string, size int64, modTime time.Time, options string) bool {
	return !s.IsEmpty() && s.Error == "" &&
		s.Input == input && s.Size == size && s.ModTime.Equal(modTime) &&
		s.Options == options
}
