package xfer

// Version information for the xfer module.
const (
	// Version is the current version of the xfer module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
