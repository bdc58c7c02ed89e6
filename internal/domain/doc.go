// Package domain contains the core entities and error kinds for xferdump.
//
// It has no dependencies on infrastructure concerns (files, logging, CLI)
// and contains only the framing model.
//
// # Entities
//
//   - [Frame]: one length-prefixed transfer within a capture buffer
//   - [FramingError], [SequenceError], [IOError]: the terminal conditions of a walk
package domain
