// Package state persists a summary of the last walk.
//
// The summary is written to status.json in the state directory with an
// atomic write (temp file, then rename).
package state
