// Package xfer walks a capture buffer made of length-prefixed transfers.
//
// Every transfer starts with a 4-byte big-endian length that covers the
// prefix and the bytes that follow it. The walker decodes that length,
// yields a [Frame] viewing the record and advances to the next one until the
// buffer is exhausted. Any inconsistency stops the walk.
//
// # Usage
//
//	w := xfer.NewWalker(buf, xfer.WithSequenceCheck(xfer.DefaultSequenceOffset))
//	for {
//	    frame, err := w.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // Process frame...
//	}
//
// A walk is restartable: [Walker.Reset] rewinds to the first frame and
// forgets the sequence expectation. The buffer is never written, so several
// walkers may share it.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package xfer
