package sink

import (
	"time"

	"go.etcd.io/bbolt"
)

// Bucket names used by BoltWriter.
const (
	FramesBucket  = "frames"
	CaptureBucket = "capture"
	AllKey        = "all"
)

// BoltWriter stores frames in a bbolt database, one key per frame.
type BoltWriter struct {
	path string
	db   *bbolt.DB
}

// NewBoltWriter opens (or creates) the database at path and its buckets.
func NewBoltWriter(path string) (*BoltWriter, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, ioErr("open", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{FramesBucket, CaptureBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, ioErr("init", path, err)
	}
	return &BoltWriter{path: path, db: db}, nil
}

// WriteAll stores the buffer under capture/all.
func (w *BoltWriter) WriteAll(buf []byte) error {
	return w.put(CaptureBucket, AllKey, buf)
}

// Write stores payload under frames/<key>.
func (w *BoltWriter) Write(payload []byte, key uint32) error {
	return w.put(FramesBucket, KeyName(key), payload)
}

// Get returns a copy of the value stored in bucket under key, or nil.
func (w *BoltWriter) Get(bucket, key string) ([]byte, error) {
	var out []byte
	err := w.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

// Close closes the database.
func (w *BoltWriter) Close() error {
	if err := w.db.Close(); err != nil {
		return ioErr("close", w.path, err)
	}
	return nil
}

func (w *BoltWriter) put(bucket, key string, value []byte) error {
	err := w.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), value)
	})
	if err != nil {
		return ioErr("put", w.path+":"+bucket+"/"+key, err)
	}
	return nil
}
