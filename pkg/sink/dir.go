package sink

import (
	"os"
	"path/filepath"
)

const allFileName = "all.dat"

// DirWriter writes d_<key>.dat files into a directory.
type DirWriter struct {
	dir string
}

// NewDirWriter creates the output directory if needed.
func NewDirWriter(dir string) (*DirWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioErr("mkdir", dir, err)
	}
	return &DirWriter{dir: dir}, nil
}

// WriteAll writes the buffer to all.dat.
func (w *DirWriter) WriteAll(buf []byte) error {
	return w.writeFile(filepath.Join(w.dir, allFileName), buf)
}

// Write writes payload to d_<key>.dat.
func (w *DirWriter) Write(payload []byte, key uint32) error {
	return w.writeFile(w.Path(key), payload)
}

// Path returns the file a frame with key is written to.
func (w *DirWriter) Path(key uint32) string {
	return filepath.Join(w.dir, "d_"+KeyName(key)+".dat")
}

// Close is a no-op; files are closed after each write.
func (w *DirWriter) Close() error {
	return nil
}

func (w *DirWriter) writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return ioErr("open", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return ioErr("write", path, err)
	}
	if err := f.Close(); err != nil {
		return ioErr("close", path, err)
	}
	return nil
}
