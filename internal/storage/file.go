// internal/storage/file.go
package storage

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// FileStore backs the durable block with a single file. Commit maps to
// Sync. The filesystem is abstract so tests run on an in-memory fs.
type FileStore struct {
	f    afero.File
	size int
}

// OpenFile opens (or creates) the backing file and fixes the block size.
// A new or short file is extended to size with zero bytes, which reads
// back as an uninitialized block (no validity marker).
func OpenFile(fs afero.Fs, path string, size int) (*FileStore, error) {
	if size <= 0 {
		return nil, fmt.Errorf("storage: block size must be > 0, got %d", size)
	}

	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	if info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("storage: extend %s to %d bytes: %w", path, size, err)
		}
	}

	return &FileStore{f: f, size: size}, nil
}

func (s *FileStore) ReadAt(off int, p []byte) error {
	if err := s.checkRange(off, len(p)); err != nil {
		return err
	}
	if _, err := s.f.ReadAt(p, int64(off)); err != nil {
		return fmt.Errorf("storage: read %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

func (s *FileStore) WriteAt(off int, p []byte) error {
	if err := s.checkRange(off, len(p)); err != nil {
		return err
	}
	if _, err := s.f.WriteAt(p, int64(off)); err != nil {
		return fmt.Errorf("storage: write %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

func (s *FileStore) Commit() error {
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

func (s *FileStore) Size() int { return s.size }

// Close releases the backing file. Uncommitted writes are lost.
func (s *FileStore) Close() error {
	return s.f.Close()
}

func (s *FileStore) checkRange(off, n int) error {
	if off < 0 || off+n > s.size {
		return fmt.Errorf("storage: range [%d,%d) outside block of %d bytes", off, off+n, s.size)
	}
	return nil
}
