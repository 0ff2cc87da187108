// internal/storage/storage.go
package storage

// Store is the durable medium: a fixed-size, byte-addressed block with
// an explicit commit. Writes have no durability guarantee until Commit
// returns nil; a restart may then observe any mix of committed state
// only.
type Store interface {
	// ReadAt fills p from offset off. Short reads are errors.
	ReadAt(off int, p []byte) error
	// WriteAt stores p at offset off. Not durable until Commit.
	WriteAt(off int, p []byte) error
	// Commit makes all prior writes visible across a restart.
	Commit() error
	// Size is the fixed block size in bytes.
	Size() int
}
