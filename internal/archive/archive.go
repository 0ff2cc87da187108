// internal/archive/archive.go
package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tamzrod/cid-monitor/internal/call"
	"github.com/tamzrod/cid-monitor/internal/ring"
	"github.com/tamzrod/cid-monitor/internal/storage"
)

// Archive is the durable call history. Capacity is derived from the
// storage block: whatever fits after the header. Every append is
// committed before it is considered durable; duration updates are never
// mirrored here (write-wear trade-off: call arrivals cost a commit,
// call completions do not).
type Archive struct {
	store    storage.Store
	ring     *ring.Ring[call.Record]
	settings Settings
}

// New sizes the archive ring against the storage block. The block must
// fit the header plus at least one record.
func New(store storage.Store) (*Archive, error) {
	capacity := (store.Size() - HeaderSize) / RecordSize
	if capacity < 1 {
		return nil, fmt.Errorf(
			"archive: storage block of %d bytes too small (need >= %d)",
			store.Size(), HeaderSize+RecordSize,
		)
	}
	return &Archive{
		store:    store,
		ring:     ring.New[call.Record](capacity),
		settings: DefaultSettings(),
	}, nil
}

// Cap returns how many records fit in durable storage.
func (a *Archive) Cap() int { return a.ring.Cap() }

// Len returns how many records are held.
func (a *Archive) Len() int { return a.ring.Len() }

// Settings returns the currently loaded device settings.
func (a *Archive) Settings() Settings { return a.settings }

// Load restores the archive from storage and replays the held records,
// oldest first, into the volatile store as initial display content.
//
// A missing magic marker or inconsistent bookkeeping is a recoverable
// storage inconsistency: the archive reinitializes itself empty with
// default settings and commits. It is never fatal.
func (a *Archive) Load(into *call.Store) error {
	var magicBuf [2]byte
	if err := a.store.ReadAt(offMagic, magicBuf[:]); err != nil {
		return err
	}
	if binary.LittleEndian.Uint16(magicBuf[:]) != Magic {
		log.Warn().Msg("archive: no valid header, initializing empty")
		return a.Reset()
	}

	header := make([]byte, HeaderSize)
	if err := a.store.ReadAt(0, header); err != nil {
		return err
	}
	settings, count, oldest, newest := decodeHeader(header)

	if err := a.ring.Restore(oldest, newest, count); err != nil {
		log.Warn().Err(err).Msg("archive: corrupt bookkeeping, reinitializing")
		return a.Reset()
	}
	a.settings = settings

	if count == 0 {
		return nil
	}

	// Replay oldest -> newest so walk order assigns ages correctly.
	recBuf := make([]byte, RecordSize)
	idx := oldest
	for n := 0; n < count; n++ {
		if err := a.store.ReadAt(recordOffset(idx), recBuf); err != nil {
			return err
		}
		rec := decodeRecord(recBuf)
		a.ring.Set(idx, rec)
		if into != nil {
			into.Add(rec)
		}
		idx = (idx + 1) % a.ring.Cap()
	}

	log.Info().Int("records", count).Msg("archive: loaded")
	return nil
}

// Reset reinitializes the block: default settings, empty ring, full
// header rewrite, commit.
func (a *Archive) Reset() error {
	a.settings = DefaultSettings()
	if err := a.ring.Restore(0, 0, 0); err != nil {
		return err
	}
	if err := a.store.WriteAt(0, encodeHeader(a.settings, 0, 0, 0)); err != nil {
		return err
	}
	return a.store.Commit()
}

// Add appends a call record and makes it durable before returning:
// record slot first, then the bookkeeping trailer, then one commit.
// The record's duration is dropped (never part of the layout).
func (a *Archive) Add(rec call.Record) error {
	rec.Seconds = 0
	idx := a.ring.Append(rec)

	if err := a.store.WriteAt(recordOffset(idx), encodeRecord(rec)); err != nil {
		return err
	}

	var book [6]byte
	binary.LittleEndian.PutUint16(book[0:], uint16(a.ring.Len()))
	binary.LittleEndian.PutUint16(book[2:], uint16(a.ring.Oldest()))
	binary.LittleEndian.PutUint16(book[4:], uint16(a.ring.Newest()))
	if err := a.store.WriteAt(offBook, book[:]); err != nil {
		return err
	}

	return a.store.Commit()
}

// SaveSettings rewrites the whole header as one block and commits.
// Ring bookkeeping is carried along unchanged, so there is no window
// where settings and bookkeeping disagree.
func (a *Archive) SaveSettings(s Settings) error {
	a.settings = s

	count, oldest, newest := 0, 0, 0
	if a.ring.Len() > 0 {
		count, oldest, newest = a.ring.Len(), a.ring.Oldest(), a.ring.Newest()
	}
	if err := a.store.WriteAt(0, encodeHeader(s, count, oldest, newest)); err != nil {
		return err
	}
	return a.store.Commit()
}

// recordOffset computes the slot position for a ring index.
func recordOffset(idx int) int {
	return HeaderSize + idx*RecordSize
}
