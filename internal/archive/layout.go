// internal/archive/layout.go
package archive

import (
	"encoding/binary"

	"github.com/tamzrod/cid-monitor/internal/call"
)

// Persisted block layout. One fixed header followed by a packed record
// array; record position is index arithmetic, there are no per-record
// markers. Layout is storage-locked: changing any width invalidates
// every deployed unit's archive.
//
//	header:
//	  magic      u16
//	  backlight  u8 (0/1)
//	  netName    bounded string, cap 32
//	  netKey     bounded string, cap 32
//	  labels     8 x bounded string, cap 15
//	  count      u16
//	  oldest     u16
//	  newest     u16
//	records:
//	  line       u8
//	  when       bounded string, cap 15
//	  number     bounded string, cap 15
//	  name       bounded string, cap 15
//
// A bounded string is one valid-length byte followed by its fixed
// capacity; valid length never exceeds capacity.
const (
	// Magic marks an initialized block. Anything else at offset 0 is a
	// storage inconsistency and triggers reinitialization.
	Magic uint16 = 0xC1D0

	credCap  = 32
	labelCap = call.TextWidth

	offMagic     = 0
	offBacklight = 2
	offNetName   = 3
	offNetKey    = offNetName + 1 + credCap
	offLabels    = offNetKey + 1 + credCap
	offBook      = offLabels + call.LineCount*(1+labelCap)

	// HeaderSize is the full header: settings plus ring bookkeeping.
	HeaderSize = offBook + 6

	// RecordSize is one packed archive record. Duration is deliberately
	// not part of the layout: committing it after every call end would
	// double the write wear for a field the archive never displays.
	RecordSize = 1 + 3*(1+call.TextWidth)
)

// Settings is the device configuration persisted in the header. It is
// rewritten only as a whole block; there is no partial-field durability.
type Settings struct {
	NetworkName      string
	NetworkKey       string
	Labels           [call.LineCount]string
	BacklightAutoOff bool
}

// DefaultSettings is the factory state written on first use or reset.
func DefaultSettings() Settings {
	var s Settings
	for i := range s.Labels {
		s.Labels[i] = "LINE " + string(rune('1'+i))
	}
	return s
}

// encodeHeader packs magic, settings and bookkeeping into one header
// image. Pure: no IO.
func encodeHeader(s Settings, count, oldest, newest int) []byte {
	buf := make([]byte, HeaderSize)

	binary.LittleEndian.PutUint16(buf[offMagic:], Magic)
	if s.BacklightAutoOff {
		buf[offBacklight] = 1
	}
	putBounded(buf[offNetName:], s.NetworkName, credCap)
	putBounded(buf[offNetKey:], s.NetworkKey, credCap)
	for i, label := range s.Labels {
		putBounded(buf[offLabels+i*(1+labelCap):], label, labelCap)
	}
	putBook(buf, count, oldest, newest)
	return buf
}

// decodeHeader unpacks a header image. The magic is NOT checked here;
// the caller decides what an uninitialized block means.
func decodeHeader(buf []byte) (s Settings, count, oldest, newest int) {
	s.BacklightAutoOff = buf[offBacklight] != 0
	s.NetworkName = getBounded(buf[offNetName:], credCap)
	s.NetworkKey = getBounded(buf[offNetKey:], credCap)
	for i := range s.Labels {
		s.Labels[i] = getBounded(buf[offLabels+i*(1+labelCap):], labelCap)
	}
	count = int(binary.LittleEndian.Uint16(buf[offBook:]))
	oldest = int(binary.LittleEndian.Uint16(buf[offBook+2:]))
	newest = int(binary.LittleEndian.Uint16(buf[offBook+4:]))
	return s, count, oldest, newest
}

// putBook writes only the ring bookkeeping trailer into a header image.
func putBook(buf []byte, count, oldest, newest int) {
	binary.LittleEndian.PutUint16(buf[offBook:], uint16(count))
	binary.LittleEndian.PutUint16(buf[offBook+2:], uint16(oldest))
	binary.LittleEndian.PutUint16(buf[offBook+4:], uint16(newest))
}

// encodeRecord packs one archive record. Duration is dropped.
func encodeRecord(rec call.Record) []byte {
	buf := make([]byte, RecordSize)
	buf[0] = byte(rec.Line)
	putBounded(buf[1:], rec.When, call.TextWidth)
	putBounded(buf[1+1+call.TextWidth:], rec.Number, call.TextWidth)
	putBounded(buf[1+2*(1+call.TextWidth):], rec.Name, call.TextWidth)
	return buf
}

// decodeRecord unpacks one archive record. Seconds is always 0: the
// archive never tracks duration.
func decodeRecord(buf []byte) call.Record {
	rec := call.Record{Line: int(buf[0])}
	if rec.Line >= call.LineCount {
		rec.Line = call.FallbackLine
	}
	rec.When = getBounded(buf[1:], call.TextWidth)
	rec.Number = getBounded(buf[1+1+call.TextWidth:], call.TextWidth)
	rec.Name = getBounded(buf[1+2*(1+call.TextWidth):], call.TextWidth)
	return rec
}

// putBounded writes a length byte plus capBytes of payload, truncating
// over-long values. Storage capacity and valid length are distinct.
func putBounded(dst []byte, s string, capBytes int) {
	if len(s) > capBytes {
		s = s[:capBytes]
	}
	dst[0] = byte(len(s))
	copy(dst[1:1+capBytes], s)
}

// getBounded reads a bounded string, clamping a corrupt length byte to
// the field capacity.
func getBounded(src []byte, capBytes int) string {
	n := int(src[0])
	if n > capBytes {
		n = capBytes
	}
	return string(src[1 : 1+n])
}
