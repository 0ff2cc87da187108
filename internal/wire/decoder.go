// internal/wire/decoder.go
package wire

import (
	"bytes"

	"github.com/tamzrod/cid-monitor/internal/call"
)

// Wire grammar geometry. All offsets are absolute within one packet;
// every field is ASCII at a fixed position.
const (
	offUnit   = 5  // after "^^<U>"
	offSerial = 14 // after "<S>"
	offLine   = 21 // after "$"
	offBody   = 24 // after the trailing preamble space

	unitWidth   = 6
	serialWidth = 6
	lineWidth   = 2

	bootLen     = 52
	callLenMin  = 70
	callLenMax  = 83
	offDuration = 28 // 4 ignored bytes in call-start, seconds in call-end
	offClass    = 32 // " G " or " B "
	offSubType  = 36 // 1 byte after literal "A"
	offWhen     = 38
	offNumber   = offWhen + call.TextWidth
	offName     = offNumber + call.TextWidth
)

// Decode classifies one raw packet. Pure: no state survives the call.
//
// The preamble is matched first; any mismatch there rejects the whole
// packet with ReasonPreamble. Body grammars are then tried in fixed
// priority order (boot notice, call start, call end), each restarting
// from right after the preamble. A partial match inside one grammar is
// never treated as consumed input by the next.
func Decode(buf []byte) Event {
	c := cursor{buf: buf}

	if !c.literal([]byte("^^<U>")) {
		return Event{Kind: KindMalformed, Reason: ReasonPreamble}
	}
	unit := c.field(unitWidth)
	if !c.literal([]byte("<S>")) {
		return Event{Kind: KindMalformed, Reason: ReasonPreamble}
	}
	serial := c.field(serialWidth)
	if !c.literal([]byte("$")) {
		return Event{Kind: KindMalformed, Reason: ReasonPreamble}
	}
	lineText := c.field(lineWidth)
	if !c.literal([]byte(" ")) {
		return Event{Kind: KindMalformed, Reason: ReasonPreamble}
	}

	ev := Event{
		Unit:   textField(unit),
		Serial: textField(serial),
		Line:   parseLine(lineText),
	}

	// Candidate body grammars, fixed priority order.
	if decodeBootNotice(buf, &ev) {
		return ev
	}
	if decodeCallStart(buf, &ev) {
		return ev
	}
	if decodeCallEnd(buf, &ev) {
		return ev
	}

	return Event{Kind: KindMalformed, Reason: ReasonBody}
}

// decodeBootNotice matches the power-up announcement: exact length and a
// 'V' marker immediately after the preamble.
func decodeBootNotice(buf []byte, ev *Event) bool {
	if len(buf) != bootLen || buf[offBody] != 'V' {
		return false
	}
	ev.Kind = KindBootNotice
	return true
}

// decodeCallStart matches the call arrival body:
// "I S " + 4 ignored duration bytes + " G "|" B " + "A" + subtype + " " +
// three fixed-width text fields. Short packets zero-fill the text tail.
func decodeCallStart(buf []byte, ev *Event) bool {
	if len(buf) < callLenMin || len(buf) > callLenMax {
		return false
	}
	if !bytes.Equal(buf[offBody:offDuration], []byte("I S ")) {
		return false
	}
	// 4 duration bytes at offDuration are carried by the device but not
	// interpreted here (ignored payload, observed to be zero in practice).
	cls := buf[offClass : offClass+3]
	if !bytes.Equal(cls, []byte(" G ")) && !bytes.Equal(cls, []byte(" B ")) {
		return false
	}
	if buf[offClass+3] != 'A' {
		return false
	}
	if buf[offSubType+1] != ' ' {
		return false
	}

	ev.Kind = KindCallStart
	ev.SubType = buf[offSubType]
	ev.When = textField(fieldAt(buf, offWhen, call.TextWidth))
	ev.Number = textField(fieldAt(buf, offNumber, call.TextWidth))
	ev.Name = textField(fieldAt(buf, offName, call.TextWidth))
	return true
}

// decodeCallEnd matches the call completion body: "I E " + 4 decimal
// digits of duration. A non-numeric duration is malformed, not a
// fallthrough: no later grammar can claim an "I E " packet.
func decodeCallEnd(buf []byte, ev *Event) bool {
	if len(buf) < callLenMin || len(buf) > callLenMax {
		return false
	}
	if !bytes.Equal(buf[offBody:offDuration], []byte("I E ")) {
		return false
	}

	seconds := 0
	for _, b := range buf[offDuration : offDuration+4] {
		if b < '0' || b > '9' {
			ev.Kind = KindMalformed
			ev.Reason = ReasonBody
			return true
		}
		seconds = seconds*10 + int(b-'0')
	}

	ev.Kind = KindCallEnd
	ev.Seconds = seconds
	return true
}

// cursor is the single linear position used while matching the preamble.
type cursor struct {
	buf []byte
	pos int
}

// literal consumes lit if it matches at the cursor; a miss (including
// running past the buffer) leaves the packet rejected.
func (c *cursor) literal(lit []byte) bool {
	if c.pos+len(lit) > len(c.buf) {
		return false
	}
	if !bytes.Equal(c.buf[c.pos:c.pos+len(lit)], lit) {
		return false
	}
	c.pos += len(lit)
	return true
}

// field consumes width bytes, zero-filling anything past the buffer end.
func (c *cursor) field(width int) []byte {
	out := fieldAt(c.buf, c.pos, width)
	c.pos += width
	return out
}

// fieldAt copies a fixed-width field, zero-filled past the buffer end so
// short packets degrade to empty sub-fields instead of reading out of
// bounds.
func fieldAt(buf []byte, off, width int) []byte {
	out := make([]byte, width)
	if off < len(buf) {
		copy(out, buf[off:])
	}
	return out
}

// textField converts a raw field to its display string, cut at the first
// zero-fill byte.
func textField(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

// parseLine converts the 2-byte decimal line identifier to a line index.
// Unparseable or out-of-range values map to the last line; this is the
// documented fallback, not an error.
func parseLine(text []byte) int {
	n := 0
	for _, b := range text {
		if b < '0' || b > '9' {
			return call.FallbackLine
		}
		n = n*10 + int(b-'0')
	}
	if n >= call.LineCount {
		return call.FallbackLine
	}
	return n
}
