// internal/compose/compose.go
package compose

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Alphabet is the ordered glyph set the cycle button walks through,
// with wraparound.
const Alphabet = " ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-./:@"

// Typematic behavior of the cycle button.
const (
	// HoldThreshold is how long the cycle button must stay held before
	// auto-repeat kicks in.
	HoldThreshold = 600 * time.Millisecond
	// RepeatInterval is the glyph advance period while auto-repeating.
	RepeatInterval = 150 * time.Millisecond
)

// Control byte semantics of the stream source.
const (
	bsCR  = '\r'
	bsLF  = '\n'
	bsBS  = 0x08
	bsDEL = 0x7f
)

// ByteSource is the stream input: a keyboard-style channel that can
// also echo typed characters back.
type ByteSource interface {
	// Available reports whether a byte can be read without blocking.
	Available() bool
	// ReadByte returns the next byte. Call only after Available.
	ReadByte() (byte, error)
	// WriteByte echoes one byte back to the channel.
	WriteByte(b byte) error
}

// Buttons is the discrete input: two momentary controls exposed as
// level-readable pressed state. Edge detection happens here, not in
// the hardware.
type Buttons interface {
	CycleHeld() bool
	AcceptHeld() bool
}

// Composer edits one bounded string, one position at a time, merging
// both input sources. It is a tick state machine: the owner calls Step
// once per scheduling tick and never blocks inside it, so every spin is
// also a cooperative yield point for the rest of the device loop.
//
// Per tick the stream source is resolved first; a pending byte preempts
// button handling for that instant, so a keystroke is never delayed by
// the auto-repeat fast path.
type Composer struct {
	stream  ByteSource
	buttons Buttons
	clock   clockwork.Clock

	max   int
	prior string

	buf     []byte
	pos     int
	glyph   int
	touched bool

	cycleWasHeld  bool
	acceptWasHeld bool
	heldSince     time.Time
	lastRepeat    time.Time

	done   bool
	result string
}

// New starts an edit of a string bounded to max bytes. prior is the
// existing value, offered unchanged by the keep-existing shortcut.
func New(max int, prior string, stream ByteSource, buttons Buttons, clock clockwork.Clock) *Composer {
	if max <= 0 {
		panic("compose: max length must be > 0")
	}
	return &Composer{
		stream:  stream,
		buttons: buttons,
		clock:   clock,
		max:     max,
		prior:   prior,
		buf:     make([]byte, max),
	}
}

// Step runs one scheduling tick and reports whether the edit finished.
func (c *Composer) Step() bool {
	if c.done {
		return true
	}

	if c.stream != nil && c.stream.Available() {
		c.stepStream()
		return c.done
	}

	if c.buttons != nil {
		c.stepButtons()
	}
	return c.done
}

// Value returns the edited string once Step has reported completion.
func (c *Composer) Value() (string, bool) {
	return c.result, c.done
}

// Preview returns the accepted prefix plus the candidate glyph at the
// cursor, for display while editing.
func (c *Composer) Preview() string {
	if c.done {
		return c.result
	}
	return string(c.buf[:c.pos]) + string(Alphabet[c.glyph])
}

// Pos returns the cursor position, for cursor rendering.
func (c *Composer) Pos() int { return c.pos }

// stepStream drains every byte pending on the stream source.
func (c *Composer) stepStream() {
	for c.stream.Available() && !c.done {
		b, err := c.stream.ReadByte()
		if err != nil {
			return
		}

		switch b {
		case bsCR, bsLF:
			// Terminator: accept everything typed so far.
			c.finish(string(c.buf[:c.pos]))

		case bsBS, bsDEL:
			// Retract and blank one position. At position 0 this is a
			// no-op on content: the cursor cannot go negative.
			if c.pos > 0 {
				c.pos--
				c.buf[c.pos] = 0
				c.touched = true
				_ = c.stream.WriteByte(b)
			}

		default:
			c.buf[c.pos] = b
			c.pos++
			c.touched = true
			_ = c.stream.WriteByte(b)
			if c.pos == c.max {
				c.finish(string(c.buf))
			}
		}
	}
}

// stepButtons resolves the two discrete controls for this tick.
func (c *Composer) stepButtons() {
	now := c.clock.Now()

	cycle := c.buttons.CycleHeld()
	accept := c.buttons.AcceptHeld()

	switch {
	case cycle && !c.cycleWasHeld:
		// Press edge: one glyph step, arm the typematic timer.
		c.advanceGlyph()
		c.heldSince = now
		c.lastRepeat = now
		c.touched = true

	case cycle && c.cycleWasHeld:
		// Still held: auto-repeat past the threshold.
		if now.Sub(c.heldSince) >= HoldThreshold && now.Sub(c.lastRepeat) >= RepeatInterval {
			c.advanceGlyph()
			c.lastRepeat = now
		}
	}
	c.cycleWasHeld = cycle

	if accept && !c.acceptWasHeld {
		c.acceptEdge()
	}
	c.acceptWasHeld = accept
}

// acceptEdge handles one press of the accept control.
func (c *Composer) acceptEdge() {
	// Keep-existing shortcut: untouched edit, first position, non-empty
	// prior value. The prior is returned byte-for-byte.
	if c.pos == 0 && !c.touched && c.prior != "" {
		c.finish(c.prior)
		return
	}

	c.buf[c.pos] = Alphabet[c.glyph]
	c.pos++
	c.glyph = 0
	c.touched = true
	if c.pos == c.max {
		c.finish(string(c.buf))
	}
}

func (c *Composer) advanceGlyph() {
	c.glyph = (c.glyph + 1) % len(Alphabet)
}

func (c *Composer) finish(result string) {
	c.result = result
	c.done = true
}
