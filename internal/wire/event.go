// internal/wire/event.go
package wire

// Kind classifies one decoded packet.
type Kind int

const (
	// KindMalformed is a packet rejected by every grammar. Reason says where.
	KindMalformed Kind = iota
	// KindBootNotice is the unit announcing itself after power-up.
	KindBootNotice
	// KindCallStart is an incoming call arrival.
	KindCallStart
	// KindCallEnd reports the duration of a finished call on a line.
	KindCallEnd
)

// Reason says which stage of decoding rejected a malformed packet.
type Reason int

const (
	// ReasonPreamble: the fixed unit/serial/line preamble did not match.
	ReasonPreamble Reason = 1
	// ReasonBody: the preamble matched but no body grammar did.
	ReasonBody Reason = 2
)

// Event is the result of decoding exactly one packet.
// Exactly which fields are meaningful depends on Kind.
type Event struct {
	Kind Kind

	// Preamble fields, set for every non-malformed kind.
	Unit   string
	Serial string
	Line   int // 0..call.LineCount-1, fallback applied

	// Call-start payload.
	SubType byte   // stored, not validated
	When    string // datetime text
	Number  string // phone number text
	Name    string // caller name text

	// Call-end payload.
	Seconds int

	// Malformed payload.
	Reason Reason
}
