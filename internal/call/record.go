// internal/call/record.go
package call

// Display text widths are protocol-locked: the wire format carries three
// fixed 15-byte fields per call.
const (
	TextWidth = 15

	// Lines are numbered 0..7. Unparseable or out-of-range line
	// identifiers on the wire map to the last line.
	LineCount    = 8
	FallbackLine = LineCount - 1
)

// Record is one observed call.
// Seconds == 0 means the call has not ended (or duration is not tracked
// for this copy of the record).
type Record struct {
	When    string // datetime text, TextWidth bytes
	Number  string // phone number text, TextWidth bytes
	Name    string // caller name text, TextWidth bytes
	Line    int    // 0..LineCount-1
	Seconds int    // call duration, 0 = not ended
}
