// internal/wire/badpacket.go
package wire

import (
	"fmt"
	"strings"
	"time"
)

// BadPacket is the single diagnostic slot for the most recent malformed
// packet. It is overwritten, never accumulated; only the total count
// survives across overwrites.
type BadPacket struct {
	Count  int
	Raw    []byte
	Reason Reason
	From   string
	At     time.Time
}

// Record overwrites the slot with the latest offender.
func (b *BadPacket) Record(raw []byte, reason Reason, from string, at time.Time) {
	b.Count++
	b.Raw = append(b.Raw[:0], raw...)
	b.Reason = reason
	b.From = from
	b.At = at
}

// Render produces the on-demand diagnostic view: a hex + printable dump
// of the stored packet, one 16-byte row per line.
func (b *BadPacket) Render() []string {
	if b.Count == 0 {
		return []string{"no bad packets"}
	}

	out := []string{
		fmt.Sprintf("bad packets: %d  reason: %d", b.Count, b.Reason),
		fmt.Sprintf("from %s at %s", b.From, b.At.Format("15:04:05")),
	}

	for off := 0; off < len(b.Raw); off += 16 {
		end := off + 16
		if end > len(b.Raw) {
			end = len(b.Raw)
		}
		row := b.Raw[off:end]

		var hexCol, txtCol strings.Builder
		for _, c := range row {
			fmt.Fprintf(&hexCol, "%02x ", c)
			if c >= 0x20 && c < 0x7f {
				txtCol.WriteByte(c)
			} else {
				txtCol.WriteByte('.')
			}
		}
		out = append(out, fmt.Sprintf("%-48s %s", hexCol.String(), txtCol.String()))
	}
	return out
}
