// internal/display/display.go
package display

import "github.com/rs/zerolog/log"

// ComposeWidth is the maximum length of any string the device composes
// on screen. It is the only piece of display geometry the core knows.
const ComposeWidth = 16

// Display receives rendered text content only. Implementations own all
// geometry and clipping.
type Display interface {
	// WriteRow replaces the text of one row.
	WriteRow(row int, text string)
	// Clear blanks every row.
	Clear()
	// Flush makes the written rows visible.
	Flush()
	// SetBacklight turns the backlight on or off. Timing policy lives
	// with the caller.
	SetBacklight(on bool)
}

// LogDisplay is the headless sink: rows go to the log on Flush. Used
// when the device runs without an attached panel, and in tests.
type LogDisplay struct {
	rows   map[int]string
	maxRow int
}

func NewLogDisplay() *LogDisplay {
	return &LogDisplay{rows: make(map[int]string), maxRow: -1}
}

func (d *LogDisplay) WriteRow(row int, text string) {
	d.rows[row] = text
	if row > d.maxRow {
		d.maxRow = row
	}
}

func (d *LogDisplay) Clear() {
	d.rows = make(map[int]string)
	d.maxRow = -1
}

func (d *LogDisplay) Flush() {
	for row := 0; row <= d.maxRow; row++ {
		if text, ok := d.rows[row]; ok && text != "" {
			log.Debug().Int("row", row).Str("text", text).Msg("display")
		}
	}
}

func (d *LogDisplay) SetBacklight(on bool) {
	log.Debug().Bool("on", on).Msg("display: backlight")
}

// Row returns what was last written, for assertions.
func (d *LogDisplay) Row(row int) string { return d.rows[row] }
