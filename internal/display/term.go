// internal/display/term.go
package display

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// TermPanel emulates the appliance front panel on a host terminal:
// the text display plus the two momentary controls and the keyboard
// byte stream.
//
// Key mapping: F1 is the cycle control, F2 the accept control, plain
// typing feeds the byte-stream source, F5 shows the bad-packet
// diagnostic, F8 enters settings edit, Esc/Ctrl-C quits.
//
// Terminals report key presses, not key state, so CycleHeld and
// AcceptHeld are one-tick pulses: each press (or OS auto-repeat of a
// held key) registers as one edge. The composer's hold-to-repeat path
// never fires here; glyph repeat rides on the OS auto-repeat rate
// instead.
type TermPanel struct {
	screen tcell.Screen

	cycleLatch  bool
	acceptLatch bool
	keys        []byte

	diagLatch  bool
	setupLatch bool
	quit       bool

	backlight bool
}

// OpenTerm initializes the terminal screen.
func OpenTerm() (*TermPanel, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("display: create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("display: init screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	return &TermPanel{screen: screen, backlight: true}, nil
}

// Poll drains pending terminal events into the latches and key buffer.
// Called once per device tick; never blocks.
func (p *TermPanel) Poll() {
	p.cycleLatch = false
	p.acceptLatch = false
	p.diagLatch = false
	p.setupLatch = false

	for p.screen.HasPendingEvent() {
		ev := p.screen.PollEvent()
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}

		switch key.Key() {
		case tcell.KeyF1:
			p.cycleLatch = true
		case tcell.KeyF2:
			p.acceptLatch = true
		case tcell.KeyF5:
			p.diagLatch = true
		case tcell.KeyF8:
			p.setupLatch = true
		case tcell.KeyEscape, tcell.KeyCtrlC:
			p.quit = true
		case tcell.KeyEnter:
			p.keys = append(p.keys, '\r')
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			p.keys = append(p.keys, 0x08)
		case tcell.KeyRune:
			r := key.Rune()
			if r < 0x80 {
				p.keys = append(p.keys, byte(r))
			}
		}
	}
}

// Buttons contract: the latches emulate a short momentary press.

func (p *TermPanel) CycleHeld() bool  { return p.cycleLatch }
func (p *TermPanel) AcceptHeld() bool { return p.acceptLatch }

// DiagRequested reports the diagnostic key, one tick wide.
func (p *TermPanel) DiagRequested() bool { return p.diagLatch }

// SetupRequested reports the settings-edit key, one tick wide.
func (p *TermPanel) SetupRequested() bool { return p.setupLatch }

// QuitRequested reports Esc/Ctrl-C.
func (p *TermPanel) QuitRequested() bool { return p.quit }

// ByteSource contract for the keyboard stream.

func (p *TermPanel) Available() bool { return len(p.keys) > 0 }

func (p *TermPanel) ReadByte() (byte, error) {
	if len(p.keys) == 0 {
		return 0, fmt.Errorf("display: no key pending")
	}
	b := p.keys[0]
	p.keys = p.keys[1:]
	return b, nil
}

func (p *TermPanel) WriteByte(byte) error {
	// Echo is visible through the display itself.
	return nil
}

// Display contract.

func (p *TermPanel) WriteRow(row int, text string) {
	width, _ := p.screen.Size()
	style := tcell.StyleDefault
	if !p.backlight {
		style = style.Dim(true)
	}
	for x := 0; x < width; x++ {
		ch := ' '
		if x < len(text) {
			ch = rune(text[x])
		}
		p.screen.SetContent(x, row, ch, nil, style)
	}
}

func (p *TermPanel) Clear() { p.screen.Clear() }

func (p *TermPanel) Flush() { p.screen.Show() }

func (p *TermPanel) SetBacklight(on bool) { p.backlight = on }

// Close restores the terminal.
func (p *TermPanel) Close() { p.screen.Fini() }
