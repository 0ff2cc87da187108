// internal/device/device.go
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/tamzrod/cid-monitor/internal/archive"
	"github.com/tamzrod/cid-monitor/internal/call"
	"github.com/tamzrod/cid-monitor/internal/compose"
	"github.com/tamzrod/cid-monitor/internal/display"
	"github.com/tamzrod/cid-monitor/internal/listener"
	"github.com/tamzrod/cid-monitor/internal/wire"
)

// PollInterval is the device scheduling tick: every wait in the device
// is a spin of this loop, so the tick is also the cooperative yield
// point for input polling.
const PollInterval = 20 * time.Millisecond

// dwell is how long a transient view (diagnostics) stays up before the
// monitor view returns.
const dwell = 5 * time.Second

// visibleCalls is how many history rows the monitor view renders.
const visibleCalls = 8

// Panel is the optional interactive front panel: display plus the two
// controls, the keyboard stream, and the view keys.
type Panel interface {
	display.Display
	compose.Buttons
	compose.ByteSource

	// Poll drains pending input once per tick.
	Poll()
	DiagRequested() bool
	SetupRequested() bool
	QuitRequested() bool
}

type mode int

const (
	modeMonitor mode = iota
	modeDiag
	modeEdit
)

// Device owns all appliance state: both call stores, the bad-packet
// slot and the view state machine. Everything runs on one logical
// actor; no locking discipline is needed.
type Device struct {
	store *call.Store
	arch  *archive.Archive
	bad   wire.BadPacket

	disp  display.Display
	panel Panel
	clock clockwork.Clock

	mode      mode
	diagUntil time.Time

	// Settings edit flow.
	composer    *compose.Composer
	editStage   int
	editing     archive.Settings
	backlight   bool
	blCycleWas  bool
	blAcceptWas bool
}

// New wires a device. panel may be nil for headless operation; disp
// must not be.
func New(store *call.Store, arch *archive.Archive, disp display.Display, panel Panel, clock clockwork.Clock) *Device {
	return &Device{
		store: store,
		arch:  arch,
		disp:  disp,
		panel: panel,
		clock: clock,
	}
}

// Boot restores durable state. A reset gesture (both controls held at
// power-up) reinitializes the archive instead of loading it.
func (d *Device) Boot(resetGesture bool) error {
	if resetGesture {
		log.Info().Msg("device: reset gesture, clearing archive")
		if err := d.arch.Reset(); err != nil {
			return err
		}
	} else if err := d.arch.Load(d.store); err != nil {
		return err
	}
	d.render()
	return nil
}

// Run is the device main loop: decoded packets and the scheduling tick,
// one select, one actor, until ctx ends or the panel asks to quit.
func (d *Device) Run(ctx context.Context, msgs <-chan listener.Message) error {
	ticker := d.clock.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := d.HandleMessage(msg); err != nil {
				log.Error().Err(err).Msg("device: packet handling failed")
			}

		case <-ticker.Chan():
			d.Tick()
			if d.panel != nil && d.panel.QuitRequested() {
				return nil
			}
		}
	}
}

// HandleMessage applies one decoded packet to the stores. Malformed
// input and unmatched ends are recoverable by design: the device keeps
// serving its last-known-good state.
func (d *Device) HandleMessage(msg listener.Message) error {
	switch msg.Event.Kind {
	case wire.KindBootNotice:
		log.Info().Str("serial", msg.Event.Serial).Str("from", msg.From).
			Msg("device: unit boot notice")
		return nil

	case wire.KindCallStart:
		rec := call.Record{
			When:   msg.Event.When,
			Number: msg.Event.Number,
			Name:   msg.Event.Name,
			Line:   msg.Event.Line,
		}
		d.store.Add(rec)
		// Durable before displayed: the archive commit is synchronous.
		if err := d.arch.Add(rec); err != nil {
			return fmt.Errorf("device: archive call: %w", err)
		}
		d.render()
		return nil

	case wire.KindCallEnd:
		if !d.store.SetDuration(msg.Event.Line, msg.Event.Seconds) {
			// No call identifier on the wire: best effort, drop it.
			log.Debug().Int("line", msg.Event.Line).
				Msg("device: call end with no matching start")
			return nil
		}
		d.render()
		return nil

	default:
		d.bad.Record(msg.Raw, msg.Event.Reason, msg.From, msg.At)
		log.Warn().Int("reason", int(msg.Event.Reason)).Str("from", msg.From).
			Msg("device: malformed packet")
		return nil
	}
}

// Tick runs one scheduling tick of the front-panel state machine.
func (d *Device) Tick() {
	if d.panel == nil {
		return
	}
	d.panel.Poll()

	switch d.mode {
	case modeMonitor:
		switch {
		case d.panel.DiagRequested():
			d.showDiag()
		case d.panel.SetupRequested():
			d.startEdit()
		}

	case modeDiag:
		if !d.clock.Now().Before(d.diagUntil) || d.panel.DiagRequested() {
			d.mode = modeMonitor
			d.render()
		}

	case modeEdit:
		if d.editStage >= stageBacklight {
			d.tickBacklightStage()
		} else if d.composer.Step() {
			d.advanceEdit()
		} else {
			d.renderEdit()
		}
	}
}

// showDiag renders the single-slot bad packet record for one dwell.
func (d *Device) showDiag() {
	d.mode = modeDiag
	d.diagUntil = d.clock.Now().Add(dwell)

	d.disp.Clear()
	for i, row := range d.bad.Render() {
		d.disp.WriteRow(i, row)
	}
	d.disp.Flush()
}

// Edit flow stages: network name, network key, the eight line labels,
// then the backlight toggle, then one atomic settings commit.
const (
	stageNetName   = 0
	stageNetKey    = 1
	stageLabel0    = 2
	stageBacklight = stageLabel0 + call.LineCount
)

func (d *Device) startEdit() {
	d.mode = modeEdit
	d.editing = d.arch.Settings()
	d.editStage = stageNetName
	d.backlight = d.editing.BacklightAutoOff
	d.newComposer(d.editing.NetworkName)
	d.renderEdit()
}

// advanceEdit stores the finished field and rolls to the next stage.
func (d *Device) advanceEdit() {
	value, _ := d.composer.Value()
	switch d.editStage {
	case stageNetName:
		d.editing.NetworkName = value
	case stageNetKey:
		d.editing.NetworkKey = value
	default:
		d.editing.Labels[d.editStage-stageLabel0] = value
	}

	d.editStage++
	if d.editStage >= stageBacklight {
		// Last stage has no composer: cycle flips the flag, accept
		// commits the whole header in one atomic write. Seed the edge
		// state so a still-held accept does not commit instantly.
		d.composer = nil
		d.blCycleWas, d.blAcceptWas = d.panel.CycleHeld(), d.panel.AcceptHeld()
		d.renderBacklightStage()
		return
	}

	prior := d.editing.NetworkKey
	if d.editStage >= stageLabel0 {
		prior = d.editing.Labels[d.editStage-stageLabel0]
	}
	d.newComposer(prior)
	d.renderEdit()
}

// tickBacklightStage runs the flag toggle stage: edge-detected, since
// the panel exposes level state.
func (d *Device) tickBacklightStage() {
	cycle, accept := d.panel.CycleHeld(), d.panel.AcceptHeld()

	if cycle && !d.blCycleWas {
		d.backlight = !d.backlight
		d.renderBacklightStage()
	}
	if accept && !d.blAcceptWas {
		d.finishEdit()
	}
	d.blCycleWas, d.blAcceptWas = cycle, accept
}

func (d *Device) finishEdit() {
	d.editing.BacklightAutoOff = d.backlight
	if err := d.arch.SaveSettings(d.editing); err != nil {
		log.Error().Err(err).Msg("device: settings commit failed")
	} else {
		log.Info().Msg("device: settings committed")
	}
	d.mode = modeMonitor
	d.render()
}

func (d *Device) newComposer(prior string) {
	d.composer = compose.New(display.ComposeWidth, prior, d.panel, d.panel, d.clock)
}

var editStageNames = [...]string{"NETWORK NAME", "NETWORK KEY",
	"LABEL LINE 1", "LABEL LINE 2", "LABEL LINE 3", "LABEL LINE 4",
	"LABEL LINE 5", "LABEL LINE 6", "LABEL LINE 7", "LABEL LINE 8",
	"BACKLIGHT OFF"}

func (d *Device) renderEdit() {
	d.disp.Clear()
	d.disp.WriteRow(0, "SETUP: "+editStageNames[d.editStage])
	d.disp.WriteRow(1, d.composer.Preview())
	d.disp.Flush()
}

func (d *Device) renderBacklightStage() {
	state := "NO"
	if d.backlight {
		state = "YES"
	}
	d.disp.Clear()
	d.disp.WriteRow(0, "SETUP: "+editStageNames[stageBacklight])
	d.disp.WriteRow(1, state)
	d.disp.Flush()
}

// render draws the monitor view: newest calls first, one row each.
func (d *Device) render() {
	d.disp.Clear()
	d.disp.WriteRow(0, fmt.Sprintf("CALLS %d/%d", d.store.Len(), call.StoreCapacity))

	labels := d.arch.Settings().Labels
	for i, rec := range d.store.Recent(visibleCalls) {
		label := labels[rec.Line]
		row := fmt.Sprintf("%-15s %s %s %s", label, rec.When, rec.Number, rec.Name)
		if rec.Seconds > 0 {
			row += fmt.Sprintf(" %d:%02d", rec.Seconds/60, rec.Seconds%60)
		}
		d.disp.WriteRow(1+i, row)
	}
	d.disp.Flush()
}
