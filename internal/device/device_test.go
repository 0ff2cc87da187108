// internal/device/device_test.go
package device

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/cid-monitor/internal/archive"
	"github.com/tamzrod/cid-monitor/internal/call"
	"github.com/tamzrod/cid-monitor/internal/display"
	"github.com/tamzrod/cid-monitor/internal/listener"
	"github.com/tamzrod/cid-monitor/internal/storage"
	"github.com/tamzrod/cid-monitor/internal/wire"
)

func newTestDevice(t *testing.T, panel Panel) (*Device, *call.Store, *archive.Archive) {
	t.Helper()

	st, err := storage.OpenFile(afero.NewMemMapFs(), "/archive.bin", archive.HeaderSize+16*archive.RecordSize)
	require.NoError(t, err)
	arch, err := archive.New(st)
	require.NoError(t, err)

	store := call.NewStore()
	d := New(store, arch, display.NewLogDisplay(), panel, clockwork.NewFakeClock())
	require.NoError(t, d.Boot(false))
	return d, store, arch
}

func msg(ev wire.Event, raw string) listener.Message {
	return listener.Message{
		Event: ev,
		Raw:   []byte(raw),
		From:  "10.0.0.9:3520",
		At:    time.Date(2026, 6, 19, 10, 40, 0, 0, time.UTC),
	}
}

func startEvent(line int, number string) wire.Event {
	return wire.Event{
		Kind:   wire.KindCallStart,
		Line:   line,
		When:   "06/19 10:40 PM ",
		Number: number,
		Name:   "CALLER NAME    ",
	}
}

// TestEndToEnd_StartStartEnd is the canonical scenario: two calls on
// different lines, then an end event for the first line.
func TestEndToEnd_StartStartEnd(t *testing.T) {
	d, store, arch := newTestDevice(t, nil)

	require.NoError(t, d.HandleMessage(msg(startEvent(1, "CALL A"), "")))
	require.NoError(t, d.HandleMessage(msg(startEvent(3, "CALL B"), "")))
	require.NoError(t, d.HandleMessage(msg(wire.Event{
		Kind: wire.KindCallEnd, Line: 1, Seconds: 123,
	}, "")))

	require.Equal(t, 2, store.Len())
	recent := store.Recent(2)
	assert.Equal(t, "CALL B", recent[0].Number)
	assert.Zero(t, recent[0].Seconds, "line 3 call is still open")
	assert.Equal(t, "CALL A", recent[1].Number)
	assert.Equal(t, 123, recent[1].Seconds)

	// Both starts are durable; neither archive record carries duration.
	assert.Equal(t, 2, arch.Len())
}

func TestHandleMessage_UnmatchedEndIsDropped(t *testing.T) {
	d, store, _ := newTestDevice(t, nil)

	require.NoError(t, d.HandleMessage(msg(startEvent(2, "CALL"), "")))
	require.NoError(t, d.HandleMessage(msg(wire.Event{
		Kind: wire.KindCallEnd, Line: 5, Seconds: 60,
	}, "")))

	assert.Zero(t, store.Recent(1)[0].Seconds)
}

func TestHandleMessage_BootNoticeTouchesNoStore(t *testing.T) {
	d, store, arch := newTestDevice(t, nil)

	require.NoError(t, d.HandleMessage(msg(wire.Event{
		Kind: wire.KindBootNotice, Serial: "SN1234",
	}, "")))

	assert.Zero(t, store.Len())
	assert.Zero(t, arch.Len())
}

func TestHandleMessage_MalformedFillsSingleSlot(t *testing.T) {
	d, _, _ := newTestDevice(t, nil)

	require.NoError(t, d.HandleMessage(msg(wire.Event{
		Kind: wire.KindMalformed, Reason: wire.ReasonPreamble,
	}, "first")))
	require.NoError(t, d.HandleMessage(msg(wire.Event{
		Kind: wire.KindMalformed, Reason: wire.ReasonBody,
	}, "second")))

	assert.Equal(t, 2, d.bad.Count)
	assert.Equal(t, []byte("second"), d.bad.Raw, "slot holds only the most recent offender")
	assert.Equal(t, wire.ReasonBody, d.bad.Reason)
}

func TestBoot_ResetGestureClearsArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	size := archive.HeaderSize + 8*archive.RecordSize

	st, err := storage.OpenFile(fs, "/archive.bin", size)
	require.NoError(t, err)
	arch, err := archive.New(st)
	require.NoError(t, err)
	require.NoError(t, arch.Reset())
	require.NoError(t, arch.Add(call.Record{Line: 0, Number: "555-0001"}))

	// Power cycle with the reset gesture held.
	st2, err := storage.OpenFile(fs, "/archive.bin", size)
	require.NoError(t, err)
	arch2, err := archive.New(st2)
	require.NoError(t, err)

	store := call.NewStore()
	d := New(store, arch2, display.NewLogDisplay(), nil, clockwork.NewFakeClock())
	require.NoError(t, d.Boot(true))

	assert.Zero(t, arch2.Len())
	assert.Zero(t, store.Len())
}

// fakePanel drives the front-panel state machine from tests.
type fakePanel struct {
	*display.LogDisplay

	cycle, accept bool
	keys          []byte

	diag, setup, quit bool
}

func newFakePanel() *fakePanel {
	return &fakePanel{LogDisplay: display.NewLogDisplay()}
}

func (p *fakePanel) Poll() {}

func (p *fakePanel) CycleHeld() bool { return p.cycle }

func (p *fakePanel) AcceptHeld() bool { return p.accept }

func (p *fakePanel) DiagRequested() bool {
	d := p.diag
	p.diag = false
	return d
}

func (p *fakePanel) SetupRequested() bool {
	s := p.setup
	p.setup = false
	return s
}
func (p *fakePanel) QuitRequested() bool { return p.quit }

func (p *fakePanel) Available() bool { return len(p.keys) > 0 }
func (p *fakePanel) ReadByte() (byte, error) {
	b := p.keys[0]
	p.keys = p.keys[1:]
	return b, nil
}
func (p *fakePanel) WriteByte(byte) error { return nil }

func TestEditFlow_StreamTypedSettingsCommit(t *testing.T) {
	panel := newFakePanel()
	d, _, arch := newTestDevice(t, panel)

	panel.setup = true
	d.Tick() // enters edit mode on the network-name stage

	// Type every string field through the stream source.
	fields := []string{"SHOPNET", "secret", "FRONT", "BACK", "DOCK",
		"YARD", "LAB", "STORE", "GATE", "SPARE"}
	for _, f := range fields {
		panel.keys = append([]byte(f), '\r')
		d.Tick()
	}

	// Backlight stage: one cycle press flips the flag, accept commits.
	panel.cycle = true
	d.Tick()
	panel.cycle = false
	d.Tick()
	panel.accept = true
	d.Tick()
	panel.accept = false

	s := arch.Settings()
	assert.Equal(t, "SHOPNET", s.NetworkName)
	assert.Equal(t, "secret", s.NetworkKey)
	assert.Equal(t, "FRONT", s.Labels[0])
	assert.Equal(t, "SPARE", s.Labels[7])
	assert.True(t, s.BacklightAutoOff)
}

// TestEditFlow_SecondStageSeedsPriorKey guards the roll from the
// network-name stage: the next composer must start from the stored
// network key, not a label slot.
func TestEditFlow_SecondStageSeedsPriorKey(t *testing.T) {
	panel := newFakePanel()
	d, _, arch := newTestDevice(t, panel)

	s := arch.Settings()
	s.NetworkKey = "OLDKEY"
	require.NoError(t, arch.SaveSettings(s))

	panel.setup = true
	d.Tick()

	panel.keys = []byte("NET\r")
	d.Tick() // rolls to the network-key stage

	require.Equal(t, stageNetKey, d.editStage)

	// Untouched accept keeps the stored key.
	panel.accept = true
	d.Tick()
	panel.accept = false
	d.Tick()
	require.Equal(t, stageLabel0, d.editStage)

	for i := 0; i < 8; i++ {
		panel.keys = []byte{'\r'}
		d.Tick()
	}
	panel.accept = true
	d.Tick()

	got := arch.Settings()
	assert.Equal(t, "NET", got.NetworkName)
	assert.Equal(t, "OLDKEY", got.NetworkKey)
}

func TestEditFlow_KeepExistingValue(t *testing.T) {
	panel := newFakePanel()
	d, _, arch := newTestDevice(t, panel)

	s := arch.Settings()
	s.NetworkName = "KEEP ME"
	require.NoError(t, arch.SaveSettings(s))

	panel.setup = true
	d.Tick()

	// Accept on the untouched first position keeps the prior name.
	panel.accept = true
	d.Tick()
	panel.accept = false
	d.Tick()

	// Finish the remaining fields with the terminator alone (empty
	// typed prefix).
	for i := 0; i < 9; i++ {
		panel.keys = []byte{'\r'}
		d.Tick()
	}
	panel.accept = true
	d.Tick()
	panel.accept = false

	got := arch.Settings()
	assert.Equal(t, "KEEP ME", got.NetworkName)
	assert.Equal(t, "", got.NetworkKey)
}
