// cmd/cidmon/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/tamzrod/cid-monitor/internal/archive"
	"github.com/tamzrod/cid-monitor/internal/call"
	"github.com/tamzrod/cid-monitor/internal/compose"
	"github.com/tamzrod/cid-monitor/internal/config"
	"github.com/tamzrod/cid-monitor/internal/device"
	"github.com/tamzrod/cid-monitor/internal/display"
	"github.com/tamzrod/cid-monitor/internal/listener"
	"github.com/tamzrod/cid-monitor/internal/logging"
	"github.com/tamzrod/cid-monitor/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: cidmon <config.yaml> [--reset]")
	}

	cfgPath := os.Args[1]
	resetGesture := len(os.Args) > 2 && os.Args[2] == "--reset"

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	if err := logging.Init(cfg.Monitor.Log); err != nil {
		log.Fatal().Err(err).Msg("logging init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Durable state
	// --------------------

	store, err := storage.OpenFile(afero.NewOsFs(), cfg.Monitor.Storage.Path, cfg.Monitor.Storage.SizeBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("storage open failed")
	}
	defer store.Close()

	arch, err := archive.New(store)
	if err != nil {
		log.Fatal().Err(err).Msg("archive init failed")
	}

	// --------------------
	// Front panel
	// --------------------

	var (
		disp  display.Display
		panel device.Panel
	)
	if cfg.Monitor.Display.Mode == "term" {
		term, termErr := display.OpenTerm()
		if termErr != nil {
			log.Fatal().Err(termErr).Msg("terminal panel open failed")
		}
		defer term.Close()

		disp, panel = term, device.Panel(term)

		// A serial device replaces the terminal keys as the byte
		// stream; terminal buttons stay active.
		if dev := cfg.Monitor.Input.SerialDevice; dev != "" {
			src, serErr := compose.OpenSerial(dev, cfg.Monitor.Input.BaudRate, nil)
			if serErr != nil {
				log.Fatal().Err(serErr).Str("device", dev).Msg("serial input open failed")
			}
			defer src.Close()
			panel = &serialPanel{TermPanel: term, src: src}
		}
	} else {
		disp = display.NewLogDisplay()
	}

	// --------------------
	// Wire the pipeline
	// --------------------

	calls := call.NewStore()
	dev := device.New(calls, arch, disp, panel, clockwork.NewRealClock())
	if err := dev.Boot(resetGesture); err != nil {
		log.Fatal().Err(err).Msg("boot failed")
	}

	lst, err := listener.Open(ctx, cfg.Monitor.Listen.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("listener open failed")
	}

	msgs := make(chan listener.Message)
	go lst.Run(ctx, msgs)

	log.Info().Str("addr", cfg.Monitor.Listen.Addr).Int("archive_cap", arch.Cap()).
		Msg("cidmon up")

	if err := dev.Run(ctx, msgs); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("device loop failed")
	}
}

// serialPanel is a terminal front panel whose byte stream comes from a
// serial port instead of the terminal keyboard.
type serialPanel struct {
	*display.TermPanel
	src *compose.SerialSource
}

func (p *serialPanel) Available() bool         { return p.src.Available() }
func (p *serialPanel) ReadByte() (byte, error) { return p.src.ReadByte() }
func (p *serialPanel) WriteByte(b byte) error  { return p.src.WriteByte(b) }
