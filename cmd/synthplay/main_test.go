package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/internal/config"
	"github.com/cwbudde/algo-synth/internal/player"
)

func TestParseFlagsOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	base := config.Default()
	base.Transport.Tempo = 100
	base.Effects.DelaySend = 0.2

	if err := base.Save(path); err != nil {
		t.Fatal(err)
	}

	cfg, opts, err := parseFlags([]string{"-config", path, "-tempo", "140", "-no-tui", "-midi-track", "2"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	if cfg.Transport.Tempo != 140 || cfg.Effects.DelaySend != 0.2 || cfg.MIDI.Track != 2 || !opts.noTUI {
		t.Fatalf("cfg = %+v opts = %+v", cfg, opts)
	}
}

func TestParseFlagsRejectsInvalidOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	if _, _, err := parseFlags([]string{"-config", path, "-tempo", "-5"}); err == nil {
		t.Fatal("expected error for negative tempo")
	}
}

func TestDefaultPatternLoads(t *testing.T) {
	cfg := config.Default()

	e, err := engine.New(cfg.ProcessorConfig(), engine.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatal(err)
	}

	stream, err := player.NewStream(e, cfg.Audio.BlockSize, cfg.Transport.Tempo)
	if err != nil {
		t.Fatal(err)
	}

	if err := loadPattern(context.Background(), cfg, e, stream, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("loadPattern() error = %v", err)
	}

	buf := make([]byte, 96000*8)
	if _, err := stream.Read(buf); err != nil {
		t.Fatal(err)
	}

	if st := e.Stats(); st.Drops() != 0 || st.Frames != 96000 {
		t.Fatalf("stats = %+v", st)
	}
}
