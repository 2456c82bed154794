// Command synthplay plays the synth engine on the default audio device.
//
// Usage:
//
//	synthplay [flags]
//
// Settings come from the JSON config file (default
// ~/.config/algo-synth/config.json); flags override it. Without -script a
// built-in pattern is loaded.
//
// Examples:
//
//	synthplay
//	synthplay -tempo 96 -script beat.lua
//	synthplay -midi keystation -midi-track 1
//	synthplay -no-tui -duration 30s -log-level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/internal/config"
	"github.com/cwbudde/algo-synth/internal/midiin"
	"github.com/cwbudde/algo-synth/internal/player"
	"github.com/cwbudde/algo-synth/internal/script"
	"github.com/cwbudde/algo-synth/internal/tui"
)

type options struct {
	configPath string
	noTUI      bool
	duration   time.Duration
	listMIDI   bool
}

func main() {
	cfg, opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if opts.listMIDI {
		for _, name := range midiin.Ports() {
			fmt.Println(name)
		}
		return
	}

	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags loads the config file and applies the flags that were set.
func parseFlags(args []string) (*config.Config, options, error) {
	var opts options

	fs := flag.NewFlagSet("synthplay", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/algo-synth/config.json)")
	sampleRate := fs.Int("sr", 0, "sample rate in Hz")
	blockSize := fs.Int("block", 0, "render block size in frames")
	tempo := fs.Float64("tempo", 0, "tempo in BPM")
	loop := fs.Float64("loop", 0, "loop length in beats")
	scriptPath := fs.String("script", "", "Lua pattern script")
	midiPort := fs.String("midi", "", "MIDI input port (substring match)")
	midiTrack := fs.Int("midi-track", -1, "track played by MIDI input")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFile := fs.String("log-file", "", "log file (the TUI owns the terminal)")
	limiter := fs.Bool("limiter", false, "enable the output limiter")
	fs.BoolVar(&opts.noTUI, "no-tui", false, "log to stderr instead of showing the monitor")
	fs.DurationVar(&opts.duration, "duration", 0, "stop after this long (0 plays until interrupted)")
	fs.BoolVar(&opts.listMIDI, "list-midi", false, "list MIDI input ports and exit")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, opts, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sr":
			cfg.Audio.SampleRate = *sampleRate
		case "block":
			cfg.Audio.BlockSize = *blockSize
		case "tempo":
			cfg.Transport.Tempo = *tempo
		case "loop":
			cfg.Transport.LoopBeats = *loop
		case "script":
			cfg.Script = *scriptPath
		case "midi":
			cfg.MIDI.InputPort = *midiPort
		case "midi-track":
			cfg.MIDI.Track = *midiTrack
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-file":
			cfg.Log.File = *logFile
		case "limiter":
			cfg.Effects.Limiter = *limiter
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}

	return cfg, opts, nil
}

func newLogger(cfg *config.Config, toStderr bool) (*slog.Logger, io.Closer, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer = io.Discard
		closer io.Closer = io.NopCloser(nil)
	)

	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	case toStderr:
		w = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return logger, closer, nil
}

func run(cfg *config.Config, opts options) error {
	logger, logCloser, err := newLogger(cfg, opts.noTUI)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	engineOpts, err := cfg.EngineOptions(logger)
	if err != nil {
		return err
	}

	e, err := engine.New(cfg.ProcessorConfig(), engineOpts...)
	if err != nil {
		return err
	}

	stream, err := player.NewStream(e, cfg.Audio.BlockSize, cfg.Transport.Tempo)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if err := loadPattern(ctx, cfg, e, stream, logger); err != nil {
		return err
	}

	if cfg.MIDI.InputPort != "" {
		router := midiin.NewRouter(e, uint8(cfg.MIDI.Track), midiin.WithLogger(logger))

		in, err := midiin.Open(cfg.MIDI.InputPort, router, logger)
		if err != nil {
			return err
		}
		defer in.Close()
	}

	p, err := player.New(stream, cfg.Audio.SampleRate, 0)
	if err != nil {
		return err
	}
	defer p.Close()

	p.Start()
	logger.Info("playing",
		"sample_rate", cfg.Audio.SampleRate,
		"block", cfg.Audio.BlockSize,
		"tempo", cfg.Transport.Tempo,
		"tracks", e.Tracks())

	if opts.noTUI {
		err = e.Dispatch(ctx, 50*time.Millisecond)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	} else {
		err = runTUI(ctx, cfg, e, stream)
	}

	st := e.Stats()
	logger.Info("stopped",
		"frames", st.Frames,
		"renders", st.Renders,
		"drops", st.Drops())

	return err
}

func loadPattern(ctx context.Context, cfg *config.Config, e *engine.Engine, stream *player.Stream, logger *slog.Logger) error {
	runner, err := script.New(e, script.WithLogger(logger), script.WithTempo(stream.SetTempo))
	if err != nil {
		return err
	}

	if cfg.Script != "" {
		return runner.RunFile(ctx, cfg.Script)
	}

	return runner.Run(ctx, "default", defaultPattern)
}

func runTUI(ctx context.Context, cfg *config.Config, e *engine.Engine, stream *player.Stream) error {
	kinds := make([]instrument.Kind, len(cfg.Tracks))
	for i, tr := range cfg.Tracks {
		k, err := instrument.ParseKind(tr.Instrument)
		if err != nil {
			return err
		}
		kinds[i] = k
	}

	prog := tea.NewProgram(tui.NewModel(e, stream, kinds), tea.WithAltScreen(), tea.WithContext(ctx))
	e.OnNote(func(n engine.NoteEvent) { prog.Send(tui.NoteMsg(n)) })
	defer e.OnNote(nil)

	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}
