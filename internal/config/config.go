// Package config loads and saves the player configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/instrument"
)

// AudioConfig holds the output stream settings.
type AudioConfig struct {
	SampleRate   int `json:"sampleRate"`
	BlockSize    int `json:"blockSize"`
	MaxBlockSize int `json:"maxBlockSize,omitempty"`
}

// TransportConfig holds tempo and loop settings.
type TransportConfig struct {
	Tempo     float64 `json:"tempo"`
	LoopBeats float64 `json:"loopBeats"`
}

// TrackConfig binds an instrument to one track.
type TrackConfig struct {
	Instrument string             `json:"instrument"`
	Polyphony  int                `json:"polyphony,omitempty"`
	Params     map[string]float64 `json:"params,omitempty"`
}

// EffectsConfig holds the shared delay and reverb settings.
type EffectsConfig struct {
	DelayTime     float64 `json:"delayTime"`
	DelayFeedback float64 `json:"delayFeedback"`
	DelaySend     float64 `json:"delaySend"`
	ReverbSend    float64 `json:"reverbSend"`
	ReverbSeed    int64   `json:"reverbSeed,omitempty"`
	Limiter       bool    `json:"limiter,omitempty"`
}

// MIDIConfig selects the live input port.
type MIDIConfig struct {
	InputPort string `json:"inputPort,omitempty"`
	Track     int    `json:"track,omitempty"`
}

// LogConfig sets the log level and an optional log file.
type LogConfig struct {
	Level string `json:"level,omitempty"`
	File  string `json:"file,omitempty"`
}

// Config is the player configuration.
type Config struct {
	Audio     AudioConfig     `json:"audio"`
	Transport TransportConfig `json:"transport"`
	Tracks    []TrackConfig   `json:"tracks"`
	Effects   EffectsConfig   `json:"effects"`
	MIDI      MIDIConfig      `json:"midi,omitempty"`
	Script    string          `json:"script,omitempty"`
	Log       LogConfig       `json:"log,omitempty"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Audio:     AudioConfig{SampleRate: 48000, BlockSize: 512, MaxBlockSize: 4096},
		Transport: TransportConfig{Tempo: 120, LoopBeats: 4},
		Tracks: []TrackConfig{
			{Instrument: instrument.KindKick.String(), Polyphony: 4},
			{Instrument: instrument.KindSubtractive.String(), Polyphony: 8},
			{Instrument: instrument.KindPluck.String(), Polyphony: 8},
		},
		Effects: EffectsConfig{
			DelayTime:     0.375,
			DelayFeedback: 0.4,
			DelaySend:     0.3,
			ReverbSend:    0.15,
			ReverbSeed:    0x5eed,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Dir returns the config directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "algo-synth"), nil
}

// Path returns the full path to config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

// Load reads path, or the default location when path is empty. A missing
// file yields the defaults. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}

		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be > 0: %d", c.Audio.SampleRate)
	}

	if c.Audio.BlockSize <= 0 {
		return fmt.Errorf("audio block size must be > 0: %d", c.Audio.BlockSize)
	}

	if c.Audio.MaxBlockSize < 0 {
		return fmt.Errorf("audio max block size must be >= 0: %d", c.Audio.MaxBlockSize)
	}

	if c.Transport.Tempo <= 0 || !core.IsFinite(c.Transport.Tempo) {
		return fmt.Errorf("transport tempo must be > 0: %f", c.Transport.Tempo)
	}

	if c.Transport.LoopBeats <= 0 || !core.IsFinite(c.Transport.LoopBeats) {
		return fmt.Errorf("transport loop beats must be > 0: %f", c.Transport.LoopBeats)
	}

	if len(c.Tracks) == 0 {
		return errors.New("config needs at least one track")
	}

	for i, tr := range c.Tracks {
		kind, err := instrument.ParseKind(tr.Instrument)
		if err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}

		if tr.Polyphony < 0 {
			return fmt.Errorf("track %d polyphony must be >= 0: %d", i, tr.Polyphony)
		}

		for name, v := range tr.Params {
			if _, err := instrument.ParseParam(name); err != nil {
				return fmt.Errorf("track %d (%s): %w", i, kind, err)
			}

			if v < 0 || v > 1 {
				return fmt.Errorf("track %d param %s must be in [0,1]: %f", i, name, v)
			}
		}
	}

	if c.MIDI.Track < 0 || c.MIDI.Track >= len(c.Tracks) {
		return fmt.Errorf("midi track must be in [0,%d): %d", len(c.Tracks), c.MIDI.Track)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// ProcessorConfig returns the engine render settings.
func (c *Config) ProcessorConfig() core.ProcessorConfig {
	return core.ApplyProcessorOptions(
		core.WithSampleRate(float64(c.Audio.SampleRate)),
		core.WithBlockSize(c.Audio.BlockSize),
		core.WithMaxBlockSize(c.Audio.MaxBlockSize))
}

// Generators builds one voice pool per track with its parameters applied.
func (c *Config) Generators() ([]instrument.Generator, error) {
	sr := float64(c.Audio.SampleRate)
	gens := make([]instrument.Generator, len(c.Tracks))

	for i, tr := range c.Tracks {
		kind, err := instrument.ParseKind(tr.Instrument)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}

		poly := tr.Polyphony
		if poly == 0 {
			poly = 8
		}

		pool, err := instrument.New(kind, sr, poly)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}

		for name, v := range tr.Params {
			p, err := instrument.ParseParam(name)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}

			pool.SetParameter(p, v)
		}

		gens[i] = pool
	}

	return gens, nil
}

// EngineOptions translates the config into engine options. logger may be nil.
func (c *Config) EngineOptions(logger *slog.Logger) ([]engine.Option, error) {
	gens, err := c.Generators()
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithGenerators(gens...),
		engine.WithLoopBeats(c.Transport.LoopBeats),
		engine.WithDelay(c.Effects.DelayTime, c.Effects.DelayFeedback),
		engine.WithSends(c.Effects.DelaySend, c.Effects.ReverbSend),
		engine.WithLimiter(c.Effects.Limiter),
	}
	if c.Effects.ReverbSeed != 0 {
		opts = append(opts, engine.WithReverbSeed(c.Effects.ReverbSeed))
	}

	if logger != nil {
		opts = append(opts, engine.WithLogger(logger))
	}

	return opts, nil
}

// LogLevel parses Log.Level. Empty means info.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}

	return level, nil
}
