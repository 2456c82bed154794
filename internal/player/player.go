package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player plays a Stream on the default audio device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	stream *Stream

	mu      sync.Mutex // setup and control only
	started bool
}

// New opens the audio device at sampleRate. bufferTime sets the driver
// buffer length; zero selects the driver default.
func New(stream *Stream, sampleRate int, bufferTime time.Duration) (*Player, error) {
	if stream == nil {
		return nil, errors.New("player stream must not be nil")
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("player sample rate must be > 0: %d", sampleRate)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferTime,
	})
	if err != nil {
		return nil, fmt.Errorf("player audio device: %w", err)
	}
	<-ready

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(stream),
		stream: stream,
	}, nil
}

// Stream returns the stream the player reads from.
func (p *Player) Stream() *Stream { return p.stream }

// Start begins or resumes playback.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Pause stops pulling audio. Start resumes it.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// IsStarted reports whether playback is running.
func (p *Player) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started
}

// Close stops playback and releases the player.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = false

	if p.player == nil {
		return nil
	}

	err := p.player.Close()
	p.player = nil

	return err
}
