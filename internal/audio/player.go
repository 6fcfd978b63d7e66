package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// ErrClosed is returned by a player that has been closed.
var ErrClosed = errors.New("player is closed")

// State is the playback state of a player.
type State int32

const (
	StateStopped State = iota
	StatePlaying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config describes the output device format.
type Config struct {
	SampleRate int // 44100 or 48000 Hz only
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // 16 bits per sample
	BufferSize int // bytes
}

// DefaultConfig returns the mono 44.1kHz configuration used for speech.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Channels:   1,
		BitDepth:   16,
		BufferSize: 4096,
	}
}

// Validate checks that oto can open a context with c.
func (c Config) Validate() error {
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", c.Channels)
	}
	if c.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", c.BitDepth)
	}
	if c.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}
	return nil
}

// Player plays PCM buffers on the default output device.
//
// oto allows a single context per process, so a program should create
// one Player and share it.
type Player struct {
	context *oto.Context
	config  Config

	mu     sync.Mutex
	player *oto.Player
	// data is referenced until playback ends so the buffer oto reads
	// from is not collected mid-stream.
	data []byte

	state  atomic.Int32
	volume atomic.Uint64 // math.Float64bits

	pollInterval time.Duration
}

// NewPlayer opens the output device.
func NewPlayer(config Config) (*Player, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(config.BufferSize) * time.Second / time.Duration(config.SampleRate*config.Channels*2),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	log.Debug("audio device ready", "rate", config.SampleRate, "channels", config.Channels)

	p := &Player{
		context:      ctx,
		config:       config,
		pollInterval: 10 * time.Millisecond,
	}
	p.state.Store(int32(StateStopped))
	p.volume.Store(math.Float64bits(1))
	return p, nil
}

// SampleRate returns the device sample rate.
func (p *Player) SampleRate() int {
	return p.config.SampleRate
}

// Play stops any current playback and starts playing pcm. It returns
// as soon as playback has started; use Wait to block until it ends.
func (p *Player) Play(pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if State(p.state.Load()) == StateClosed {
		return ErrClosed
	}
	p.stopLocked()

	data := make([]byte, len(pcm))
	copy(data, pcm)

	player := p.context.NewPlayer(bytes.NewReader(data))
	player.SetVolume(p.Volume())
	player.Play()

	p.player = player
	p.data = data
	p.state.Store(int32(StatePlaying))

	log.Debug("playback started", "bytes", len(data), "duration", Duration(data, p.config.SampleRate))
	return nil
}

// Wait blocks until the current playback drains or ctx is done. When ctx
// ends first playback is stopped and ctx.Err() is returned.
func (p *Player) Wait(ctx context.Context) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		if !p.IsPlaying() {
			return p.finish()
		}
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// finish releases a drained oto player and reports its error, if any.
func (p *Player) finish() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Err()
	p.stopLocked()
	if err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}

// IsPlaying reports whether audio is still being played.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.player.IsPlaying()
}

// Stop stops playback. Stopping an idle player is a no-op.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	if p.player != nil {
		p.player.Pause()
		if err := p.player.Close(); err != nil {
			log.Debug("closing oto player", "error", err)
		}
		p.player = nil
	}
	p.data = nil
	if State(p.state.Load()) != StateClosed {
		p.state.Store(int32(StateStopped))
	}
}

// SetVolume sets the playback volume between 0 and 1.
func (p *Player) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 || math.IsNaN(volume) {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	p.volume.Store(math.Float64bits(volume))

	p.mu.Lock()
	if p.player != nil {
		p.player.SetVolume(volume)
	}
	p.mu.Unlock()
	return nil
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// State returns the playback state.
func (p *Player) State() State {
	if State(p.state.Load()) == StatePlaying && !p.IsPlaying() {
		return StateStopped
	}
	return State(p.state.Load())
}

// Close stops playback. The oto context itself lives until the process
// exits.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state.Store(int32(StateClosed))
	return nil
}
