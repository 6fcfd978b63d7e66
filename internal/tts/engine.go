package tts

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgnsrekt/memegen/internal/voice"
)

// Engine converts text to speech.
type Engine interface {
	// Synthesize returns mono signed 16-bit little-endian PCM at
	// Info().SampleRate, spoken with v.
	Synthesize(ctx context.Context, text string, v voice.Voice) ([]byte, error)

	// Voices lists the voices the engine can speak with.
	Voices(ctx context.Context) ([]voice.Voice, error)

	// Info describes the engine output.
	Info() EngineInfo

	// Validate checks that the engine's binaries and models are present.
	Validate() error

	// Close releases any resources held by the engine.
	Close() error
}

// EngineInfo describes engine capabilities.
type EngineInfo struct {
	Name        string
	SampleRate  int  // Hz
	MaxTextSize int  // characters, 0 for unlimited
	IsOnline    bool // requires network access
}

// Player plays PCM buffers.
type Player interface {
	Play(pcm []byte) error
	// Wait blocks until playback ends or ctx is done.
	Wait(ctx context.Context) error
	Stop() error
	// SetVolume takes a value between 0 and 1.
	SetVolume(volume float64) error
	IsPlaying() bool
	Close() error
}

// EngineKind names an engine implementation.
type EngineKind string

const (
	EngineNone  EngineKind = ""
	EnginePiper EngineKind = "piper"
	EngineGTTS  EngineKind = "gtts"
	EngineMock  EngineKind = "mock"
)

// ValidateEngineSelection resolves an engine name from the command line or
// configuration. "google" is accepted as an alias of "gtts". An empty name
// returns EngineNone with ErrNoEngineConfigured.
func ValidateEngineSelection(name string) (EngineKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return EngineNone, ErrNoEngineConfigured
	case "piper":
		return EnginePiper, nil
	case "gtts", "google":
		return EngineGTTS, nil
	case "mock":
		return EngineMock, nil
	default:
		return EngineNone, fmt.Errorf("%w: %s\n\nSupported engines:\n  - piper (offline TTS)\n  - gtts (Google TTS)\n  - mock (silent, for testing)", ErrInvalidEngine, name)
	}
}
