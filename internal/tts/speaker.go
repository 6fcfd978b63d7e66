package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/cache"
	"github.com/dgnsrekt/memegen/internal/voice"
)

// SpeakOptions carry the picker state at the moment Read is pressed.
type SpeakOptions struct {
	Voice voice.Voice
	// Volume is the 0..100 slider value.
	Volume int
}

// SpeakerConfig configures a Speaker.
type SpeakerConfig struct {
	Engine Engine
	Player Player
	// Cache is optional.
	Cache cache.Cache
	// SampleRate is the player's rate. Engine output at another rate is
	// resampled. Defaults to 44100.
	SampleRate int
	// Timeout bounds synthesis. Defaults to 30s.
	Timeout time.Duration
}

// Speaker synthesizes text and plays it.
type Speaker struct {
	engine     Engine
	player     Player
	cache      cache.Cache
	sampleRate int
	timeout    time.Duration

	// mu serializes utterances; a new Speak waits for the previous one.
	mu sync.Mutex
}

// NewSpeaker creates a speaker. Engine and Player are required.
func NewSpeaker(cfg SpeakerConfig) (*Speaker, error) {
	if cfg.Engine == nil || cfg.Player == nil {
		return nil, ErrSpeechUnavailable
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Speaker{
		engine:     cfg.Engine,
		player:     cfg.Player,
		cache:      cfg.Cache,
		sampleRate: cfg.SampleRate,
		timeout:    cfg.Timeout,
	}, nil
}

// Speak reads text aloud with opts and blocks until playback ends. Empty
// text is a no-op.
func (s *Speaker) Speak(ctx context.Context, text string, opts SpeakOptions) error {
	if opts.Volume < 0 || opts.Volume > 100 {
		return NewTTSError(ErrorCodeInvalidInput, "volume must be between 0 and 100", nil).
			WithContext("volume", opts.Volume)
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	info := s.engine.Info()
	if info.MaxTextSize > 0 && len(text) > info.MaxTextSize {
		return NewTTSError(ErrorCodeTextTooLong,
			fmt.Sprintf("text too long: %d characters (max %d)", len(text), info.MaxTextSize), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pcm, err := s.pcm(ctx, info, text, opts.Voice)
	if err != nil {
		return err
	}

	if err := s.player.SetVolume(float64(opts.Volume) / 100); err != nil {
		return NewTTSError(ErrorCodeAudioFailure, "set volume", err)
	}
	if err := s.player.Play(pcm); err != nil {
		return NewTTSError(ErrorCodeAudioDevice, "start playback", err)
	}

	log.Debug("speaking", "engine", info.Name, "voice", opts.Voice.Name, "volume", opts.Volume,
		"duration", audio.Duration(pcm, s.sampleRate))

	if err := s.player.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return NewTTSError(ErrorCodeCanceled, "playback interrupted", errors.Join(ErrCanceled, ctx.Err()))
		}
		return NewTTSError(ErrorCodeAudioFailure, "playback", err)
	}
	return nil
}

// pcm returns the utterance at the player rate, from the cache when
// possible.
func (s *Speaker) pcm(ctx context.Context, info EngineInfo, text string, v voice.Voice) ([]byte, error) {
	key := cache.Key(info.Name, v.ID, text)
	if s.cache != nil {
		if pcm, ok := s.cache.Get(key); ok {
			log.Debug("audio cache hit", "voice", v.ID)
			return pcm, nil
		}
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pcm, err := s.engine.Synthesize(sctx, text, v)
	if err != nil {
		return nil, classify(ctx, sctx, err)
	}
	if len(pcm) == 0 {
		return nil, NewTTSError(ErrorCodeEngineFailure, "engine produced no audio", nil).
			WithContext("engine", info.Name)
	}

	pcm = audio.Resample(pcm, info.SampleRate, s.sampleRate)

	if s.cache != nil {
		if err := s.cache.Put(key, pcm); err != nil {
			log.Warn("could not cache audio", "error", err)
		}
	}
	return pcm, nil
}

// classify maps a synthesis error to a TTSError.
func classify(parent, sctx context.Context, err error) error {
	var te *TTSError
	switch {
	case parent.Err() != nil:
		return NewTTSError(ErrorCodeCanceled, "synthesis canceled", errors.Join(ErrCanceled, err))
	case errors.Is(sctx.Err(), context.DeadlineExceeded):
		return NewTTSError(ErrorCodeTimeout, "synthesis timed out", errors.Join(ErrTimeout, err))
	case errors.As(err, &te):
		return te
	default:
		return NewTTSError(ErrorCodeEngineFailure, "synthesis failed", err)
	}
}

// Voices lists the engine's voices.
func (s *Speaker) Voices(ctx context.Context) ([]voice.Voice, error) {
	return s.engine.Voices(ctx)
}

// Engine returns the engine info.
func (s *Speaker) Engine() EngineInfo {
	return s.engine.Info()
}

// Stop interrupts the current utterance.
func (s *Speaker) Stop() error {
	return s.player.Stop()
}

// Speaking reports whether audio is playing.
func (s *Speaker) Speaking() bool {
	return s.player.IsPlaying()
}

// Close releases the engine and the player.
func (s *Speaker) Close() error {
	return errors.Join(s.engine.Close(), s.player.Close())
}
