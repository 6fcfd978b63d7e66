package engines

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/voice"
)

const gttsMaxText = 5000

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	// Language is used when a voice carries no language code.
	Language string
	Slow     bool
	// SampleRate ffmpeg converts to, 44100 by default.
	SampleRate int
	// RequestsPerMinute limits calls to Google. Defaults to 50.
	RequestsPerMinute int
	Timeout           time.Duration

	// GTTSBinary and FFmpegBinary default to the names on $PATH.
	GTTSBinary   string
	FFmpegBinary string
}

// GTTSEngine pipes gtts-cli MP3 output through ffmpeg into PCM.
type GTTSEngine struct {
	config  GTTSConfig
	limiter *rate.Limiter
}

// NewGTTSEngine creates a gTTS engine.
func NewGTTSEngine(config GTTSConfig) (*GTTSEngine, error) {
	if config.Language == "" {
		config.Language = "en"
	}
	if config.SampleRate == 0 {
		config.SampleRate = 44100
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 50
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.GTTSBinary == "" {
		config.GTTSBinary = "gtts-cli"
	}
	if config.FFmpegBinary == "" {
		config.FFmpegBinary = "ffmpeg"
	}
	return &GTTSEngine{
		config:  config,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}, nil
}

// Synthesize implements tts.Engine.
func (e *GTTSEngine) Synthesize(ctx context.Context, text string, v voice.Voice) ([]byte, error) {
	if text == "" {
		return nil, tts.NewTTSError(tts.ErrorCodeInvalidInput, "text cannot be empty", nil)
	}
	if len(text) > gttsMaxText {
		return nil, tts.NewTTSError(tts.ErrorCodeTextTooLong,
			fmt.Sprintf("text too long: %d characters (max %d)", len(text), gttsMaxText), nil)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	lang := v.ID
	if lang == "" {
		lang = e.config.Language
	}

	args := []string{text, "-l", lang}
	if e.config.Slow {
		args = append(args, "--slow")
	}
	args = append(args, "-o", "-")

	mp3, err := run(ctx, command{name: e.config.GTTSBinary, args: args, timeout: e.config.Timeout})
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrorCodeEngineFailure, "MP3 generation failed", err).
			WithContext("lang", lang)
	}
	if len(mp3) == 0 {
		return nil, tts.NewTTSError(tts.ErrorCodeEngineFailure, "gtts-cli produced no MP3 output", nil)
	}

	pcm, err := run(ctx, command{
		name: e.config.FFmpegBinary,
		args: []string{
			"-hide_banner", "-loglevel", "error",
			"-i", "pipe:0",
			"-f", "s16le",
			"-ar", strconv.Itoa(e.config.SampleRate),
			"-ac", "1",
			"pipe:1",
		},
		stdin:   bytes.NewReader(mp3),
		timeout: 15 * time.Second,
	})
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrorCodeEngineFailure, "MP3 to PCM conversion failed", err)
	}
	return pcm, nil
}

// Voices implements tts.Engine.
func (e *GTTSEngine) Voices(ctx context.Context) ([]voice.Voice, error) {
	return voice.GTTSProvider{Default: e.config.Language}.Voices(ctx)
}

// Info implements tts.Engine.
func (e *GTTSEngine) Info() tts.EngineInfo {
	return tts.EngineInfo{
		Name:        string(tts.EngineGTTS),
		SampleRate:  e.config.SampleRate,
		MaxTextSize: gttsMaxText,
		IsOnline:    true,
	}
}

// Validate checks for gtts-cli and ffmpeg.
func (e *GTTSEngine) Validate() error {
	for _, bin := range []string{e.config.GTTSBinary, e.config.FFmpegBinary} {
		if _, err := exec.LookPath(bin); err != nil {
			return tts.NewTTSError(tts.ErrorCodeEngineUnavailable, bin+" not found in PATH", err)
		}
	}
	return nil
}

// Close implements tts.Engine.
func (e *GTTSEngine) Close() error {
	return nil
}

var _ tts.Engine = (*GTTSEngine)(nil)
