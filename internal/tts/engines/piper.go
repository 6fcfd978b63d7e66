package engines

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/voice"
)

const piperMaxText = 5000

// PiperConfig holds configuration for the piper engine.
type PiperConfig struct {
	// Binary defaults to "piper" on $PATH.
	Binary string
	// VoicesDir is scanned for *.onnx models.
	VoicesDir string
	// Model is used when a voice carries no model path.
	Model string
	// SampleRate of the models, 22050 unless configured otherwise.
	SampleRate int
	Timeout    time.Duration
}

// PiperEngine runs one piper process per utterance with the text on stdin.
type PiperEngine struct {
	config   PiperConfig
	provider voice.PiperProvider
}

// NewPiperEngine creates a piper engine. Either a voices directory or a
// model is required.
func NewPiperEngine(config PiperConfig) (*PiperEngine, error) {
	if config.VoicesDir == "" && config.Model == "" {
		return nil, errors.New("piper needs a voices directory or a model path")
	}
	if config.Binary == "" {
		config.Binary = "piper"
	}
	if config.SampleRate == 0 {
		config.SampleRate = 22050
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &PiperEngine{
		config:   config,
		provider: voice.PiperProvider{Dir: config.VoicesDir, DefaultModel: config.Model},
	}, nil
}

// Synthesize implements tts.Engine.
func (e *PiperEngine) Synthesize(ctx context.Context, text string, v voice.Voice) ([]byte, error) {
	if text == "" {
		return nil, tts.NewTTSError(tts.ErrorCodeInvalidInput, "text cannot be empty", nil)
	}
	if len(text) > piperMaxText {
		return nil, tts.NewTTSError(tts.ErrorCodeTextTooLong,
			fmt.Sprintf("text too long: %d characters (max %d)", len(text), piperMaxText), nil)
	}

	model := v.ID
	if model == "" {
		model = e.config.Model
	}
	if model == "" {
		return nil, tts.NewTTSError(tts.ErrorCodeInvalidInput, "no piper model selected", nil)
	}

	pcm, err := run(ctx, command{
		name:    e.config.Binary,
		args:    []string{"--model", model, "--output-raw"},
		stdin:   strings.NewReader(text),
		timeout: e.config.Timeout,
	})
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrorCodeEngineFailure, "piper synthesis", err).
			WithContext("model", model)
	}
	return pcm, nil
}

// Voices implements tts.Engine.
func (e *PiperEngine) Voices(ctx context.Context) ([]voice.Voice, error) {
	return e.provider.Voices(ctx)
}

// Info implements tts.Engine.
func (e *PiperEngine) Info() tts.EngineInfo {
	return tts.EngineInfo{
		Name:        string(tts.EnginePiper),
		SampleRate:  e.config.SampleRate,
		MaxTextSize: piperMaxText,
	}
}

// Validate checks for the binary and at least one model.
func (e *PiperEngine) Validate() error {
	if _, err := exec.LookPath(e.config.Binary); err != nil {
		return tts.NewTTSError(tts.ErrorCodeEngineUnavailable, "piper not found in PATH", err)
	}
	if e.config.Model != "" {
		if _, err := os.Stat(e.config.Model); err != nil {
			return tts.NewTTSError(tts.ErrorCodeEngineUnavailable, "model file not accessible", err)
		}
	}
	voices, err := e.Voices(context.Background())
	if err != nil {
		return tts.NewTTSError(tts.ErrorCodeEngineUnavailable, "list piper voices", err)
	}
	if len(voices) == 0 {
		return tts.NewTTSError(tts.ErrorCodeEngineUnavailable, "no piper voices found", nil).
			WithContext("dir", e.config.VoicesDir)
	}
	return nil
}

// Close implements tts.Engine.
func (e *PiperEngine) Close() error {
	return nil
}

var _ tts.Engine = (*PiperEngine)(nil)
