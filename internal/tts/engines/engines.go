package engines

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/memegen/internal/tts"
)

// Config selects and configures an engine.
type Config struct {
	Piper PiperConfig
	GTTS  GTTSConfig
}

// New creates the engine of the given kind and validates it.
func New(kind tts.EngineKind, cfg Config) (tts.Engine, error) {
	var (
		engine tts.Engine
		err    error
	)
	switch kind {
	case tts.EnginePiper:
		engine, err = NewPiperEngine(cfg.Piper)
	case tts.EngineGTTS:
		engine, err = NewGTTSEngine(cfg.GTTS)
	case tts.EngineMock:
		engine = NewMockEngine()
	case tts.EngineNone:
		return nil, tts.ErrNoEngineConfigured
	default:
		return nil, fmt.Errorf("%w: %s", tts.ErrInvalidEngine, kind)
	}
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrorCodeEngineUnavailable, "configure "+string(kind), err)
	}

	if err := engine.Validate(); err != nil {
		return nil, err
	}
	log.Debug("tts engine ready", "engine", kind, "rate", engine.Info().SampleRate)
	return engine, nil
}
