package engines

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/voice"
)

// MockEngine produces silence: WordDuration of PCM per word. It records
// every request.
type MockEngine struct {
	SampleRate   int
	WordDuration time.Duration
	// Err, when set, is returned by Synthesize.
	Err error

	mu       sync.Mutex
	requests []MockRequest
}

// MockRequest is one recorded Synthesize call.
type MockRequest struct {
	Text  string
	Voice voice.Voice
}

// NewMockEngine returns a 22050 Hz mock with 100ms per word, so callers
// exercise resampling.
func NewMockEngine() *MockEngine {
	return &MockEngine{SampleRate: 22050, WordDuration: 100 * time.Millisecond}
}

// Synthesize implements tts.Engine.
func (e *MockEngine) Synthesize(ctx context.Context, text string, v voice.Voice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.requests = append(e.requests, MockRequest{Text: text, Voice: v})
	err := e.Err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	samples := int(time.Duration(words) * e.WordDuration * time.Duration(e.SampleRate) / time.Second)
	return make([]byte, samples*2), nil
}

// Voices implements tts.Engine.
func (e *MockEngine) Voices(context.Context) ([]voice.Voice, error) {
	return []voice.Voice{
		{ID: "mock-a", Name: "Mock Alice", Lang: "en-US", Default: true, Engine: string(tts.EngineMock)},
		{ID: "mock-b", Name: "Mock Bob", Lang: "en-GB", Engine: string(tts.EngineMock)},
	}, nil
}

// Info implements tts.Engine.
func (e *MockEngine) Info() tts.EngineInfo {
	return tts.EngineInfo{Name: string(tts.EngineMock), SampleRate: e.SampleRate}
}

// Validate implements tts.Engine.
func (e *MockEngine) Validate() error { return nil }

// Close implements tts.Engine.
func (e *MockEngine) Close() error { return nil }

// Requests returns the recorded calls.
func (e *MockEngine) Requests() []MockRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]MockRequest(nil), e.requests...)
}

var _ tts.Engine = (*MockEngine)(nil)
