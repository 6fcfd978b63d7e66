package tts_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/cache"
	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/tts/engines"
	"github.com/dgnsrekt/memegen/internal/voice"
)

func newSpeaker(t *testing.T, c cache.Cache) (*tts.Speaker, *engines.MockEngine, *audio.MockPlayer) {
	t.Helper()
	engine := engines.NewMockEngine()
	player := audio.NewMockPlayer()
	s, err := tts.NewSpeaker(tts.SpeakerConfig{Engine: engine, Player: player, Cache: c})
	require.NoError(t, err)
	return s, engine, player
}

func TestNewSpeaker_RequiresEngineAndPlayer(t *testing.T) {
	_, err := tts.NewSpeaker(tts.SpeakerConfig{Player: audio.NewMockPlayer()})
	assert.ErrorIs(t, err, tts.ErrSpeechUnavailable)

	_, err = tts.NewSpeaker(tts.SpeakerConfig{Engine: engines.NewMockEngine()})
	assert.ErrorIs(t, err, tts.ErrSpeechUnavailable)
}

func TestSpeaker_Speak(t *testing.T) {
	s, engine, player := newSpeaker(t, nil)
	v := voice.Voice{ID: "mock-b", Name: "Mock Bob"}

	require.NoError(t, s.Speak(context.Background(), "TOP TEXTbottom text", tts.SpeakOptions{Voice: v, Volume: 40}))

	reqs := engine.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "TOP TEXTbottom text", reqs[0].Text)
	assert.Equal(t, "mock-b", reqs[0].Voice.ID)

	plays := player.Plays()
	require.Len(t, plays, 1)
	// Three words of 22050 Hz mock audio resampled to 44100 Hz.
	assert.Equal(t, 300*time.Millisecond, audio.Duration(plays[0], 44100))
	assert.Equal(t, []float64{0.4}, player.Volumes())
}

func TestSpeaker_VolumeBounds(t *testing.T) {
	s, _, player := newSpeaker(t, nil)

	for _, vol := range []int{-1, 101} {
		err := s.Speak(context.Background(), "hi", tts.SpeakOptions{Volume: vol})
		assert.Equal(t, tts.ErrorCodeInvalidInput, tts.CodeOf(err), "volume %d", vol)
	}

	require.NoError(t, s.Speak(context.Background(), "hi", tts.SpeakOptions{Volume: 0}))
	require.NoError(t, s.Speak(context.Background(), "hi", tts.SpeakOptions{Volume: 100}))
	assert.Equal(t, []float64{0, 1}, player.Volumes())
}

func TestSpeaker_EmptyTextIsNoop(t *testing.T) {
	s, engine, player := newSpeaker(t, nil)
	require.NoError(t, s.Speak(context.Background(), "  ", tts.SpeakOptions{Volume: 100}))
	assert.Empty(t, engine.Requests())
	assert.Empty(t, player.Plays())
}

func TestSpeaker_UsesCache(t *testing.T) {
	s, engine, player := newSpeaker(t, cache.NewMemoryCache(1<<20))
	opts := tts.SpeakOptions{Voice: voice.Voice{ID: "mock-a"}, Volume: 100}

	require.NoError(t, s.Speak(context.Background(), "same words", opts))
	require.NoError(t, s.Speak(context.Background(), "same words", opts))
	assert.Len(t, engine.Requests(), 1)
	assert.Len(t, player.Plays(), 2)

	opts.Voice.ID = "mock-b"
	require.NoError(t, s.Speak(context.Background(), "same words", opts))
	assert.Len(t, engine.Requests(), 2)
}

func TestSpeaker_EngineFailure(t *testing.T) {
	s, engine, player := newSpeaker(t, nil)
	engine.Err = errors.New("model missing")

	err := s.Speak(context.Background(), "hi", tts.SpeakOptions{Volume: 100})
	assert.Equal(t, tts.ErrorCodeEngineFailure, tts.CodeOf(err))
	assert.ErrorContains(t, err, "model missing")
	assert.Empty(t, player.Plays())
}

func TestSpeaker_TextTooLong(t *testing.T) {
	engine := engines.NewMockEngine()
	s, err := tts.NewSpeaker(tts.SpeakerConfig{Engine: tooShort{engine}, Player: audio.NewMockPlayer()})
	require.NoError(t, err)

	err = s.Speak(context.Background(), strings.Repeat("a", 11), tts.SpeakOptions{Volume: 100})
	assert.Equal(t, tts.ErrorCodeTextTooLong, tts.CodeOf(err))
}

func TestSpeaker_PlaybackCanceled(t *testing.T) {
	s, _, player := newSpeaker(t, nil)
	player.Speed = 1

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	text := strings.Repeat("word ", 100)
	err := s.Speak(ctx, text, tts.SpeakOptions{Volume: 100})
	assert.Equal(t, tts.ErrorCodeCanceled, tts.CodeOf(err))
	assert.ErrorIs(t, err, tts.ErrCanceled)
	assert.False(t, s.Speaking())
}

func TestSpeaker_PlayError(t *testing.T) {
	s, _, player := newSpeaker(t, nil)
	player.PlayErr = errors.New("no device")

	err := s.Speak(context.Background(), "hi", tts.SpeakOptions{Volume: 100})
	assert.Equal(t, tts.ErrorCodeAudioDevice, tts.CodeOf(err))
}

// tooShort limits the mock engine to ten characters.
type tooShort struct{ *engines.MockEngine }

func (e tooShort) Info() tts.EngineInfo {
	info := e.MockEngine.Info()
	info.MaxTextSize = 10
	return info
}
