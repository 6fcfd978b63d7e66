package meme

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/event"
	"github.com/dgnsrekt/memegen/internal/fit"
	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/tts/engines"
	"github.com/dgnsrekt/memegen/internal/voice"
)

type fakeSpeaker struct {
	texts []string
	opts  []tts.SpeakOptions
	err   error
}

func (f *fakeSpeaker) Speak(_ context.Context, text string, opts tts.SpeakOptions) error {
	f.texts = append(f.texts, text)
	f.opts = append(f.opts, opts)
	return f.err
}

func photo(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 200, G: 100, B: 50, A: 255}}, image.Point{}, draw.Src)
	return img
}

func TestState_Controls(t *testing.T) {
	tests := []struct {
		state State
		want  Controls
	}{
		{StateEmpty, Controls{}},
		{StateImageLoaded, Controls{Generate: true}},
		{StateTextComposed, Controls{Clear: true, Read: true}},
		{StateCleared, Controls{Generate: true}},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Controls())
			assert.True(t, tt.state.Allowed(CommandLoad))
			assert.False(t, tt.state.Allowed(Command("dance")))
		})
	}
	assert.Equal(t, "unknown", State(7).String())
}

func TestSession_FullCycle(t *testing.T) {
	sp := &fakeSpeaker{}
	s := NewSession(Config{Width: 400, Height: 400, Speaker: sp})
	assert.Equal(t, StateEmpty, s.State())
	assert.Equal(t, Controls{}, s.Controls())

	p, err := s.Load(photo(800, 400))
	require.NoError(t, err)
	assert.Equal(t, fit.Placement{RenderWidth: 400, RenderHeight: 200, OffsetY: 100}, p)
	assert.Equal(t, StateImageLoaded, s.State())
	assert.Equal(t, Controls{Generate: true}, s.Controls())

	require.NoError(t, s.Generate("ONE DOES NOT", "SIMPLY"))
	assert.Equal(t, StateTextComposed, s.State())
	assert.Equal(t, Controls{Clear: true, Read: true}, s.Controls())

	opts := tts.SpeakOptions{Voice: voice.Voice{ID: "v1"}, Volume: 70}
	require.NoError(t, s.Read(context.Background(), opts))
	assert.Equal(t, []string{"ONE DOES NOTSIMPLY"}, sp.texts)
	assert.Equal(t, opts, sp.opts[0])
	assert.Equal(t, StateTextComposed, s.State(), "reading does not change state")

	require.NoError(t, s.Clear())
	assert.Equal(t, StateCleared, s.State())
	assert.Equal(t, Controls{Generate: true}, s.Controls())
	_, ok := s.Orientation()
	assert.False(t, ok)
	top, bottom := s.Text()
	assert.Empty(t, top)
	assert.Empty(t, bottom)
	_, ok = s.Placement()
	assert.False(t, ok)
	assert.Nil(t, s.Source())
	assert.Equal(t, color.RGBA{}, s.Image().RGBAAt(200, 200))
}

func TestSession_RejectedCommands(t *testing.T) {
	s := NewSession(DefaultConfig())

	err := s.Generate("a", "b")
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.ErrorIs(t, err, ErrNoImage)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CommandGenerate, te.Command)
	assert.Equal(t, StateEmpty, te.State)
	assert.Equal(t, "cannot generate: session is empty", err.Error())

	assert.ErrorIs(t, s.Clear(), ErrNotAllowed)
	assert.ErrorIs(t, s.Read(context.Background(), tts.SpeakOptions{}), ErrNoImage)

	_, err = s.Load(photo(100, 100))
	require.NoError(t, err)

	err = s.Clear()
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.NotErrorIs(t, err, ErrNoImage)
	assert.ErrorIs(t, s.Read(context.Background(), tts.SpeakOptions{}), ErrNotAllowed)

	require.NoError(t, s.Generate("a", "b"))
	assert.ErrorIs(t, s.Generate("c", "d"), ErrNotAllowed)
	top, bottom := s.Text()
	assert.Equal(t, "a", top)
	assert.Equal(t, "b", bottom)
}

func TestSession_LoadInEveryState(t *testing.T) {
	s := NewSession(DefaultConfig())

	_, err := s.Load(photo(100, 200))
	require.NoError(t, err)
	require.NoError(t, s.Generate("top", "bottom"))

	// Loading a new image drops the drawn captions but keeps the fields.
	p, err := s.Load(photo(300, 100))
	require.NoError(t, err)
	assert.Equal(t, StateImageLoaded, s.State())
	assert.Equal(t, image.Rect(0, 133, 400, 267), p.Rect())
	o, ok := s.Orientation()
	require.True(t, ok)
	assert.Equal(t, fit.Landscape, o)
	top, bottom := s.Text()
	assert.Equal(t, "top", top)
	assert.Equal(t, "bottom", bottom)
}

func TestSession_LoadErrorKeepsState(t *testing.T) {
	s := NewSession(DefaultConfig())
	_, err := s.Load(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, fit.ErrInvalidDimension)
	assert.Equal(t, StateEmpty, s.State())

	_, err = s.LoadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Equal(t, StateEmpty, s.State())
}

func TestSession_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portrait.jpg")
	require.NoError(t, imaging.Save(photo(1080, 1920), path))

	s := NewSession(DefaultConfig())
	p, err := s.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(88, 0, 313, 400), p.Rect())
	assert.NotNil(t, s.Source())
}

func TestSession_SetText(t *testing.T) {
	sp := &fakeSpeaker{}
	s := NewSession(Config{Speaker: sp})
	_, err := s.Load(photo(10, 10))
	require.NoError(t, err)
	require.NoError(t, s.Generate("a", "b"))

	s.SetText("edited ", "later")
	require.NoError(t, s.Read(context.Background(), tts.SpeakOptions{Volume: 100}))
	assert.Equal(t, []string{"edited later"}, sp.texts)
}

func TestSession_ReadWithoutSpeaker(t *testing.T) {
	s := NewSession(DefaultConfig())
	assert.False(t, s.CanSpeak())
	_, err := s.Load(photo(10, 10))
	require.NoError(t, err)
	require.NoError(t, s.Generate("a", "b"))
	assert.ErrorIs(t, s.Read(context.Background(), tts.SpeakOptions{}), tts.ErrSpeechUnavailable)
}

func TestSession_ReadError(t *testing.T) {
	boom := errors.New("engine down")
	s := NewSession(Config{Speaker: &fakeSpeaker{err: boom}})
	_, err := s.Load(photo(10, 10))
	require.NoError(t, err)
	require.NoError(t, s.Generate("a", "b"))
	assert.ErrorIs(t, s.Read(context.Background(), tts.SpeakOptions{}), boom)
}

func TestSession_ReadAloudWithMockEngine(t *testing.T) {
	player := audio.NewMockPlayer()
	speaker, err := tts.NewSpeaker(tts.SpeakerConfig{Engine: engines.NewMockEngine(), Player: player})
	require.NoError(t, err)

	s := NewSession(Config{Speaker: speaker})
	_, err = s.Load(photo(640, 480))
	require.NoError(t, err)
	require.NoError(t, s.Generate("TOP", "BOTTOM"))
	require.NoError(t, s.Read(context.Background(), tts.SpeakOptions{Volume: 50}))

	require.Len(t, player.Plays(), 1)
	assert.Equal(t, []float64{0.5}, player.Volumes())
}

func TestSession_PublishesTransitions(t *testing.T) {
	broker := event.NewBroker(16)
	states := make(chan State, 8)
	require.NoError(t, broker.Subscribe(event.StateChanged, func(s State) { states <- s }))
	defer broker.Close(event.StateChanged)

	s := NewSession(Config{Publisher: broker})
	_, err := s.Load(photo(10, 10))
	require.NoError(t, err)
	require.NoError(t, s.Generate("a", "b"))
	require.NoError(t, s.Clear())

	var got []State
	for len(got) < 3 {
		select {
		case st := <-states:
			got = append(got, st)
		case <-time.After(2 * time.Second):
			t.Fatalf("only received %v", got)
		}
	}
	assert.Equal(t, []State{StateImageLoaded, StateTextComposed, StateCleared}, got)
}

func TestSession_PublishesSpeechResult(t *testing.T) {
	broker := event.NewBroker(4)
	results := make(chan event.SpeechResult, 1)
	require.NoError(t, broker.Subscribe(event.SpeechDone, func(r event.SpeechResult) { results <- r }))
	defer broker.Close(event.SpeechDone)

	s := NewSession(Config{Speaker: &fakeSpeaker{}, Publisher: broker})
	_, err := s.Load(photo(10, 10))
	require.NoError(t, err)
	require.NoError(t, s.Generate("ONE ", "TWO"))
	require.NoError(t, s.Read(context.Background(), tts.SpeakOptions{Volume: 100}))

	select {
	case r := <-results:
		assert.Equal(t, "ONE TWO", r.Text)
		assert.NoError(t, r.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no speech result published")
	}
}

func TestSession_GenerateAfterClear(t *testing.T) {
	sp := &fakeSpeaker{}
	s := NewSession(Config{Width: 400, Height: 400, Speaker: sp})
	_, err := s.Load(photo(800, 400))
	require.NoError(t, err)
	require.NoError(t, s.Generate("FIRST", "MEME"))
	require.NoError(t, s.Clear())

	assert.ErrorIs(t, s.Clear(), ErrNotAllowed)
	assert.ErrorIs(t, s.Read(context.Background(), tts.SpeakOptions{}), ErrNotAllowed)

	require.NoError(t, s.Generate("BLANK", "SLATE"))
	assert.Equal(t, StateTextComposed, s.State())
	assert.Nil(t, s.Source())

	// Captions only; the center of the frame stays transparent.
	img := s.Image()
	assert.Equal(t, color.RGBA{}, img.RGBAAt(200, 200))
	drawn := false
	for x := 0; x < 400 && !drawn; x++ {
		for y := 0; y < 80; y++ {
			if img.RGBAAt(x, y).A != 0 {
				drawn = true
				break
			}
		}
	}
	assert.True(t, drawn, "top caption drawn on the cleared surface")

	require.NoError(t, s.Read(context.Background(), tts.SpeakOptions{Volume: 100}))
	assert.Equal(t, []string{"BLANKSLATE"}, sp.texts)
}
