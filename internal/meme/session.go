package meme

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/event"
	"github.com/dgnsrekt/memegen/internal/fit"
	"github.com/dgnsrekt/memegen/internal/tts"
)

// Speaker reads text aloud. *tts.Speaker implements it.
type Speaker interface {
	Speak(ctx context.Context, text string, opts tts.SpeakOptions) error
}

// Config configures a Session.
type Config struct {
	Width, Height int
	Mode          fit.Mode
	Style         canvas.CaptionStyle
	// Speaker is optional; without it Read fails with
	// tts.ErrSpeechUnavailable.
	Speaker Speaker
	// Publisher receives state changes. Optional.
	Publisher event.Publisher
}

// DefaultConfig is a 400x400 classic frame with the default caption style.
func DefaultConfig() Config {
	return Config{
		Width:  400,
		Height: 400,
		Mode:   fit.ModeClassic,
		Style:  canvas.DefaultCaptionStyle(),
	}
}

// Session is one meme being composed. It is safe for concurrent use.
type Session struct {
	canvas    *canvas.Canvas
	style     canvas.CaptionStyle
	speaker   Speaker
	publisher event.Publisher

	mu        sync.Mutex
	state     State
	img       image.Image
	placement fit.Placement
	top       string
	bottom    string
}

// NewSession creates an empty session.
func NewSession(cfg Config) *Session {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 400, 400
	}
	if cfg.Style.Size == 0 {
		cfg.Style = canvas.DefaultCaptionStyle()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = event.Discard{}
	}

	c := canvas.New(cfg.Width, cfg.Height)
	c.SetMode(cfg.Mode)

	return &Session{
		canvas:    c,
		style:     cfg.Style,
		speaker:   cfg.Speaker,
		publisher: cfg.Publisher,
	}
}

// Load draws img fitted into the frame. It is allowed in every state and
// discards any drawn captions; the caption text is kept.
func (s *Session) Load(img image.Image) (fit.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.canvas.Draw(img)
	if err != nil {
		return fit.Placement{}, fmt.Errorf("load image: %w", err)
	}
	s.img = img
	s.placement = p
	s.transition(StateImageLoaded)
	return p, nil
}

// LoadFile decodes the image at path and loads it.
func (s *Session) LoadFile(path string) (fit.Placement, error) {
	img, err := canvas.LoadImage(path)
	if err != nil {
		return fit.Placement{}, err
	}
	return s.Load(img)
}

// Generate draws the captions over the loaded image, or over the blank
// surface after Clear.
func (s *Session) Generate(top, bottom string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(CommandGenerate); err != nil {
		return err
	}
	if err := s.canvas.DrawCaptions(top, bottom, s.style); err != nil {
		return fmt.Errorf("draw captions: %w", err)
	}
	s.top, s.bottom = top, bottom
	s.transition(StateTextComposed)
	return nil
}

// Clear wipes the canvas, drops the image and empties both captions. The
// session moves to StateCleared, where Generate stays enabled.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(CommandClear); err != nil {
		return err
	}
	s.canvas.Clear()
	s.img = nil
	s.placement = fit.Placement{}
	s.top, s.bottom = "", ""
	s.transition(StateCleared)
	return nil
}

// Read speaks the top caption followed directly by the bottom caption and
// blocks until playback ends. The outcome is published on
// event.SpeechDone.
func (s *Session) Read(ctx context.Context, opts tts.SpeakOptions) error {
	s.mu.Lock()
	if err := s.check(CommandRead); err != nil {
		s.mu.Unlock()
		return err
	}
	text := s.top + s.bottom
	s.mu.Unlock()

	if s.speaker == nil {
		return tts.ErrSpeechUnavailable
	}

	log.Debug("read", "chars", len(text), "voice", opts.Voice.ID, "volume", opts.Volume)
	err := s.speaker.Speak(ctx, text, opts)
	s.publisher.Publish(event.SpeechDone, event.SpeechResult{Text: text, Err: err})
	if err != nil {
		return fmt.Errorf("read captions: %w", err)
	}
	return nil
}

// SetText updates the caption fields without drawing them.
func (s *Session) SetText(top, bottom string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.top, s.bottom = top, bottom
}

// Text returns the caption fields.
func (s *Session) Text() (top, bottom string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.top, s.bottom
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Controls returns the enabled buttons.
func (s *Session) Controls() Controls {
	return s.State().Controls()
}

// CanSpeak reports whether Read can ever succeed.
func (s *Session) CanSpeak() bool {
	return s.speaker != nil
}

// Orientation reports the branch the loaded image was fitted with. ok is
// false when no image is loaded.
func (s *Session) Orientation() (o fit.Orientation, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return fit.Landscape, false
	}
	return fit.SourceOf(s.img.Bounds()).Orientation(), true
}

// Placement returns where the image was drawn. ok is false when no image
// is loaded.
func (s *Session) Placement() (p fit.Placement, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placement, s.img != nil
}

// Source returns the loaded image, or nil.
func (s *Session) Source() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Image returns a copy of the composed canvas.
func (s *Session) Image() *image.RGBA {
	return s.canvas.Image()
}

// Bounds returns the frame rectangle.
func (s *Session) Bounds() image.Rectangle {
	return s.canvas.Bounds()
}

// check must be called with the lock held.
func (s *Session) check(cmd Command) error {
	if !s.state.Allowed(cmd) {
		return &TransitionError{Command: cmd, State: s.state}
	}
	return nil
}

// transition must be called with the lock held.
func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	log.Debug("meme state", "from", from, "to", to)
	s.publisher.Publish(event.StateChanged, to)
}
