package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MockPlayer records what it is asked to play without touching a device.
// Playback of a buffer "lasts" Duration(pcm, SampleRate) scaled by
// Speed; a Speed of 0 finishes immediately.
type MockPlayer struct {
	SampleRate int
	Speed      float64
	// PlayErr is returned from Play when set.
	PlayErr error

	mu      sync.Mutex
	plays   [][]byte
	volume  float64
	volumes []float64
	until   time.Time
	stops   int
	closed  bool
}

// NewMockPlayer returns a mock that finishes playback immediately.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{SampleRate: 44100, volume: 1}
}

// Play records pcm.
func (m *MockPlayer) Play(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.PlayErr != nil {
		return m.PlayErr
	}
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}

	m.plays = append(m.plays, append([]byte(nil), pcm...))
	m.volumes = append(m.volumes, m.volume)
	length := time.Duration(float64(Duration(pcm, m.SampleRate)) * m.Speed)
	m.until = time.Now().Add(length)
	return nil
}

// Wait blocks until the simulated playback is over or ctx is done.
func (m *MockPlayer) Wait(ctx context.Context) error {
	m.mu.Lock()
	remaining := time.Until(m.until)
	m.mu.Unlock()

	if remaining <= 0 {
		return nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		_ = m.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stop ends the simulated playback.
func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.until = time.Time{}
	m.stops++
	return nil
}

// SetVolume records the volume for the next Play.
func (m *MockPlayer) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	return nil
}

// IsPlaying reports whether the simulated playback is still running.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Now().Before(m.until)
}

// Close marks the player closed.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Plays returns copies of every buffer played so far.
func (m *MockPlayer) Plays() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.plays))
	copy(out, m.plays)
	return out
}

// Volumes returns the volume in effect at each Play.
func (m *MockPlayer) Volumes() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volumes...)
}

// Stops returns how many times Stop was called.
func (m *MockPlayer) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}
