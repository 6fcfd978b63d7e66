package audio

import (
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		expectErr bool
	}{
		{
			name:   "default",
			config: DefaultConfig(),
		},
		{
			name:   "48000Hz stereo",
			config: Config{SampleRate: 48000, Channels: 2, BitDepth: 16, BufferSize: 8192},
		},
		{
			name:      "piper rate is not a device rate",
			config:    Config{SampleRate: 22050, Channels: 1, BitDepth: 16, BufferSize: 4096},
			expectErr: true,
		},
		{
			name:      "invalid channels",
			config:    Config{SampleRate: 44100, Channels: 3, BitDepth: 16, BufferSize: 4096},
			expectErr: true,
		},
		{
			name:      "invalid bit depth",
			config:    Config{SampleRate: 44100, Channels: 1, BitDepth: 24, BufferSize: 4096},
			expectErr: true,
		},
		{
			name:      "invalid buffer size",
			config:    Config{SampleRate: 44100, Channels: 1, BitDepth: 16},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewPlayerRejectsInvalidConfig(t *testing.T) {
	if _, err := NewPlayer(Config{SampleRate: 8000}); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateStopped: "stopped",
		StatePlaying: "playing",
		StateClosed:  "closed",
		State(42):    "unknown",
	}
	for s, want := range states {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
