package tts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTTSError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewTTSError(ErrorCodeEngineFailure, "piper synthesis", cause).WithContext("model", "x.onnx")

	assert.Equal(t, "ENGINE_FAILURE: piper synthesis: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "x.onnx", err.Context["model"])
	assert.Equal(t, "INVALID_INPUT: bad", NewTTSError(ErrorCodeInvalidInput, "bad", nil).Error())

	wrapped := fmt.Errorf("read: %w", err)
	assert.Equal(t, ErrorCodeEngineFailure, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(cause))
}

func TestTTSError_Classification(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		fatal     bool
		retryable bool
	}{
		{ErrorCodeEngineUnavailable, true, false},
		{ErrorCodeAudioDevice, true, false},
		{ErrorCodeTimeout, false, true},
		{ErrorCodeEngineTimeout, false, true},
		{ErrorCodeEngineFailure, false, false},
		{ErrorCodeInvalidInput, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewTTSError(tt.code, "x", nil)
			assert.Equal(t, tt.fatal, err.IsFatal())
			assert.Equal(t, tt.retryable, err.IsRetryable())
		})
	}
}

func TestValidateEngineSelection(t *testing.T) {
	tests := []struct {
		in   string
		want EngineKind
		err  error
	}{
		{"piper", EnginePiper, nil},
		{"gtts", EngineGTTS, nil},
		{"Google", EngineGTTS, nil},
		{" mock ", EngineMock, nil},
		{"", EngineNone, ErrNoEngineConfigured},
		{"espeak", EngineNone, ErrInvalidEngine},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateEngineSelection(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
