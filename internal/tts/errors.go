package tts

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEngineConfigured indicates no TTS engine has been selected.
	ErrNoEngineConfigured = errors.New("no TTS engine configured - specify --tts piper, --tts gtts or --tts mock")

	// ErrInvalidEngine indicates an unknown engine was specified.
	ErrInvalidEngine = errors.New("invalid TTS engine specified")

	// ErrSpeechUnavailable is returned by the speaker when speech is
	// disabled, i.e. no engine or no audio device.
	ErrSpeechUnavailable = errors.New("speech synthesis is not available")

	// ErrAudioDeviceUnavailable indicates the audio device cannot be opened.
	ErrAudioDeviceUnavailable = errors.New("audio device unavailable")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates an operation was canceled.
	ErrCanceled = errors.New("operation canceled")
)

// ErrorCode identifies specific error types.
type ErrorCode string

const (
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeEngineTimeout     ErrorCode = "ENGINE_TIMEOUT"

	ErrorCodeAudioFailure ErrorCode = "AUDIO_FAILURE"
	ErrorCodeAudioDevice  ErrorCode = "AUDIO_DEVICE"

	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorCodeTextTooLong  ErrorCode = "TEXT_TOO_LONG"

	ErrorCodeTimeout  ErrorCode = "TIMEOUT"
	ErrorCodeCanceled ErrorCode = "CANCELED"
)

// TTSError represents a TTS-specific error with additional context.
type TTSError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// NewTTSError creates a new TTS error.
func NewTTSError(code ErrorCode, message string, cause error) *TTSError {
	return &TTSError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface.
func (e *TTSError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *TTSError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *TTSError) WithContext(key string, value interface{}) *TTSError {
	e.Context[key] = value
	return e
}

// IsFatal reports whether speech should be disabled after this error.
func (e *TTSError) IsFatal() bool {
	switch e.Code {
	case ErrorCodeEngineUnavailable, ErrorCodeAudioDevice:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether the same request may succeed later.
func (e *TTSError) IsRetryable() bool {
	switch e.Code {
	case ErrorCodeTimeout, ErrorCodeEngineTimeout:
		return true
	default:
		return false
	}
}

// CodeOf returns the code of the first TTSError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var te *TTSError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
