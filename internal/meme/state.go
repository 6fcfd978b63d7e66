package meme

import (
	"errors"
	"fmt"
)

// State is the stage a session is in.
type State int

const (
	// StateEmpty has no image; only loading is possible.
	StateEmpty State = iota
	// StateImageLoaded has a fitted image and no captions yet.
	StateImageLoaded
	// StateTextComposed has captions drawn over the image.
	StateTextComposed
	// StateCleared follows Clear: the surface is blank and captions may be
	// drawn onto it again.
	StateCleared
)

// String returns the state as shown on the status line.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateImageLoaded:
		return "image loaded"
	case StateTextComposed:
		return "text composed"
	case StateCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Controls reports which buttons are enabled. Loading an image is always
// enabled and is not listed.
type Controls struct {
	Generate bool
	Clear    bool
	Read     bool
}

// Controls returns the buttons enabled in s.
func (s State) Controls() Controls {
	switch s {
	case StateImageLoaded, StateCleared:
		return Controls{Generate: true}
	case StateTextComposed:
		return Controls{Clear: true, Read: true}
	default:
		return Controls{}
	}
}

// Command names a user action.
type Command string

const (
	CommandLoad     Command = "load"
	CommandGenerate Command = "generate"
	CommandClear    Command = "clear"
	CommandRead     Command = "read"
)

// Allowed reports whether cmd may run in s.
func (s State) Allowed(cmd Command) bool {
	c := s.Controls()
	switch cmd {
	case CommandLoad:
		return true
	case CommandGenerate:
		return c.Generate
	case CommandClear:
		return c.Clear
	case CommandRead:
		return c.Read
	default:
		return false
	}
}

var (
	// ErrNotAllowed is wrapped by every rejected command.
	ErrNotAllowed = errors.New("command not allowed")
	// ErrNoImage is additionally wrapped when a command needs an image and
	// none is loaded.
	ErrNoImage = errors.New("no image loaded")
)

// TransitionError reports a command rejected in a state.
type TransitionError struct {
	Command Command
	State   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: session is %s", e.Command, e.State)
}

// Unwrap returns ErrNotAllowed, plus ErrNoImage for an empty session.
func (e *TransitionError) Unwrap() []error {
	if e.State == StateEmpty {
		return []error{ErrNotAllowed, ErrNoImage}
	}
	return []error{ErrNotAllowed}
}
