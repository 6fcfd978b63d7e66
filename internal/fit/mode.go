package fit

import (
	"fmt"
	"strings"
)

// Mode selects the placement strategy used by the canvas.
type Mode string

const (
	// ModeClassic uses Fit: portrait sources fill the height, everything
	// else fills the width.
	ModeClassic Mode = "classic"
	// ModeContain uses Contain and never overflows the frame.
	ModeContain Mode = "contain"
)

// ParseMode converts a configuration value into a Mode. An empty string
// selects ModeClassic.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeClassic:
		return ModeClassic, nil
	case ModeContain:
		return ModeContain, nil
	default:
		return "", fmt.Errorf("unknown fit mode %q (use %q or %q)", s, ModeClassic, ModeContain)
	}
}

// Apply validates the inputs and computes the placement for the mode.
func (m Mode) Apply(frame Frame, source Source) (Placement, error) {
	if m != ModeContain {
		return Compute(frame, source)
	}
	if err := frame.Validate(); err != nil {
		return Placement{}, err
	}
	if err := source.Validate(); err != nil {
		return Placement{}, err
	}
	return Contain(frame.Width, frame.Height, source.Width, source.Height), nil
}
