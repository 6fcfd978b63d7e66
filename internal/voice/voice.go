package voice

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// Voice describes a voice a speech engine can synthesize with.
type Voice struct {
	// ID is what the engine needs to select the voice (a model path for
	// piper, a language code for gTTS).
	ID string
	// Name is the human readable voice name.
	Name string
	// Lang is a BCP 47 language tag such as "en-US".
	Lang string
	// Default marks the engine's preferred voice.
	Default bool
	// Engine names the engine that owns the voice.
	Engine string
}

// Label renders the voice the way the picker lists it.
func (v Voice) Label() string {
	label := v.Name + " (" + v.Lang + ")"
	if v.Default {
		label += " -- DEFAULT"
	}
	return label
}

// Provider lists the voices available on this machine.
type Provider interface {
	Voices(ctx context.Context) ([]Voice, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) ([]Voice, error)

// Voices implements Provider.
func (f ProviderFunc) Voices(ctx context.Context) ([]Voice, error) {
	return f(ctx)
}

// NormalizeLang turns codes such as "en_US" into BCP 47 tags ("en-US").
// Unparseable codes are returned with underscores replaced.
func NormalizeLang(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return "und"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}
