package voice

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// GTTSLanguages are the gTTS language codes offered in the picker.
var GTTSLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "nl", "sv", "pl", "ru", "uk", "tr", "ja", "ko", "zh-CN", "hi",
}

// GTTSProvider offers one voice per gTTS language.
type GTTSProvider struct {
	// Default is the language code marked as default ("en" when empty).
	Default string
}

// Voices implements Provider.
func (p GTTSProvider) Voices(context.Context) ([]Voice, error) {
	def := p.Default
	if def == "" {
		def = "en"
	}

	namer := display.English.Tags()
	voices := make([]Voice, 0, len(GTTSLanguages))
	for _, code := range GTTSLanguages {
		name := code
		if tag, err := language.Parse(code); err == nil {
			name = namer.Name(tag)
		}
		voices = append(voices, Voice{
			ID:      code,
			Name:    "Google " + name,
			Lang:    NormalizeLang(code),
			Default: code == def,
			Engine:  "gtts",
		})
	}
	return voices, nil
}
