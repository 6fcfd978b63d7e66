package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PiperProvider lists the piper voice models found in a directory. A model
// is a "<name>.onnx" file; its "<name>.onnx.json" companion, when present,
// supplies the language.
type PiperProvider struct {
	Dir string
	// DefaultModel is the model name or path marked as default. When empty
	// the first model found is the default.
	DefaultModel string
}

type piperModelConfig struct {
	Dataset  string `json:"dataset"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Audio struct {
		Quality    string `json:"quality"`
		SampleRate int    `json:"sample_rate"`
	} `json:"audio"`
}

// Voices implements Provider.
func (p PiperProvider) Voices(ctx context.Context) ([]Voice, error) {
	if p.Dir == "" {
		return p.explicitModel()
	}

	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p.explicitModel()
		}
		return nil, fmt.Errorf("read piper voice dir: %w", err)
	}

	var voices []Voice
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !IsPiperModel(entry.Name()) {
			continue
		}
		voices = append(voices, p.describe(filepath.Join(p.Dir, entry.Name())))
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].Name < voices[j].Name })

	p.markDefault(voices)
	return voices, nil
}

// explicitModel returns the configured model alone when no directory is
// scanned.
func (p PiperProvider) explicitModel() ([]Voice, error) {
	if p.DefaultModel == "" {
		return nil, nil
	}
	if _, err := os.Stat(p.DefaultModel); err != nil {
		return nil, fmt.Errorf("piper model: %w", err)
	}
	v := p.describe(p.DefaultModel)
	v.Default = true
	return []Voice{v}, nil
}

func (p PiperProvider) describe(modelPath string) Voice {
	name := strings.TrimSuffix(filepath.Base(modelPath), ".onnx")
	v := Voice{
		ID:     modelPath,
		Name:   name,
		Engine: "piper",
	}

	// Piper names voices "<lang>_<REGION>-<dataset>-<quality>".
	lang := name
	if i := strings.Index(name, "-"); i > 0 {
		lang = name[:i]
	}

	if b, err := os.ReadFile(modelPath + ".json"); err == nil {
		var cfg piperModelConfig
		if json.Unmarshal(b, &cfg) == nil && cfg.Language.Code != "" {
			lang = cfg.Language.Code
		}
	}
	v.Lang = NormalizeLang(lang)
	return v
}

func (p PiperProvider) markDefault(voices []Voice) {
	if len(voices) == 0 {
		return
	}
	want := strings.TrimSuffix(filepath.Base(p.DefaultModel), ".onnx")
	for i := range voices {
		if p.DefaultModel != "" && (voices[i].ID == p.DefaultModel || voices[i].Name == want) {
			voices[i].Default = true
			return
		}
	}
	voices[0].Default = true
}

// IsPiperModel reports whether name looks like a piper model file.
func IsPiperModel(name string) bool {
	return strings.HasSuffix(name, ".onnx")
}
