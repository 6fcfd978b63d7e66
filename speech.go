package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/cache"
	"github.com/dgnsrekt/memegen/internal/event"
	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/tts/engines"
	"github.com/dgnsrekt/memegen/internal/voice"
	"github.com/dgnsrekt/memegen/utils"
)

// speech is the configured synthesis stack. A nil *speech means speech is
// disabled.
type speech struct {
	kind    tts.EngineKind
	engine  tts.Engine
	speaker *tts.Speaker
	catalog *voice.Catalog
	cache   *cache.Manager
	watcher *voice.Watcher
	cancel  context.CancelFunc
}

func engineConfig() engines.Config {
	return engines.Config{
		Piper: engines.PiperConfig{
			Binary:    viper.GetString("tts.piper.binary"),
			VoicesDir: utils.ExpandPath(viper.GetString("tts.piper.voices_dir")),
			Model:     utils.ExpandPath(viper.GetString("tts.piper.model")),
		},
		GTTS: engines.GTTSConfig{
			Language: viper.GetString("tts.gtts.language"),
			Slow:     viper.GetBool("tts.gtts.slow"),
		},
	}
}

// newEngine creates the engine named by the --tts flag or tts.engine.
func newEngine(name string) (tts.EngineKind, tts.Engine, error) {
	kind, err := tts.ValidateEngineSelection(name)
	if err != nil {
		return kind, nil, err //nolint:wrapcheck
	}
	engine, err := engines.New(kind, engineConfig())
	if err != nil {
		return kind, nil, fmt.Errorf("unable to start %s: %w", kind, err)
	}
	return kind, engine, nil
}

// openSpeech builds the engine, audio player, cache and voice catalog. It
// returns nil when no engine is configured.
func openSpeech(name string, publisher event.Publisher) (*speech, error) {
	kind, engine, err := newEngine(name)
	if errors.Is(err, tts.ErrNoEngineConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	player, err := audio.NewPlayer(audio.DefaultConfig())
	if err != nil {
		_ = engine.Close()
		return nil, fmt.Errorf("%w: %w", tts.ErrAudioDeviceUnavailable, err)
	}

	s := &speech{kind: kind, engine: engine}

	speakerCfg := tts.SpeakerConfig{
		Engine:     engine,
		Player:     player,
		SampleRate: player.SampleRate(),
	}
	if mgr, err := openCache(); err != nil {
		log.Warn("speech cache disabled", "error", err)
	} else {
		s.cache = mgr
		speakerCfg.Cache = mgr
	}

	s.speaker, err = tts.NewSpeaker(speakerCfg)
	if err != nil {
		_ = engine.Close()
		_ = player.Close()
		return nil, err //nolint:wrapcheck
	}

	s.catalog = voice.NewCatalog(voice.ProviderFunc(engine.Voices), publisher)

	if dir := engineConfig().Piper.VoicesDir; kind == tts.EnginePiper && dir != "" {
		w, err := voice.NewWatcher(s.catalog, dir)
		if err != nil {
			log.Warn("not watching voices", "dir", dir, "error", err)
		} else {
			ctx, cancel := context.WithCancel(context.Background())
			s.watcher, s.cancel = w, cancel
			go w.Run(ctx)
		}
	}

	log.Info("speech enabled", "engine", kind, "rate", engine.Info().SampleRate)
	return s, nil
}

func openCache() (*cache.Manager, error) {
	dir := utils.ExpandPath(viper.GetString("tts.cache.dir"))
	if dir == "" {
		d, err := gap.NewScope(gap.User, "memegen").CacheDir()
		if err != nil {
			return nil, fmt.Errorf("unable to find cache directory: %w", err)
		}
		dir = d
	}
	cfg := cache.DefaultConfig(dir)
	if mb := viper.GetInt("tts.cache.max_size"); mb > 0 {
		cfg.DiskCapacity = int64(mb) << 20
	}
	return cache.NewManager(cfg) //nolint:wrapcheck
}

func (s *speech) Close() error {
	if s == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	errs = append(errs, s.speaker.Close())
	if s.cache != nil {
		st := s.cache.Stats()
		log.Debug("speech cache", "items", st.Items, "hit_rate", st.HitRate())
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}

// voices returns the catalog, or nil when speech is disabled.
func (s *speech) voices() *voice.Catalog {
	if s == nil {
		return nil
	}
	return s.catalog
}

// selectVoice selects the voice given by index or by ID or name.
func selectVoice(catalog *voice.Catalog, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if i, err := strconv.Atoi(query); err == nil {
		return catalog.Select(i) //nolint:wrapcheck
	}
	i := catalog.Find(query)
	if i < 0 {
		return fmt.Errorf("no voice named %q", query)
	}
	return catalog.Select(i) //nolint:wrapcheck
}
