// Package main provides the entry point for the memegen CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/event"
	"github.com/dgnsrekt/memegen/internal/fit"
	"github.com/dgnsrekt/memegen/internal/meme"
	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/voice"
	"github.com/dgnsrekt/memegen/ui"
	"github.com/dgnsrekt/memegen/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	topText      string
	bottomText   string
	output       string
	frameWidth   int
	frameHeight  int
	fitMode      fit.Mode
	speak        bool
	ttsEngine    string
	voiceQuery   string
	volume       int
	tui          bool
	mouse        bool
	showAllFiles bool

	rootCmd = &cobra.Command{
		Use:   "memegen [IMAGE|DIR]",
		Short: "Caption images on the CLI, and read them aloud!",
		Long: paragraph(
			fmt.Sprintf("\nCaption images on the CLI, %s!", keyword("and read them aloud")),
		),
		Example: paragraph("memegen cat.jpg -T \"I CAN HAS\" -B \"CHEEZBURGER\" -o meme.png\n" +
			"memegen cat.jpg -T \"HELLO\" --tts piper --speak > meme.png\n" +
			"memegen ~/Pictures"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// An explicit config file that does not exist yet is created by the
	// config command.
	if cmd.Flags().Changed("config") {
		configFile = utils.ExpandPath(configFile)
		if _, err := os.Stat(configFile); err == nil {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("unable to read config file: %w", err)
			}
		}
	}

	// grab config values from Viper
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	output = utils.ExpandPath(viper.GetString("output"))
	frameWidth = viper.GetInt("frame.width")
	frameHeight = viper.GetInt("frame.height")
	volume = viper.GetInt("tts.volume")
	voiceQuery = viper.GetString("tts.voice")
	mouse = viper.GetBool("mouse")
	showAllFiles = viper.GetBool("all")
	ttsEngine = viper.GetString("tts.engine")

	if frameWidth <= 0 || frameHeight <= 0 {
		return fmt.Errorf("frame must be positive, got %dx%d", frameWidth, frameHeight)
	}
	if volume < 0 || volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", volume)
	}
	if viper.GetFloat64("caption.size") <= 0 {
		return fmt.Errorf("caption size must be positive, got %v", viper.GetFloat64("caption.size"))
	}
	if viper.GetInt("caption.outline") < 0 {
		return fmt.Errorf("caption outline must not be negative, got %d", viper.GetInt("caption.outline"))
	}

	var err error
	if fitMode, err = fit.ParseMode(viper.GetString("frame.mode")); err != nil {
		return err //nolint:wrapcheck
	}

	if ttsEngine != "" {
		if _, err := tts.ValidateEngineSelection(ttsEngine); err != nil {
			return fmt.Errorf("TTS validation failed: %w", err)
		}
	} else if speak {
		return fmt.Errorf("cannot speak: %w", tts.ErrNoEngineConfigured)
	}

	if output != "" && output != "-" {
		if _, err := canvas.FormatFromPath(output); err != nil {
			return err //nolint:wrapcheck
		}
	}
	return nil
}

func sessionConfig(speaker meme.Speaker, publisher event.Publisher) meme.Config {
	style := canvas.DefaultCaptionStyle()
	style.Size = viper.GetFloat64("caption.size")
	style.TopBaseline = viper.GetInt("caption.top_baseline")
	style.BottomMargin = viper.GetInt("caption.bottom_margin")
	style.Outline = viper.GetInt("caption.outline")

	return meme.Config{
		Width:     frameWidth,
		Height:    frameHeight,
		Mode:      fitMode,
		Style:     style,
		Speaker:   speaker,
		Publisher: publisher,
	}
}

func execute(cmd *cobra.Command, args []string) error {
	isTerminal := term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec

	var path string
	if len(args) == 1 {
		path = utils.ExpandPath(args[0])
	}

	if tui || cmd.Flags().Changed("tui") {
		return runTUI(path)
	}

	// TUI with possible dir argument
	info, err := os.Stat(path)
	if path == "" || (err == nil && info.IsDir()) {
		if !isTerminal {
			return errors.New("an image is required when output is not a terminal")
		}
		if path != "" {
			if p, err := filepath.Abs(path); err == nil {
				path = p
			}
		}
		return runTUI(path)
	}
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}

	captioned := cmd.Flags().Changed("top") || cmd.Flags().Changed("bottom")
	if !captioned && output == "" && isTerminal && !speak {
		return runTUI(path)
	}

	if output == "" && isTerminal {
		return errors.New("refusing to write an image to the terminal: use --out or redirect stdout")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return executeCLI(ctx, path, os.Stdout)
}

// executeCLI runs the one-shot pipeline: load, caption, encode and
// optionally read aloud.
func executeCLI(ctx context.Context, path string, w io.Writer) error {
	broker := event.NewBroker(16)
	defer logEvents(broker)()

	var sp *speech
	if speak {
		var err error
		if sp, err = openSpeech(ttsEngine, broker); err != nil {
			return err
		}
		defer func() { _ = sp.Close() }()
	}

	var speaker meme.Speaker
	if sp != nil {
		speaker = sp.speaker
	}
	session := meme.NewSession(sessionConfig(speaker, broker))

	placement, err := session.LoadFile(path)
	if err != nil {
		return err //nolint:wrapcheck
	}
	orientation, _ := session.Orientation()
	log.Debug("image placed", "file", path, "rect", placement.Rect(), "orientation", orientation)

	if err := session.Generate(topText, bottomText); err != nil {
		return err //nolint:wrapcheck
	}

	if err := writeMeme(session, w); err != nil {
		return err
	}

	if sp == nil {
		return nil
	}
	if err := sp.catalog.Populate(ctx); err != nil {
		return err //nolint:wrapcheck
	}
	if err := selectVoice(sp.catalog, voiceQuery); err != nil {
		return err
	}
	opts := tts.SpeakOptions{Volume: volume}
	if v, ok := sp.catalog.Selected(); ok {
		opts.Voice = v
	}
	return session.Read(ctx, opts) //nolint:wrapcheck
}

func writeMeme(session *meme.Session, stdout io.Writer) error {
	if output == "" || output == "-" {
		if err := canvas.Encode(stdout, session.Image(), canvas.PNG); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
		return nil
	}

	format, err := canvas.FormatFromPath(output)
	if err != nil {
		return err //nolint:wrapcheck
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	if err := canvas.Encode(f, session.Image(), format); err != nil {
		_ = f.Close()
		return err //nolint:wrapcheck
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}

	if info, err := os.Stat(output); err == nil {
		fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", output, humanize.Bytes(uint64(info.Size()))) //nolint:gosec
	}
	return nil
}

// logEvents mirrors broker traffic into the log. The returned func
// releases the handlers.
func logEvents(broker *event.Broker) func() {
	_ = broker.Subscribe(event.StateChanged, func(s meme.State) {
		log.Debug("meme state changed", "state", s)
	})
	_ = broker.Subscribe(event.SpeechDone, func(r event.SpeechResult) {
		if r.Err != nil {
			log.Error("speech failed", "chars", len(r.Text), "error", r.Err)
			return
		}
		log.Debug("speech done", "chars", len(r.Text))
	})
	_ = broker.Subscribe(event.Error, func(e *event.ErrorEvent) {
		log.Error(e.String())
	})
	return func() {
		broker.Close(event.StateChanged)
		broker.Close(event.SpeechDone)
		broker.Close(event.Error)
	}
}

func runTUI(path string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = path
	cfg.ShowAllFiles = showAllFiles
	cfg.EnableMouse = mouse
	cfg.Top = topText
	cfg.Bottom = bottomText
	cfg.Volume = volume
	if output != "" && output != "-" {
		cfg.Output = output
	}

	broker := event.NewBroker(16)
	defer logEvents(broker)()

	// The editor still works without speech.
	sp, speechErr := openSpeech(ttsEngine, broker)
	defer func() { _ = sp.Close() }()

	var speaker meme.Speaker
	if sp != nil {
		speaker = sp.speaker
		cfg.TTSEngine = string(sp.kind)
	}
	session := meme.NewSession(sessionConfig(speaker, broker))

	// Registered before the program so the selection is in place when the
	// picker refreshes.
	if sp != nil && voiceQuery != "" {
		sp.catalog.OnChange(func([]voice.Voice) {
			if err := selectVoice(sp.catalog, voiceQuery); err != nil {
				log.Warn("voice not found", "voice", voiceQuery, "error", err)
			}
		})
	}
	program := ui.NewProgram(cfg, session, sp.voices(), broker)
	if speechErr != nil {
		broker.PublishError("speech disabled", speechErr)
	}

	// Run Bubble Tea program
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVar(&ttsEngine, "tts", "", "speech engine (piper/gtts/mock)")
	rootCmd.PersistentFlags().Bool("debug", false, "write debug output to the log file")
	rootCmd.Flags().StringVarP(&topText, "top", "T", "", "top caption")
	rootCmd.Flags().StringVarP(&bottomText, "bottom", "B", "", "bottom caption")
	rootCmd.Flags().StringVarP(&output, "out", "o", "", "write the meme to a .png or .jpg file (default stdout)")
	rootCmd.Flags().IntVar(&frameWidth, "width", 400, "frame width in pixels")
	rootCmd.Flags().IntVar(&frameHeight, "height", 400, "frame height in pixels")
	rootCmd.Flags().String("mode", string(fit.ModeClassic), "fit mode (classic/contain)")
	rootCmd.Flags().Int("outline", 0, "caption outline width in pixels")
	rootCmd.Flags().BoolVarP(&speak, "speak", "s", false, "read the captions aloud")
	rootCmd.Flags().StringVar(&voiceQuery, "voice", "", "voice index or name (see memegen voices)")
	rootCmd.Flags().IntVar(&volume, "volume", 100, "speech volume (0-100)")
	rootCmd.Flags().BoolVarP(&tui, "tui", "t", false, "open the editor")
	rootCmd.Flags().BoolVarP(&showAllFiles, "all", "a", false, "browse ignored and hidden images (TUI-mode only)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("tts.engine", rootCmd.PersistentFlags().Lookup("tts"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("frame.width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("frame.height", rootCmd.Flags().Lookup("height"))
	_ = viper.BindPFlag("frame.mode", rootCmd.Flags().Lookup("mode"))
	_ = viper.BindPFlag("caption.outline", rootCmd.Flags().Lookup("outline"))
	_ = viper.BindPFlag("tts.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("tts.volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("all", rootCmd.Flags().Lookup("all"))

	setDefaults()

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd)
}

func setDefaults() {
	viper.SetDefault("frame.width", 400)
	viper.SetDefault("frame.height", 400)
	viper.SetDefault("frame.mode", string(fit.ModeClassic))
	viper.SetDefault("caption.size", 35)
	viper.SetDefault("caption.top_baseline", 35)
	viper.SetDefault("caption.bottom_margin", 5)
	viper.SetDefault("caption.outline", 0)
	viper.SetDefault("all", false)

	// TTS defaults
	viper.SetDefault("tts.engine", "")
	viper.SetDefault("tts.voice", "")
	viper.SetDefault("tts.volume", 100)
	viper.SetDefault("tts.cache.dir", "")
	viper.SetDefault("tts.cache.max_size", 100)
	viper.SetDefault("tts.piper.binary", "piper")
	viper.SetDefault("tts.piper.voices_dir", "")
	viper.SetDefault("tts.piper.model", "")
	viper.SetDefault("tts.gtts.language", "en")
	viper.SetDefault("tts.gtts.slow", false)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "memegen")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "memegen")}, dirs...)
	}

	if c := os.Getenv("MEMEGEN_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("memegen")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("memegen")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], "memegen.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
