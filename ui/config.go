package ui

// Config contains TUI-specific configuration.
type Config struct {
	ShowAllFiles bool `env:"MEMEGEN_SHOW_ALL_FILES"`
	EnableMouse  bool
	HomeDir      string `env:"HOME"`

	// Image file or directory to browse for images.
	Path string

	// Where ctrl+s writes the meme. The extension picks the format.
	Output string `env:"MEMEGEN_OUTPUT" envDefault:"meme.png"`

	// Initial caption text.
	Top    string
	Bottom string

	// Playback volume, 0..100.
	Volume int `env:"MEMEGEN_VOLUME" envDefault:"100"`

	// Width of the preview in terminal columns. Zero fits the window.
	PreviewWidth int `env:"MEMEGEN_PREVIEW_WIDTH"`

	// Name of the configured speech engine, shown in the header. Empty
	// when speech is disabled.
	TTSEngine string
}
