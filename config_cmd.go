package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# where to write the meme when --out is not given (default stdout)
# output: "meme.png"
# show ignored and hidden images when browsing (TUI-mode only)
all: false
# mouse support (TUI-mode only)
mouse: false

# drawing surface
frame:
  width: 400
  height: 400
  # classic: portrait fills the height, others fill the width; contain: letterbox
  mode: "classic"

# caption text
caption:
  size: 35
  top_baseline: 35
  bottom_margin: 5
  # outline width in pixels, 0 for plain white text
  outline: 0

# text-to-speech
tts:
  # engine: piper, gtts or mock; empty disables Read
  engine: ""
  # voice index or name, see "memegen voices"
  voice: ""
  # 0 to 100
  volume: 100

  cache:
    # dir: "~/.cache/memegen"
    # MB on disk
    max_size: 100

  piper:
    binary: "piper"
    # directory scanned for *.onnx voices; watched for changes
    voices_dir: ""
    # model: "~/piper/en_US-lessac-medium.onnx"

  gtts:
    language: "en"
    slow: false
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the memegen config file",
	Long:    paragraph(fmt.Sprintf("\n%s the memegen config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("memegen config\nmemegen config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("memegen", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
