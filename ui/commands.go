package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"

	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/meme"
	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/voice"
)

func loadImageCmd(session *meme.Session, path string) tea.Cmd {
	return func() tea.Msg {
		p, err := session.LoadFile(path)
		return imageLoadedMsg{path: path, placement: p, err: err}
	}
}

func populateVoicesCmd(catalog *voice.Catalog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return voicesLoadedMsg{err: catalog.Populate(ctx)}
	}
}

func readCmd(ctx context.Context, session *meme.Session, opts tts.SpeakOptions) tea.Cmd {
	return func() tea.Msg {
		log.Debug("reading meme aloud", "voice", opts.Voice.ID, "volume", opts.Volume)
		return readDoneMsg{err: session.Read(ctx, opts)}
	}
}

func saveCmd(session *meme.Session, path string) tea.Cmd {
	return func() tea.Msg {
		format, err := canvas.FormatFromPath(path)
		if err != nil {
			return savedMsg{path: path, err: err}
		}
		f, err := os.Create(path)
		if err != nil {
			return savedMsg{path: path, err: fmt.Errorf("create %s: %w", path, err)}
		}
		if err := canvas.Encode(f, session.Image(), format); err != nil {
			_ = f.Close()
			return savedMsg{path: path, err: err}
		}
		if err := f.Close(); err != nil {
			return savedMsg{path: path, err: err}
		}
		info, err := os.Stat(path)
		if err != nil {
			return savedMsg{path: path, err: err}
		}
		log.Info("meme saved", "file", path, "size", info.Size())
		return savedMsg{path: path, size: info.Size()}
	}
}

func copyPathCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(path)}
	}
}

func findLocalFiles(m commonModel) tea.Cmd {
	return func() tea.Msg {
		log.Info("findLocalFiles")
		var (
			cwd = m.cfg.Path
			err error
		)

		if cwd == "" {
			cwd, err = os.Getwd()
		} else {
			var info os.FileInfo
			info, err = os.Stat(cwd)
			if err == nil {
				if !info.IsDir() {
					cwd = filepath.Dir(cwd)
				}
				cwd, err = filepath.Abs(cwd)
			}
		}

		// Note that this is one error check for both cases above
		if err != nil {
			log.Error("error finding local files", "error", err)
			return errMsg{err}
		}

		log.Debug("local directory is", "cwd", cwd)

		// Switch between FindFiles and FindAllFiles to bypass .gitignore rules
		var ch chan gitcha.SearchResult
		if m.cfg.ShowAllFiles {
			ch, err = gitcha.FindAllFilesExcept(cwd, imageExtensions, nil)
		} else {
			ch, err = gitcha.FindFilesExcept(cwd, imageExtensions, ignorePatterns(m))
		}

		if err != nil {
			log.Error("error finding local files", "error", err)
			return errMsg{err}
		}

		return initLocalFileSearchMsg{ch: ch, cwd: cwd}
	}
}

func findNextLocalFile(m model) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-m.localFileFinder

		if ok {
			// Okay now find the next one
			return foundLocalFileMsg(res)
		}
		// We're done
		log.Debug("local file search finished")
		return localFileSearchFinished{}
	}
}

// ignorePatterns skips dependency and cache trees, and the home directory's
// library folders when browsing from $HOME.
func ignorePatterns(m commonModel) []string {
	patterns := []string{"node_modules", ".git", ".cache"}
	if m.cfg.HomeDir != "" {
		patterns = append(patterns,
			filepath.Join(m.cfg.HomeDir, "Library"),
			filepath.Join(m.cfg.HomeDir, ".local"),
		)
	}
	return patterns
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// statusLine summarizes the session: state, placement, and the last save.
func statusLine(session *meme.Session, savedPath string, savedSize int64) string {
	parts := []string{session.State().String()}
	if p, ok := session.Placement(); ok {
		o, _ := session.Orientation()
		parts = append(parts, fmt.Sprintf("%s %.0fx%.0f at %.0f,%.0f",
			o, p.RenderWidth, p.RenderHeight, p.OffsetX, p.OffsetY))
	}
	if savedPath != "" {
		parts = append(parts, fmt.Sprintf("saved %s (%s)",
			filepath.Base(savedPath), humanize.Bytes(uint64(savedSize)))) //nolint:gosec
	}
	return strings.Join(parts, " · ")
}
