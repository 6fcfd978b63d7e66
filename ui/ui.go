// Package ui provides the interactive meme editor.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/gitcha"
	te "github.com/muesli/termenv"

	"github.com/dgnsrekt/memegen/internal/event"
	"github.com/dgnsrekt/memegen/internal/fit"
	"github.com/dgnsrekt/memegen/internal/meme"
	"github.com/dgnsrekt/memegen/internal/tts"
	"github.com/dgnsrekt/memegen/internal/voice"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "saved!"
	ellipsis             = "…"
	volumeStep           = 5
)

var imageExtensions = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.tif", "*.tiff",
}

// NewProgram returns a new Tea program editing session. catalog may be nil
// when speech is disabled. Errors published on broker, if given, are shown
// in the status line.
func NewProgram(cfg Config, session *meme.Session, catalog *voice.Catalog, broker *event.Broker) *tea.Program {
	log.Debug(
		"Starting memegen",
		"path",
		cfg.Path,
		"engine",
		cfg.TTSEngine,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, session, catalog)
	p := tea.NewProgram(m, opts...)
	if catalog != nil {
		catalog.OnChange(func(v []voice.Voice) {
			p.Send(voicesChangedMsg(v))
		})
	}
	if broker != nil {
		err := broker.Subscribe(event.Error, func(e *event.ErrorEvent) {
			p.Send(errMsg{errors.New(e.String())})
		})
		if err != nil {
			log.Warn("not showing broker errors", "error", err)
		}
	}
	return p
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	initLocalFileSearchMsg struct {
		cwd string
		ch  chan gitcha.SearchResult
	}
	foundLocalFileMsg       gitcha.SearchResult
	localFileSearchFinished struct{}
)

type (
	imageLoadedMsg struct {
		path      string
		placement fit.Placement
		err       error
	}
	readDoneMsg      struct{ err error }
	voicesChangedMsg []voice.Voice
	voicesLoadedMsg  struct{ err error }
	savedMsg         struct {
		path string
		size int64
		err  error
	}
	copiedMsg               struct{ err error }
	statusMessageTimeoutMsg struct{}
)

// focusArea is the part of the editor receiving key presses.
type focusArea int

const (
	focusImage focusArea = iota
	focusTop
	focusBottom
	focusVoice
	focusAreas
)

func (f focusArea) String() string {
	return map[focusArea]string{
		focusImage:  "image",
		focusTop:    "top",
		focusBottom: "bottom",
		focusVoice:  "voice",
	}[f]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	cwd    string
	width  int
	height int
}

type model struct {
	common   *commonModel
	session  *meme.Session
	catalog  *voice.Catalog
	fatalErr error

	focus  focusArea
	inputs [focusVoice]textinput.Model
	picker pickerModel
	volume int

	spinner    spinner.Model
	speaking   bool
	cancelRead context.CancelFunc

	// Images found in the working directory
	// (via the github.com/muesli/gitcha package)
	images          []string
	imageIndex      int
	localFileFinder chan gitcha.SearchResult

	imagePath string
	savedPath string
	savedSize int64

	statusMessage      string
	statusErr          error
	statusMessageTimer *time.Timer

	profile te.Profile
}

func newModel(cfg Config, session *meme.Session, catalog *voice.Catalog) model {
	if cfg.Output == "" {
		cfg.Output = "meme.png"
	}
	if cfg.Volume < 0 || cfg.Volume > 100 {
		cfg.Volume = 100
	}

	common := commonModel{cfg: cfg}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedVoiceStyle

	m := model{
		common:     &common,
		session:    session,
		catalog:    catalog,
		picker:     newPickerModel(catalog),
		volume:     cfg.Volume,
		spinner:    sp,
		imageIndex: -1,
		profile:    te.ColorProfile(),
	}

	placeholders := [focusVoice]string{"path/to/image.png", "TOP TEXT", "BOTTOM TEXT"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		m.inputs[i] = ti
	}
	m.inputs[focusTop].SetValue(cfg.Top)
	m.inputs[focusBottom].SetValue(cfg.Bottom)
	session.SetText(cfg.Top, cfg.Bottom)

	if cfg.Path != "" {
		if info, err := os.Stat(cfg.Path); err != nil {
			log.Error("unable to stat file", "file", cfg.Path, "error", err)
			m.fatalErr = err
		} else if !info.IsDir() {
			m.imagePath = cfg.Path
			m.inputs[focusImage].SetValue(cfg.Path)
		}
	}

	m.focus = focusImage
	if m.imagePath != "" {
		m.focus = focusTop
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, findLocalFiles(*m.common)}
	if m.imagePath != "" {
		cmds = append(cmds, loadImageCmd(m.session, m.imagePath))
	}
	if m.catalog != nil {
		cmds = append(cmds, populateVoicesCmd(m.catalog))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		// Ctrl+C always quits no matter where in the application you are.
		case "ctrl+c":
			m.stopReading()
			return m, tea.Quit

		case "esc":
			if m.speaking {
				m.stopReading()
				return m, nil
			}
			if m.focus == focusVoice {
				return m, m.setFocus(focusTop)
			}
			return m, tea.Quit

		case "ctrl+z":
			return m, tea.Suspend

		case "tab", "down":
			if msg.String() == "down" && m.focus == focusVoice {
				break
			}
			return m, m.setFocus((m.focus + 1) % focusAreas)

		case "shift+tab", "up":
			if msg.String() == "up" && m.focus == focusVoice {
				break
			}
			return m, m.setFocus((m.focus + focusAreas - 1) % focusAreas)

		case "ctrl+v":
			return m, m.setFocus(focusVoice)

		case "enter":
			if m.focus == focusImage {
				path := strings.TrimSpace(m.inputs[focusImage].Value())
				if path == "" {
					return m, nil
				}
				return m, loadImageCmd(m.session, path)
			}
			return m, m.generate()

		case "ctrl+g":
			return m, m.generate()

		case "ctrl+x":
			return m, m.clear()

		case "ctrl+r":
			return m, m.read()

		case "ctrl+s":
			return m, m.save()

		case "ctrl+y":
			if m.savedPath == "" {
				return m, nil
			}
			return m, copyPathCmd(m.savedPath)

		case "ctrl+n":
			return m, m.cycleImage(1)

		case "ctrl+p":
			return m, m.cycleImage(-1)

		case "left":
			if m.focus == focusVoice {
				m.volume = max(m.volume-volumeStep, 0)
				return m, nil
			}

		case "right":
			if m.focus == focusVoice {
				m.volume = min(m.volume+volumeStep, 100)
				return m, nil
			}
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.picker.width = max(msg.Width/2, 20)
		for i := range m.inputs {
			m.inputs[i].Width = max(msg.Width-12, 10)
		}
		return m, nil

	case errMsg:
		m.setError(msg.err)
		return m, nil

	case initLocalFileSearchMsg:
		m.localFileFinder = msg.ch
		m.common.cwd = msg.cwd
		return m, findNextLocalFile(m)

	case foundLocalFileMsg:
		m.images = append(m.images, msg.Path)
		if msg.Path == m.imagePath {
			m.imageIndex = len(m.images) - 1
		}
		return m, findNextLocalFile(m)

	case localFileSearchFinished:
		log.Debug("image search finished", "count", len(m.images))
		return m, nil

	case imageLoadedMsg:
		if msg.err != nil {
			log.Error("unable to load image", "file", msg.path, "error", msg.err)
			m.setError(msg.err)
			return m, nil
		}
		m.imagePath = msg.path
		m.inputs[focusImage].SetValue(stripAbsolutePath(msg.path, m.common.cwd))
		cmds = append(cmds, m.setStatus(fmt.Sprintf("loaded %s", filepath.Base(msg.path))))
		if m.focus == focusImage {
			cmds = append(cmds, m.setFocus(focusTop))
		}
		return m, tea.Batch(cmds...)

	case voicesChangedMsg:
		m.picker.refresh()
		return m, nil

	case voicesLoadedMsg:
		if msg.err != nil {
			log.Warn("unable to list voices", "error", msg.err)
			m.setError(msg.err)
		}
		m.picker.refresh()
		return m, nil

	case readDoneMsg:
		m.speaking = false
		if m.cancelRead != nil {
			m.cancelRead()
			m.cancelRead = nil
		}
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) && tts.CodeOf(msg.err) != tts.ErrorCodeCanceled {
			log.Error("speech failed", "error", msg.err)
			m.setError(msg.err)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			log.Error("unable to save meme", "file", msg.path, "error", msg.err)
			m.setError(msg.err)
			return m, nil
		}
		m.savedPath = msg.path
		m.savedSize = msg.size
		return m, m.setStatus("saved " + filepath.Base(msg.path))

	case copiedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		return m, m.setStatus("copied path to clipboard")

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
		return m, nil

	case spinner.TickMsg:
		if !m.speaking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Process children
	switch m.focus {
	case focusVoice:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.update(msg)
		cmds = append(cmds, cmd)
	default:
		before := m.inputs[m.focus].Value()
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
		if m.focus != focusImage && m.inputs[m.focus].Value() != before {
			m.session.SetText(m.inputs[focusTop].Value(), m.inputs[focusBottom].Value())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) setFocus(f focusArea) tea.Cmd {
	if m.focus == focusVoice {
		m.picker.blur()
	} else {
		m.inputs[m.focus].Blur()
	}
	m.focus = f
	if f == focusVoice {
		return m.picker.focus()
	}
	return m.inputs[f].Focus()
}

// generate draws the captions. A disabled button does nothing.
func (m *model) generate() tea.Cmd {
	if !m.session.Controls().Generate {
		return nil
	}
	top, bottom := m.inputs[focusTop].Value(), m.inputs[focusBottom].Value()
	if err := m.session.Generate(top, bottom); err != nil {
		m.setError(err)
		return nil
	}
	log.Debug("captions drawn", "top", top, "bottom", bottom)
	return m.setStatus("meme generated")
}

func (m *model) clear() tea.Cmd {
	if !m.session.Controls().Clear {
		return nil
	}
	m.stopReading()
	if err := m.session.Clear(); err != nil {
		m.setError(err)
		return nil
	}
	m.imagePath = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	return tea.Batch(m.setFocus(focusImage), m.setStatus("cleared"))
}

func (m *model) read() tea.Cmd {
	if !m.canRead() || m.speaking {
		return nil
	}
	opts := tts.SpeakOptions{Volume: m.volume}
	if v, ok := m.catalog.Selected(); ok {
		opts.Voice = v
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRead = cancel
	m.speaking = true
	m.statusErr = nil
	return tea.Batch(m.spinner.Tick, readCmd(ctx, m.session, opts))
}

func (m model) canRead() bool {
	return m.session.Controls().Read &&
		m.session.CanSpeak() &&
		m.catalog != nil &&
		m.catalog.Enabled() &&
		m.catalog.Len() > 0
}

func (m *model) stopReading() {
	if m.cancelRead != nil {
		m.cancelRead()
		m.cancelRead = nil
	}
}

func (m *model) save() tea.Cmd {
	if m.session.State() == meme.StateEmpty {
		return nil
	}
	path := m.common.cfg.Output
	if !filepath.IsAbs(path) && m.common.cwd != "" {
		path = filepath.Join(m.common.cwd, path)
	}
	return saveCmd(m.session, path)
}

func (m *model) cycleImage(delta int) tea.Cmd {
	if len(m.images) == 0 {
		return nil
	}
	if m.imageIndex < 0 && delta < 0 {
		m.imageIndex = 0
	}
	m.imageIndex = (m.imageIndex + delta + len(m.images)) % len(m.images)
	return loadImageCmd(m.session, m.images[m.imageIndex])
}

func (m *model) setError(err error) {
	m.statusErr = err
}

func (m *model) setStatus(s string) tea.Cmd {
	m.statusErr = nil
	m.statusMessage = s
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("memegen"))
	if m.common.cfg.TTSEngine != "" {
		b.WriteString(" " + subtleStyle.Render(m.common.cfg.TTSEngine))
	}
	b.WriteString("\n\n")

	labels := [focusVoice]string{"Image", "Top", "Bottom"}
	for i := range m.inputs {
		b.WriteString(m.label(focusArea(i), labels[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteByte('\n')
	}
	b.WriteString(m.label(focusVoice, "Voice"))
	b.WriteString(indentTail(m.picker.view(), 8))
	b.WriteByte('\n')
	b.WriteString(m.label(focusVoice, "Volume"))
	b.WriteString(volumeBar(m.volume, 20))
	b.WriteString("\n\n")

	b.WriteString(m.buttonsView())
	b.WriteString("\n\n")

	if preview := m.previewView(); preview != "" {
		b.WriteString(preview)
		b.WriteString("\n\n")
	}

	b.WriteString(m.statusView())
	return b.String()
}

func (m model) label(f focusArea, s string) string {
	if m.focus == f {
		return focusedLabelStyle.Render(s)
	}
	return labelStyle.Render(s)
}

func (m model) buttonsView() string {
	c := m.session.Controls()
	save := m.session.State() != meme.StateEmpty
	read := m.canRead() && !m.speaking
	return button("Generate", c.Generate) +
		button("Clear", c.Clear) +
		button("Read", read) +
		button("Save", save)
}

func button(s string, enabled bool) string {
	if enabled {
		return buttonStyle.Render(s)
	}
	return disabledButtonStyle.Render(s)
}

func (m model) previewView() string {
	if m.session.State() == meme.StateEmpty {
		return ""
	}
	cols := m.common.cfg.PreviewWidth
	if cols <= 0 {
		cols = 40
		if m.common.width > 0 {
			cols = min(m.common.width-2, 80)
		}
	}
	return renderPreview(m.session.Image(), cols, m.profile)
}

func (m model) statusView() string {
	if m.statusErr != nil {
		return errorMessageStyle.Render(m.statusErr.Error())
	}
	if m.speaking {
		return m.spinner.View() + " reading aloud… " + subtleStyle.Render("esc to stop")
	}
	if m.statusMessage != "" {
		return statusMessageStyle.Render(" " + m.statusMessage + " ")
	}
	return statusBarStyle.Render(" " + statusLine(m.session, m.savedPath, m.savedSize) + " ")
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}

// indentTail indents every line but the first.
func indentTail(s string, n int) string {
	return strings.ReplaceAll(s, "\n", "\n"+strings.Repeat(" ", n))
}

func stripAbsolutePath(fullPath, cwd string) string {
	if cwd == "" {
		return fullPath
	}
	fp, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return fullPath
	}
	cp, _ := filepath.EvalSymlinks(cwd)
	return strings.ReplaceAll(fp, cp+string(os.PathSeparator), "")
}

// volumeBar renders v (0..100) as a slider cells wide.
func volumeBar(v, cells int) string {
	filled := v * cells / 100
	return selectedVoiceStyle.Render(strings.Repeat("━", filled)) +
		subtleStyle.Render(strings.Repeat("─", cells-filled)) +
		fmt.Sprintf(" %3d%%", v)
}
