package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/memegen/internal/voice"
)

const (
	noVoicesPlaceholder = "No voices available"
	pickerRows          = 5
)

// pickerModel selects a voice from the catalog. Typing narrows the list
// with a fuzzy filter; up and down move the selection.
type pickerModel struct {
	catalog *voice.Catalog
	filter  textinput.Model
	matches []int // catalog indices, best match first
	cursor  int   // position in matches
	width   int
	focused bool
}

func newPickerModel(catalog *voice.Catalog) pickerModel {
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "type to search"
	ti.CharLimit = 64

	p := pickerModel{catalog: catalog, filter: ti, width: 40}
	p.refresh()
	return p
}

func (p *pickerModel) focus() tea.Cmd {
	p.focused = true
	return p.filter.Focus()
}

func (p *pickerModel) blur() {
	p.focused = false
	p.filter.Blur()
}

// refresh recomputes matches and keeps the cursor on the catalog's
// selection when it is still visible.
func (p *pickerModel) refresh() {
	if p.catalog == nil {
		p.matches = nil
		p.cursor = 0
		return
	}
	p.matches = p.catalog.Filter(p.filter.Value())
	p.cursor = 0
	sel := p.catalog.SelectedIndex()
	for i, idx := range p.matches {
		if idx == sel {
			p.cursor = i
			break
		}
	}
}

func (p *pickerModel) move(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = (p.cursor + delta + len(p.matches)) % len(p.matches)
	_ = p.catalog.Select(p.matches[p.cursor])
}

func (p pickerModel) update(msg tea.Msg) (pickerModel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "ctrl+k":
			p.move(-1)
			return p, nil
		case "down", "ctrl+j":
			p.move(1)
			return p, nil
		}
	}

	before := p.filter.Value()
	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	if p.filter.Value() != before {
		p.refresh()
		if len(p.matches) > 0 {
			_ = p.catalog.Select(p.matches[p.cursor])
		}
	}
	return p, cmd
}

func (p pickerModel) view() string {
	if p.catalog == nil || !p.catalog.Enabled() || p.catalog.Len() == 0 {
		return subtleStyle.Render(noVoicesPlaceholder)
	}

	var b strings.Builder
	if p.focused {
		b.WriteString(p.filter.View())
		b.WriteByte('\n')
	}

	if len(p.matches) == 0 {
		b.WriteString(subtleStyle.Render("no matches"))
		return b.String()
	}

	// Keep the cursor inside the visible window.
	start := 0
	if p.cursor >= pickerRows {
		start = p.cursor - pickerRows + 1
	}
	end := min(start+pickerRows, len(p.matches))
	if !p.focused {
		start, end = p.cursor, p.cursor+1
	}

	indexWidth := runewidth.StringWidth(fmt.Sprint(p.catalog.Len() - 1))
	labelWidth := max(p.width-indexWidth-4, 8)

	for i := start; i < end; i++ {
		idx := p.matches[i]
		v, ok := p.catalog.At(idx)
		if !ok {
			continue
		}
		label := truncate.StringWithTail(v.Label(), uint(labelWidth), ellipsis) //nolint:gosec
		line := runewidth.FillLeft(fmt.Sprint(idx), indexWidth) + "  " + label
		if i == p.cursor {
			b.WriteString(selectedVoiceStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
