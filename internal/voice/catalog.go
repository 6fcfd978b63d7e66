package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/memegen/internal/event"
)

// Catalog holds the voices offered by a provider and the user's selection.
//
// A catalog without a provider stays disabled: speech is not available and
// the picker keeps showing its placeholder. Once a populate call returns at
// least one voice the placeholder is replaced by the list.
type Catalog struct {
	provider  Provider
	publisher event.Publisher

	mu        sync.RWMutex
	voices    []Voice
	selected  int
	enabled   bool
	listeners []func([]Voice)
}

// NewCatalog creates a catalog. provider may be nil when no speech engine
// is configured; publisher may be nil.
func NewCatalog(provider Provider, publisher event.Publisher) *Catalog {
	if publisher == nil {
		publisher = event.Discard{}
	}
	return &Catalog{provider: provider, publisher: publisher}
}

// Populate queries the provider and replaces the list. The selection is
// kept when the previously selected voice is still present, otherwise the
// default voice (or the first one) is selected.
func (c *Catalog) Populate(ctx context.Context) error {
	if c.provider == nil {
		return nil
	}

	voices, err := c.provider.Voices(ctx)
	if err != nil {
		return fmt.Errorf("list voices: %w", err)
	}

	c.mu.Lock()
	previous := ""
	if c.selected >= 0 && c.selected < len(c.voices) {
		previous = c.voices[c.selected].ID
	}
	c.voices = append([]Voice(nil), voices...)
	c.enabled = true
	c.selected = c.indexOf(previous)
	if c.selected < 0 {
		c.selected = c.defaultIndex()
	}
	listeners := append([]func([]Voice){}, c.listeners...)
	snapshot := append([]Voice(nil), c.voices...)
	c.mu.Unlock()

	log.Debug("voices populated", "count", len(snapshot))
	for _, fn := range listeners {
		fn(snapshot)
	}
	c.publisher.Publish(event.VoicesChanged, snapshot)
	return nil
}

// OnChange registers fn to run after every successful Populate.
func (c *Catalog) OnChange(fn func([]Voice)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Enabled reports whether speech synthesis is available at all.
func (c *Catalog) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Voices returns a copy of the list.
func (c *Catalog) Voices() []Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Voice(nil), c.voices...)
}

// Len returns the number of voices.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.voices)
}

// At returns the voice at index.
func (c *Catalog) At(index int) (Voice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.voices) {
		return Voice{}, false
	}
	return c.voices[index], true
}

// Select makes the voice at index the selected one.
func (c *Catalog) Select(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.voices) {
		return fmt.Errorf("voice index %d out of range (have %d voices)", index, len(c.voices))
	}
	c.selected = index
	return nil
}

// SelectedIndex returns the index of the selected voice, or -1.
func (c *Catalog) SelectedIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.voices) == 0 {
		return -1
	}
	return c.selected
}

// Selected returns the selected voice. ok is false when the list is empty.
func (c *Catalog) Selected() (Voice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected < 0 || c.selected >= len(c.voices) {
		return Voice{}, false
	}
	return c.voices[c.selected], true
}

// Find returns the index of the voice whose ID matches query, or whose
// name matches it case-insensitively.
func (c *Catalog) Find(query string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(query); i >= 0 {
		return i
	}
	for i, v := range c.voices {
		if strings.EqualFold(v.Name, query) {
			return i
		}
	}
	return -1
}

// Filter returns the indices of voices whose label fuzzy-matches query,
// best match first. An empty query returns every index in order.
func (c *Catalog) Filter(query string) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if strings.TrimSpace(query) == "" {
		all := make([]int, len(c.voices))
		for i := range all {
			all[i] = i
		}
		return all
	}

	labels := make([]string, len(c.voices))
	for i, v := range c.voices {
		labels[i] = v.Label()
	}
	matches := fuzzy.Find(query, labels)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}
	return out
}

func (c *Catalog) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, v := range c.voices {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (c *Catalog) defaultIndex() int {
	for i, v := range c.voices {
		if v.Default {
			return i
		}
	}
	return 0
}
