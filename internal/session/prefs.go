package session

import (
	"context"
	"sync"

	"boxboxd/internal/theme"
)

// Prefs holds the visitor's display preferences, independent of the
// authenticated session. First run defaults to light mode.
type Prefs struct {
	storage Storage

	mu   sync.Mutex
	mode theme.Mode
}

// NewPrefs builds a Prefs container in its default state.
func NewPrefs(storage Storage) *Prefs {
	return &Prefs{storage: storage, mode: theme.ModeLight}
}

// Restore loads the persisted display mode. Invalid persisted values are
// ignored in favor of the default.
func (p *Prefs) Restore(ctx context.Context) {
	raw, ok := p.storage.Get(ctx, KeyMode)
	if !ok {
		return
	}
	if raw != string(theme.ModeLight) && raw != string(theme.ModeDark) {
		return
	}
	p.mu.Lock()
	p.mode = theme.Mode(raw)
	p.mu.Unlock()
}

// Mode returns the current display mode.
func (p *Prefs) Mode() theme.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetMode sets and persists the display mode. Values outside the two-valued
// enum are normalised to light.
func (p *Prefs) SetMode(ctx context.Context, mode theme.Mode) {
	if mode != theme.ModeDark {
		mode = theme.ModeLight
	}
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()
	p.storage.Set(ctx, KeyMode, string(mode))
}

// Toggle flips between light and dark and persists the new value.
func (p *Prefs) Toggle(ctx context.Context) theme.Mode {
	p.mu.Lock()
	next := theme.ModeLight
	if p.mode == theme.ModeLight {
		next = theme.ModeDark
	}
	p.mode = next
	p.mu.Unlock()
	p.storage.Set(ctx, KeyMode, string(next))
	return next
}
