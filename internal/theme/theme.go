// Package theme maps a favorite-team identifier and a display mode to a
// concrete color palette. Resolution is pure: palettes are never cached by
// callers, so a change of team or mode can never leave a stale theme behind.
package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "embed"
)

// Mode selects the light or dark variant of a team palette.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode normalises a persisted mode value. Anything unrecognised falls
// back to light, matching first-run behavior.
func ParseMode(value string) Mode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeDark):
		return ModeDark
	default:
		return ModeLight
	}
}

// DefaultKey is the sentinel team used when a visitor has no favorite team
// or the stored key is unknown.
const DefaultKey = "default"

// Palette contains the resolved styling primitives for one team and mode.
type Palette struct {
	Key          string
	Mode         Mode
	Primary      string
	PrimaryLight string
	PrimaryDark  string
	Secondary    string
}

// Option represents a selectable team exposed to the settings form.
type Option struct {
	Value string
	Label string
}

type teamEntry struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Light paletteSpec `json:"light"`
	Dark  paletteSpec `json:"dark"`
}

type paletteSpec struct {
	Primary      string `json:"primary"`
	PrimaryLight string `json:"primaryLight"`
	PrimaryDark  string `json:"primaryDark"`
	Secondary    string `json:"secondary"`
}

type catalogueFile struct {
	Teams []teamEntry `json:"teams"`
}

//go:embed teams.json
var embeddedCatalogue []byte

var (
	catalogue map[string]map[Mode]Palette
	options   []Option
)

func init() {
	if err := loadCatalogue(embeddedCatalogue); err != nil {
		panic(fmt.Sprintf("theme: embedded catalogue is invalid: %v", err))
	}
}

// LoadFile replaces the team catalogue with one read from path. Intended to
// be called once at startup, before the server accepts traffic; team lists
// have drifted between deployments, so the set ships as data rather than
// code.
func LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("theme: read catalogue: %w", err)
	}
	if err := loadCatalogue(raw); err != nil {
		return err
	}
	return nil
}

func loadCatalogue(raw []byte) error {
	var file catalogueFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("theme: parse catalogue: %w", err)
	}
	if len(file.Teams) == 0 {
		return fmt.Errorf("theme: catalogue contains no teams")
	}

	next := make(map[string]map[Mode]Palette, len(file.Teams))
	nextOptions := make([]Option, 0, len(file.Teams))
	for _, entry := range file.Teams {
		key := strings.ToLower(strings.TrimSpace(entry.Key))
		if key == "" {
			return fmt.Errorf("theme: catalogue entry missing key")
		}
		next[key] = map[Mode]Palette{
			ModeLight: buildPalette(key, ModeLight, entry.Light),
			ModeDark:  buildPalette(key, ModeDark, entry.Dark),
		}
		nextOptions = append(nextOptions, Option{Value: key, Label: entry.Label})
	}
	if _, ok := next[DefaultKey]; !ok {
		return fmt.Errorf("theme: catalogue must contain a %q entry", DefaultKey)
	}

	catalogue = next
	options = nextOptions
	return nil
}

func buildPalette(key string, mode Mode, spec paletteSpec) Palette {
	return Palette{
		Key:          key,
		Mode:         mode,
		Primary:      spec.Primary,
		PrimaryLight: spec.PrimaryLight,
		PrimaryDark:  spec.PrimaryDark,
		Secondary:    spec.Secondary,
	}
}

// Resolve returns the palette for the provided team key and mode. Unknown
// or empty keys fall back to the default team; unknown modes fall back to
// light.
func Resolve(teamKey string, mode Mode) Palette {
	if mode != ModeDark {
		mode = ModeLight
	}
	normalized := strings.ToLower(strings.TrimSpace(teamKey))
	variants, ok := catalogue[normalized]
	if !ok {
		variants = catalogue[DefaultKey]
	}
	return variants[mode]
}

// Options exposes the selectable teams for rendering in a form control, in
// catalogue order.
func Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}
