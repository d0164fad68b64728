// Package theme defines the site color themes. The active theme and color
// mode are plain configuration values handed to the renderer.
package theme

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	ErrUnknownTheme     = errors.New("unknown theme")
	ErrInvalidColorMode = errors.New("invalid color mode")
)

// ColorMode selects the light or dark palette.
type ColorMode string

const (
	Light ColorMode = "light"
	Dark  ColorMode = "dark"
)

// ParseColorMode accepts "light" or "dark" in any case.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "light":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColorMode, s)
}

// IsDark reports whether the mode is dark.
func (m ColorMode) IsDark() bool { return m == Dark }

// Theme controls how every page looks.
type Theme struct {
	Name        string   `yaml:"-"`
	SiteTitle   string   `yaml:"siteTitle"`
	SiteLogo    string   `yaml:"siteLogo"`
	Stylesheets []string `yaml:"stylesheets"`
	Colors      Colors   `yaml:"colors"`
	Font        Font     `yaml:"font"`
	CodeStyle   Modes    `yaml:"codeStyle"`
}

// Modes holds one chroma style name per color mode.
type Modes struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// Colors holds the accent palette per color mode.
type Colors struct {
	Light Palette `yaml:"light"`
	Dark  Palette `yaml:"dark"`
}

// Palette is the accent pair for one color mode.
type Palette struct {
	Primary string `yaml:"primary"`
	Accent  string `yaml:"accent"`
}

// Font configures body and code typefaces.
type Font struct {
	Family          string `yaml:"family"`
	FamilyCode      string `yaml:"familyCode"`
	FeatureSettings string `yaml:"featureSettings"`
}

// Palette returns the color palette for mode.
func (t Theme) Palette(mode ColorMode) Palette {
	if mode.IsDark() {
		return t.Colors.Dark
	}
	return t.Colors.Light
}

// CodeStyleName returns the chroma style used for code in mode.
func (t Theme) CodeStyleName(mode ColorMode) string {
	if mode.IsDark() {
		if t.CodeStyle.Dark != "" {
			return t.CodeStyle.Dark
		}
		return "onedark"
	}
	if t.CodeStyle.Light != "" {
		return t.CodeStyle.Light
	}
	return "friendly"
}

// Set is a named collection of themes.
type Set map[string]Theme

// Builtin returns the themes shipped with the binary.
func Builtin() Set {
	return Set{
		"default": {
			Name:      "default",
			SiteTitle: "Constellate",
			SiteLogo:  "/static/star.svg",
			Stylesheets: []string{
				"https://fonts.googleapis.com/css2?family=Source+Code+Pro&family=Source+Sans+Pro:ital,wght@0,300;0,400;0,700;1,400;1,700&display=swap",
			},
			Colors: Colors{
				Light: Palette{Primary: "#215DB0", Accent: "#007067"},
				Dark:  Palette{Primary: "#4C90F0", Accent: "#13C9BA"},
			},
			Font: Font{
				Family:     "'Source Sans Pro', sans-serif",
				FamilyCode: "'Source Code Pro', monospace",
			},
			CodeStyle: Modes{Light: "friendly", Dark: "onedark"},
		},
		"rho": {
			Name:      "rho",
			SiteTitle: "Pollard's Rho",
			SiteLogo:  "/static/pollardsrho.svg",
			Stylesheets: []string{
				"https://use.typekit.net/ywt8hoe.css",
				"https://cdn.jsdelivr.net/npm/@xz/fonts@1/serve/cascadia-code.min.css",
			},
			Colors: Colors{
				Light: Palette{Primary: "#634DBF", Accent: "#7C327C"},
				Dark:  Palette{Primary: "#9881F3", Accent: "#BD6BBD"},
			},
			Font: Font{
				Family:          "'myriad-pro', sans-serif",
				FamilyCode:      "'Cascadia Code', monospace",
				FeatureSettings: "'liga' 1, 'kern' 1, 'tnum' 1",
			},
			CodeStyle: Modes{Light: "xcode", Dark: "dracula"},
		},
	}
}

// Get looks up a theme by name.
func (s Set) Get(name string) (Theme, error) {
	t, ok := s[name]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTheme, name, strings.Join(s.Names(), ", "))
	}
	return t, nil
}

// Names returns the sorted theme names.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile merges themes from a YAML file into s. Keys are theme names; a
// theme with an existing name replaces it.
//
//	mysite:
//	  siteTitle: My Notes
//	  colors:
//	    light: {primary: "#215DB0", accent: "#007067"}
func (s Set) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read themes: %w", err)
	}
	var file map[string]Theme
	if err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict()); err != nil {
		return fmt.Errorf("parse themes %s: %w", path, err)
	}
	for name, t := range file {
		t.Name = name
		if t.SiteTitle == "" {
			t.SiteTitle = "Constellate"
		}
		s[name] = t
	}
	return nil
}
