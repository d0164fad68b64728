package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltin_Get(t *testing.T) {
	set := Builtin()
	th, err := set.Get("rho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.SiteTitle != "Pollard's Rho" {
		t.Errorf("expected rho site title, got %q", th.SiteTitle)
	}
	if th.Palette(Dark).Primary != "#9881F3" {
		t.Errorf("expected dark primary, got %q", th.Palette(Dark).Primary)
	}
	if th.CodeStyleName(Light) != "xcode" {
		t.Errorf("expected xcode code style, got %q", th.CodeStyleName(Light))
	}
}

func TestSet_GetUnknown(t *testing.T) {
	_, err := Builtin().Get("nope")
	if !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"", Light, false},
		{"LIGHT", Light, false},
		{" dark ", Dark, false},
		{"sepia", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSet_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	data := `
notes:
  siteLogo: /static/notes.svg
  colors:
    light: {primary: "#111111", accent: "#222222"}
    dark: {primary: "#eeeeee", accent: "#dddddd"}
  codeStyle:
    light: github
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	set := Builtin()
	if err := set.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	th, err := set.Get("notes")
	if err != nil {
		t.Fatalf("expected loaded theme: %v", err)
	}
	if th.Name != "notes" {
		t.Errorf("expected name from key, got %q", th.Name)
	}
	if th.SiteTitle != "Constellate" {
		t.Errorf("expected default site title, got %q", th.SiteTitle)
	}
	if th.CodeStyleName(Light) != "github" || th.CodeStyleName(Dark) != "onedark" {
		t.Errorf("unexpected code styles %q / %q", th.CodeStyleName(Light), th.CodeStyleName(Dark))
	}
	if len(set.Names()) != 3 {
		t.Errorf("expected 3 themes, got %v", set.Names())
	}
}

func TestSet_LoadFileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	if err := os.WriteFile(path, []byte("x:\n  colour: red\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Builtin().LoadFile(path); err == nil {
		t.Error("expected strict parsing to reject unknown field")
	}
}
