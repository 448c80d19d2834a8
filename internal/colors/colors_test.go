package colors

import (
	"bytes"
	"testing"
)

func TestPaletteDisabled(t *testing.T) {
	var p Palette
	for _, f := range []func(string) string{p.Staged, p.Modified, p.Deleted, p.Untracked, p.CommitID, p.Current, p.SectionHeader} {
		if got := f("x"); got != "x" {
			t.Errorf("disabled palette changed text: %q", got)
		}
	}
}

func TestPaletteEnabled(t *testing.T) {
	p := Palette{Enabled: true}
	if got := p.Deleted("gone"); got != BrightRed+"gone"+ColorReset {
		t.Errorf("Deleted = %q", got)
	}
	if got := p.SectionHeader("=== Branches ==="); got != ColorBold+"=== Branches ==="+ColorReset {
		t.Errorf("SectionHeader = %q", got)
	}
}

func TestForWriter(t *testing.T) {
	if ForWriter(&bytes.Buffer{}, true).Enabled {
		t.Error("a buffer is never a terminal")
	}
	if ForWriter(&bytes.Buffer{}, false).Enabled {
		t.Error("colors must stay off unless requested")
	}
}
