// Package colors provides terminal color support for gitlet output.
//
// Output is plain unless a Palette is enabled, so the default rendering of
// every command stays byte-for-byte stable.
package colors

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
	BrightCyan   = "\033[96m"
)

// Palette colorizes text when enabled.
type Palette struct {
	Enabled bool
}

// ForWriter returns a palette that is enabled only if want is set and w is a
// terminal that supports colors.
func ForWriter(w io.Writer, want bool) Palette {
	if !want {
		return Palette{}
	}
	f, ok := w.(*os.File)
	return Palette{Enabled: ok && shouldUseColor(f)}
}

// shouldUseColor determines if the terminal supports colors
func shouldUseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	term := strings.ToLower(os.Getenv("TERM"))
	if runtime.GOOS == "windows" {
		return os.Getenv("WT_SESSION") != "" || os.Getenv("VSCODE_PID") != "" ||
			strings.Contains(term, "color") || strings.Contains(term, "xterm")
	}
	if term == "dumb" || term == "" {
		return false
	}

	if fileInfo, err := f.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (p Palette) colorize(text, color string) string {
	if !p.Enabled {
		return text
	}
	return color + text + ColorReset
}

// Status-based coloring functions
func (p Palette) Staged(text string) string    { return p.colorize(text, BrightGreen) }
func (p Palette) Modified(text string) string  { return p.colorize(text, BrightBlue) }
func (p Palette) Deleted(text string) string   { return p.colorize(text, BrightRed) }
func (p Palette) Untracked(text string) string { return p.colorize(text, BrightYellow) }

// Commit ids in log output
func (p Palette) CommitID(text string) string { return p.colorize(text, BrightYellow) }

// Current branch marker in status
func (p Palette) Current(text string) string { return p.colorize(text, BrightCyan) }

// Section headers with colors
func (p Palette) SectionHeader(text string) string {
	return p.colorize(text, ColorBold)
}
