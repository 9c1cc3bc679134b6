// Package ui holds the terminal color themes shared by the CLI, the REPL and
// the error handler.
package ui

import (
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ThemeEnv selects a theme by name when colors are enabled.
const ThemeEnv = "BIGCALC_THEME"

// Theme maps output roles to ANSI escape sequences.
type Theme struct {
	Name string
	// Primary highlights headings and expression echoes.
	Primary string
	// Secondary is used for labels and separators.
	Secondary string
	// Success marks results and matching backends.
	Success string
	Warning string
	Error   string
	// Info marks durations and sizes.
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme has every sequence empty.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// LookupTheme returns the theme registered under name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// SetTheme activates the named theme, falling back to dark for unknown names.
func SetTheme(name string) {
	t, ok := LookupTheme(name)
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme picks the theme for this process. Colors are disabled when
// noColor is set, when NO_COLOR is present, or when fatih/color has decided
// stdout is not a color terminal. Otherwise BIGCALC_THEME may choose light.
func InitTheme(noColor bool) {
	_, noColorEnv := os.LookupEnv("NO_COLOR")
	if noColor || noColorEnv || color.NoColor {
		color.NoColor = true
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnv))
}

// Enabled reports whether the active theme emits escape sequences.
func Enabled() bool { return GetCurrentTheme().Reset != "" }
