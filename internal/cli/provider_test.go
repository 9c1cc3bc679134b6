package cli

import (
	"testing"

	"github.com/agbru/bigcalc/internal/ui"
)

// Not parallel: swaps the process-wide theme.
func TestCLIColorProvider(t *testing.T) {
	defer ui.SetCurrentTheme(ui.GetCurrentTheme())
	provider := CLIColorProvider{}

	ui.SetCurrentTheme(ui.DarkTheme)
	if provider.Yellow() != ui.DarkTheme.Warning || provider.Reset() != ui.DarkTheme.Reset {
		t.Error("provider does not follow the dark theme")
	}

	ui.SetCurrentTheme(ui.NoColorTheme)
	if provider.Yellow() != "" || provider.Reset() != "" {
		t.Error("provider emitted codes with colors disabled")
	}
}
