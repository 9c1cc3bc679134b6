package cli

import (
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/ui"
)

var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider feeds the active ui theme to the error handler.
type CLIColorProvider struct{}

func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
