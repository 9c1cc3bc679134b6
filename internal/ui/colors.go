package ui

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorMagenta() string   { return GetCurrentTheme().Info }
func ColorCyan() string      { return GetCurrentTheme().Secondary }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }

// Paint wraps s in the given escape sequence and a reset. It returns s
// unchanged when colors are disabled.
func Paint(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + ColorReset()
}
