// Package testutil holds helpers shared by package tests.
package testutil

import "regexp"

// ansiRegex matches CSI escape sequences such as color codes.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes terminal escape sequences so tests can compare
// plain text regardless of the active theme.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
