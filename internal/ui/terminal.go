package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor returns true when ANSI colors should be used on stdout.
// GAVEL_COLOR=always|never wins; otherwise NO_COLOR, CLICOLOR_FORCE,
// CLICOLOR, and TTY detection apply in that order.
func ShouldUseColor() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GAVEL_COLOR"))) {
	case "always":
		return true
	case "never":
		return false
	}
	// https://no-color.org — any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
