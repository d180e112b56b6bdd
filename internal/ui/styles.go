package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorGood   = 114 // green
	colorHold   = 179 // amber
	colorBad    = 167 // red
)

var forced *bool

// SetColor overrides automatic color detection.
func SetColor(on bool) {
	forced = &on
}

func useColor() bool {
	if forced != nil {
		return *forced
	}
	return ShouldUseColor()
}

func paint(code int, s string) string {
	if !useColor() {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return paint(colorCmd, s) }

// RenderState colorizes a courtroom state word for detail output.
// Running states are green, waiting states amber, adverse rulings red,
// and closed states muted.
func RenderState(s string) string {
	switch s {
	case "live", "active", "admitted", "sustained":
		return paint(colorGood, s)
	case "paused", "pending", "marked", "tendered":
		return paint(colorHold, s)
	case "expired", "rejected", "overruled":
		return paint(colorBad, s)
	case "completed":
		return paint(colorMuted, s)
	}
	return s
}
