// Package telnet serves the text front-end over Telnet with ANSI styling.
package telnet

import (
	"strings"
)

// ANSI SGR sequences.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// palette maps the color names used by content files to terminal colors.
// Black text is unreadable on most terminals, so it renders as bright black.
var palette = map[string]string{
	"black":  BrightBlack,
	"red":    Red,
	"green":  Green,
	"yellow": Yellow,
	"blue":   Blue,
	"purple": Magenta,
	"cyan":   Cyan,
	"white":  White,
}

// Palette returns the escape sequence for a content color name such as "red"
// or "purple".
//
// Postcondition: Returns the sequence and true, or "" and false for an unknown name.
func Palette(name string) (string, bool) {
	code, ok := palette[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// Colorize wraps text in color and a trailing Reset. An empty color returns
// text unchanged.
func Colorize(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + Reset
}

// StripANSI removes every CSI sequence (ESC '[' ... final byte) from s.
//
// Postcondition: The result is never longer than s.
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\033' || i+1 >= len(s) || s[i+1] != '[' {
			b.WriteByte(s[i])
			continue
		}
		j := i + 2
		for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
			j++
		}
		if j == len(s) {
			// unterminated sequence is kept as text
			b.WriteString(s[i:])
			break
		}
		i = j
	}
	return b.String()
}
