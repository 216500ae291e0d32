// Package cli provides shared formatting helpers for the vlanadmin CLI.
package cli

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
)

// colorEnabled is false when NO_COLOR is set (per no-color.org) or stdout
// is not a terminal.
var colorEnabled = os.Getenv("NO_COLOR") == "" &&
	(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string { return paint("32", s) }

// Yellow wraps s in ANSI yellow. Returns s unchanged when NO_COLOR is set.
func Yellow(s string) string { return paint("33", s) }

// Red wraps s in ANSI red. Returns s unchanged when NO_COLOR is set.
func Red(s string) string { return paint("31", s) }

// Bold wraps s in ANSI bold. Returns s unchanged when NO_COLOR is set.
func Bold(s string) string { return paint("1", s) }

// Dim wraps s in ANSI dim. Returns s unchanged when NO_COLOR is set.
func Dim(s string) string { return paint("2", s) }

// DotPad pads name with dots to the given width.
// Example: DotPad("Product", 20) → "Product ............"
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// Glyph renders a membership as one character of the VLAN matrix:
// U untagged, T tagged, a dot for none.
func Glyph(m switchmodel.Membership) string {
	switch m {
	case switchmodel.Untagged:
		return Green("U")
	case switchmodel.Tagged:
		return Yellow("T")
	default:
		return Dim(".")
	}
}

// LinkStatus colours a port link status: Down red, anything else green.
func LinkStatus(s string) string {
	switch {
	case s == "":
		return Dim("-")
	case s == "Down":
		return Red(s)
	case strings.HasPrefix(s, "Other"):
		return Yellow(s)
	default:
		return Green(s)
	}
}
