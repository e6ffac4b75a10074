package view

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// StripTerminal removes escape sequences and control characters other than
// newline and tab, so stored text cannot drive the terminal it is printed to.
func StripTerminal(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(s))
}
