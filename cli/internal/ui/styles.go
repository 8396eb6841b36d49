// Package ui renders gitsub results for the terminal.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kuchuk-borom-debbarma/GitSub/core"
)

var (
	ColorPass  = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorWarn  = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail  = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
)

var (
	PassStyle  = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle  = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	BoldStyle  = lipgloss.NewStyle().Bold(true)
)

const (
	IconPass = "✓"
	IconFail = "✗"
)

// RenderError formats err for the user. A validation error becomes one
// line per offending child; any hint for the error kind follows.
func RenderError(err error) string {
	var sb strings.Builder

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		sb.WriteString(FailStyle.Render(IconFail+" Error: "+verr.Kind.Error()) + "\n\n")
		for _, f := range verr.Failures {
			sb.WriteString("  " + BoldStyle.Render(f.Path))
			if f.Reason != "" {
				sb.WriteString(MutedStyle.Render("  " + f.Reason))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(FailStyle.Render(IconFail+" Error: "+err.Error()) + "\n")
	}

	if hint := core.Hint(err); hint != "" {
		sb.WriteString("\n" + WarnStyle.Render("Note: ") + hint + "\n")
	}
	return sb.String()
}

// Success prints a one-line success message.
func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, PassStyle.Render(IconPass+" "+msg))
}

// List prints a header and one indented line per item.
func List(w io.Writer, header string, items []string) {
	fmt.Fprintln(w, header)
	if len(items) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("  (none)"))
		return
	}
	for _, it := range items {
		fmt.Fprintln(w, "  "+it)
	}
}
