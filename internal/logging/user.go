package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// User-facing output functions with status glyphs.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	userOut io.Writer = os.Stdout
	userErr io.Writer = os.Stderr

	colorEnabled = true

	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// SetUserOutput redirects user-facing output. Nil writers keep the current one.
func SetUserOutput(stdout, stderr io.Writer) {
	if stdout != nil {
		userOut = stdout
	}
	if stderr != nil {
		userErr = stderr
	}
}

// SetColor enables or disables colored glyphs.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// ColorEnabled reports whether colored output is active.
func ColorEnabled() bool {
	return colorEnabled
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func glyph(style lipgloss.Style, g string) string {
	if !colorEnabled {
		return g
	}
	return style.Render(g)
}

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(userOut, glyph(infoStyle, "ℹ")+" "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(userOut, glyph(successStyle, "✓")+" "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(userErr, glyph(warningStyle, "⚠")+" "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(userErr, glyph(errorStyle, "✗")+" "+format+"\n", args...)
}
