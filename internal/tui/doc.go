// Package tui provides the interactive terminal views of loom.
//
// # Duplicate Browser
//
// RunBrowser lists duplicate groups, one item per group titled with its
// first location. Enter shows the shared snippet and every location, / filters
// by path, q quits.
//
// # Retrospective Form
//
// RunRetro asks the three retrospective questions in turn. Each Enter adds an
// item; Enter on an empty line (or "done") moves to the next section. Esc goes
// back one section and Ctrl+C cancels with ErrCancelled.
//
// Both views use the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
