package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxfahl/Loom-sub002/internal/retro"
)

// ErrCancelled is returned when the user aborts a form.
var ErrCancelled = errors.New("cancelled")

var (
	formStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	formActiveStepStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	formLabelStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	formItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	formDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// RetroModel collects the three retrospective sections, one item per Enter.
type RetroModel struct {
	feedback  *retro.Feedback
	section   int
	input     textinput.Model
	done      bool
	cancelled bool
}

// NewRetroForm creates the form for the named retrospective.
func NewRetroForm(name string) RetroModel {
	ti := textinput.New()
	ti.Placeholder = "type an item, Enter on an empty line for the next section"
	ti.CharLimit = 500
	ti.Width = 70
	ti.Focus()

	return RetroModel{
		feedback: retro.New(name),
		input:    ti,
	}
}

func (m RetroModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m RetroModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEsc:
			if m.section == 0 {
				m.cancelled = true
				return m, tea.Quit
			}
			m.section--
			m.input.SetValue("")
			return m, nil

		case tea.KeyEnter:
			value := m.input.Value()
			m.input.SetValue("")
			if !retro.IsTerminator(value) {
				m.feedback.Add(retro.Sections[m.section], value)
				return m, nil
			}
			if m.section == len(retro.Sections)-1 {
				m.done = true
				return m, tea.Quit
			}
			m.section++
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m RetroModel) progressBar() string {
	var parts []string
	for i, s := range retro.Sections {
		label := fmt.Sprintf("%d. %s", i+1, s.Heading())
		if i == m.section {
			parts = append(parts, formActiveStepStyle.Render(label))
		} else {
			parts = append(parts, formStepStyle.Render(label))
		}
	}
	return strings.Join(parts, formStepStyle.Render("  >  "))
}

func (m RetroModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Retrospective Feedback: " + m.feedback.Name))
	b.WriteString("\n")
	b.WriteString(m.progressBar())
	b.WriteString("\n\n")

	s := retro.Sections[m.section]
	b.WriteString(formLabelStyle.Render(s.Prompt()))
	b.WriteString("\n")
	for _, item := range m.feedback.Items[s] {
		b.WriteString(formItemStyle.Render("  - " + item))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(formDimStyle.Render("Enter adds an item. Enter on an empty line or 'done' moves on. Esc goes back, Ctrl+C cancels."))
	return b.String()
}

// Feedback returns the collected feedback.
func (m RetroModel) Feedback() *retro.Feedback {
	return m.feedback
}

// Done reports whether every section was completed.
func (m RetroModel) Done() bool {
	return m.done
}

// RunRetro runs the feedback form in the terminal.
func RunRetro(name string) (*retro.Feedback, error) {
	p := tea.NewProgram(NewRetroForm(name))

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(RetroModel)
	if !m.done {
		return nil, ErrCancelled
	}
	return m.feedback, nil
}
