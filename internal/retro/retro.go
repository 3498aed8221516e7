// Package retro renders retrospective feedback as Markdown.
package retro

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Section identifies one of the three feedback lists.
type Section int

const (
	WentWell Section = iota
	CouldImprove
	ActionItems
)

// Sections lists the sections in the order they are collected.
var Sections = []Section{WentWell, CouldImprove, ActionItems}

// Prompt is the question asked for a section.
func (s Section) Prompt() string {
	switch s {
	case WentWell:
		return "What went well?"
	case CouldImprove:
		return "What could be improved?"
	default:
		return "Any action items?"
	}
}

// Heading is the Markdown heading for a section.
func (s Section) Heading() string {
	switch s {
	case WentWell:
		return "What Went Well?"
	case CouldImprove:
		return "What Could Be Improved?"
	default:
		return "Action Items"
	}
}

// Feedback is the collected input for one retrospective.
type Feedback struct {
	Name  string
	Date  time.Time
	Items [3][]string
}

// New returns empty feedback dated now.
func New(name string) *Feedback {
	return &Feedback{Name: name, Date: time.Now()}
}

// Add appends an item to a section. Blank items are ignored.
func (f *Feedback) Add(s Section, item string) {
	if item = strings.TrimSpace(item); item != "" {
		f.Items[s] = append(f.Items[s], item)
	}
}

// IsTerminator reports whether input ends a section: an empty line or "done".
func IsTerminator(input string) bool {
	input = strings.TrimSpace(input)
	return input == "" || strings.EqualFold(input, "done")
}

// Slug turns a retrospective name into a file-name fragment.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// DefaultFileName is retro_feedback_<slug>.md.
func DefaultFileName(name string) string {
	return "retro_feedback_" + Slug(name) + ".md"
}

// Render formats the feedback as Markdown. Action items become task list
// entries.
func Render(f *Feedback) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Retrospective Feedback: %s\n\n", f.Name)
	fmt.Fprintf(&sb, "**Date:** %s\n\n", f.Date.Format("2006-01-02 15:04:05"))

	for _, s := range Sections {
		fmt.Fprintf(&sb, "## %s\n\n", s.Heading())
		items := f.Items[s]
		if len(items) == 0 {
			sb.WriteString("_No feedback provided for this section._\n")
		}
		for _, item := range items {
			if s == ActionItems {
				fmt.Fprintf(&sb, "- [ ] %s\n", item)
			} else {
				fmt.Fprintf(&sb, "- %s\n", item)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Collect reads feedback line by line, prompting on w. It is the
// non-interactive counterpart of the terminal form and is used when stdin
// is not a terminal. Running out of input ends the current and all
// remaining sections.
func Collect(r io.Reader, w io.Writer, name string) (*Feedback, error) {
	f := New(name)
	scanner := bufio.NewScanner(r)

	fmt.Fprintf(w, "--- Retrospective Feedback for '%s' ---\n", name)
	fmt.Fprintln(w, "Enter your feedback. Type 'done' or leave empty and press Enter to finish each section.")

	eof := false
	for _, s := range Sections {
		if eof {
			break
		}
		fmt.Fprintf(w, "\n%s (Type 'done' to finish)\n", s.Prompt())
		for {
			fmt.Fprint(w, "> ")
			if !scanner.Scan() {
				eof = true
				break
			}
			line := scanner.Text()
			if IsTerminator(line) {
				break
			}
			f.Add(s, line)
		}
	}
	fmt.Fprintln(w)

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	return f, nil
}
