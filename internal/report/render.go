package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format value. An empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be text, json, yaml, or markdown)", s)
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	}
	return ".txt"
}

// Options tunes rendering for the destination.
type Options struct {
	// Color enables lipgloss styling in text output.
	Color bool

	// Terminal renders Markdown through glamour instead of emitting it raw.
	Terminal bool

	// Width is the wrap width for glamour; 0 means 100.
	Width int
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		md := Markdown(r)
		if !opts.Terminal {
			_, err := io.WriteString(w, md)
			return err
		}
		width := opts.Width
		if width <= 0 {
			width = 100
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		out, err := renderer.Render(md)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatText, "":
		_, err := io.WriteString(w, Text(r, opts.Color))
		return err
	}
	return fmt.Errorf("unknown format: %s", format)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	snippetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cleanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	problemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	severityStyles = map[Severity]lipgloss.Style{
		SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

// Text renders the human-readable report.
func Text(r *Report, color bool) string {
	paint := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", paint(titleStyle, "--- "+r.Title+" ---"))
	if r.MinLines > 0 {
		fmt.Fprintf(&b, "Analyzed %d files for duplicates of %d or more lines.\n", r.FilesScanned, r.MinLines)
	} else {
		fmt.Fprintf(&b, "Analyzed %d files.\n", r.FilesScanned)
	}

	for _, g := range r.Duplicates {
		fmt.Fprintf(&b, "\nDuplicate Block (hash: %s..., %d lines)\n", shortHash(g.Fingerprint), g.Lines)
		for _, loc := range g.Locations {
			fmt.Fprintf(&b, "  - %s\n", paint(locationStyle, fmt.Sprintf("%s:L%d", loc.File, loc.Line)))
		}
		fmt.Fprintf(&b, "  %s\n", paint(snippetStyle, "--- Code Snippet ---"))
		for _, line := range g.Snippet {
			fmt.Fprintf(&b, "    %s\n", strings.TrimRight(line, " \t"))
		}
		if len(g.Snippet) < g.Lines {
			fmt.Fprintf(&b, "    %s\n", paint(snippetStyle, fmt.Sprintf("... %d more lines", g.Lines-len(g.Snippet))))
		}
	}

	if len(r.Findings) > 0 {
		b.WriteString("\n")
	}
	for _, f := range r.Findings {
		sev := paint(severityStyles[f.Severity], fmt.Sprintf("[%s]", f.Severity))
		fmt.Fprintf(&b, "%s %s %s\n", paint(locationStyle, f.Location()), sev, f.Message)
		for _, d := range f.Details {
			fmt.Fprintf(&b, "    %s\n", d)
		}
	}

	b.WriteString("\n")
	if r.Count() == 0 {
		fmt.Fprintf(&b, "%s\n", paint(cleanStyle, "No issues found."))
	} else {
		fmt.Fprintf(&b, "%s\n", paint(problemStyle, fmt.Sprintf("%d issue(s) found.", r.Count())))
	}
	return b.String()
}

// Markdown renders the report as a Markdown document.
func Markdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "- **Target:** `%s`\n", r.Target)
	fmt.Fprintf(&b, "- **Files scanned:** %d\n", r.FilesScanned)
	fmt.Fprintf(&b, "- **Run:** `%s` at %s\n\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if r.Count() == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}

	if len(r.Findings) > 0 {
		b.WriteString("| Location | Severity | Rule | Message |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", f.Location(), f.Severity, f.Rule, escapeCell(f.Message))
		}
		b.WriteString("\n")
	}

	for _, g := range r.Duplicates {
		fmt.Fprintf(&b, "## Duplicate block `%s` (%d lines)\n\n", shortHash(g.Fingerprint), g.Lines)
		for _, loc := range g.Locations {
			fmt.Fprintf(&b, "- `%s:%d`\n", loc.File, loc.Line)
		}
		b.WriteString("\n```\n")
		for _, line := range g.Snippet {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}

	return b.String()
}

// Bytes renders into memory, for uploads and file output.
func Bytes(r *Report, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, r, format, Options{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shortHash(fp string) string {
	if len(fp) > 8 {
		return fp[:8]
	}
	return fp
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
