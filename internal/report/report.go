// Package report holds analyzer results and renders them as text, JSON,
// YAML or Markdown.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/maxfahl/Loom-sub002/internal/dupes"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one reported issue. Line 0 means the whole file.
type Finding struct {
	File     string   `json:"file" yaml:"file"`
	Line     int      `json:"line" yaml:"line"`
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	Symbol   string   `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Value    int      `json:"value,omitempty" yaml:"value,omitempty"`
	Limit    int      `json:"limit,omitempty" yaml:"limit,omitempty"`
	Details  []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Location renders the finding position as path:Lnn, or just the path for
// file-level findings.
func (f Finding) Location() string {
	if f.Line <= 0 {
		return f.File
	}
	return fmt.Sprintf("%s:L%d", f.File, f.Line)
}

// Report is the result of one analyzer run.
type Report struct {
	ID           string        `json:"id" yaml:"id"`
	Tool         string        `json:"tool" yaml:"tool"`
	Title        string        `json:"title" yaml:"title"`
	Target       string        `json:"target" yaml:"target"`
	CreatedAt    time.Time     `json:"created_at" yaml:"created_at"`
	FilesScanned int           `json:"files_scanned" yaml:"files_scanned"`
	MinLines     int           `json:"min_lines,omitempty" yaml:"min_lines,omitempty"`
	Findings     []Finding     `json:"findings" yaml:"findings"`
	Duplicates   []dupes.Group `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// New starts an empty report with a fresh run ID.
func New(tool, title, target string) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Tool:      tool,
		Title:     title,
		Target:    target,
		CreatedAt: time.Now().UTC(),
		Findings:  []Finding{},
	}
}

// Add appends findings.
func (r *Report) Add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
}

// Count returns the number of reported issues. Each duplicate group counts once.
func (r *Report) Count() int {
	return len(r.Findings) + len(r.Duplicates)
}

// Sort orders findings by file, line and rule.
func (r *Report) Sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// BySeverity counts findings per severity.
func (r *Report) BySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}
