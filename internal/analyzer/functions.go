package analyzer

import (
	"fmt"

	"github.com/maxfahl/Loom-sub002/internal/jsast"
	"github.com/maxfahl/Loom-sub002/internal/report"
)

// Complexity reports functions whose cyclomatic complexity reaches Threshold.
type Complexity struct {
	Threshold int
}

func (c *Complexity) Name() string  { return "complexity" }
func (c *Complexity) Title() string { return "Cyclomatic Complexity Analysis" }

func (c *Complexity) Check(unit *jsast.Unit) []report.Finding {
	var findings []report.Finding
	for _, fn := range unit.Functions {
		if fn.Complexity < c.Threshold {
			continue
		}
		findings = append(findings, report.Finding{
			File:     unit.Path,
			Line:     fn.Line,
			Rule:     c.Name(),
			Severity: report.SeverityWarning,
			Symbol:   fn.Name,
			Message:  fmt.Sprintf("Function '%s' has cyclomatic complexity %d (threshold: %d)", fn.Name, fn.Complexity, c.Threshold),
			Value:    fn.Complexity,
			Limit:    c.Threshold,
		})
	}
	return findings
}

// LongFunctions reports functions with more than MaxLines non-blank body lines.
type LongFunctions struct {
	MaxLines int
}

func (l *LongFunctions) Name() string  { return "long-functions" }
func (l *LongFunctions) Title() string { return "Long Function Report" }

func (l *LongFunctions) Check(unit *jsast.Unit) []report.Finding {
	var findings []report.Finding
	for _, fn := range unit.Functions {
		if fn.BodyLines <= l.MaxLines {
			continue
		}
		findings = append(findings, report.Finding{
			File:     unit.Path,
			Line:     fn.Line,
			Rule:     l.Name(),
			Severity: report.SeverityWarning,
			Symbol:   fn.Name,
			Message:  fmt.Sprintf("Function '%s' has %d lines (max: %d)", fn.Name, fn.BodyLines, l.MaxLines),
			Value:    fn.BodyLines,
			Limit:    l.MaxLines,
		})
	}
	return findings
}
