package analyzer

import (
	"fmt"
	"strings"

	"github.com/maxfahl/Loom-sub002/internal/jsast"
	"github.com/maxfahl/Loom-sub002/internal/report"
)

// SRP flags classes exposing more than MaxPublicMethods public methods.
type SRP struct {
	MaxPublicMethods int
}

func (s *SRP) Name() string  { return "srp" }
func (s *SRP) Title() string { return "Potential SRP Violations" }

func (s *SRP) Check(unit *jsast.Unit) []report.Finding {
	var findings []report.Finding
	for _, c := range unit.Classes {
		n := len(c.PublicMethods)
		if n <= s.MaxPublicMethods {
			continue
		}
		findings = append(findings, report.Finding{
			File:     unit.Path,
			Line:     c.Line,
			Rule:     s.Name(),
			Severity: report.SeverityWarning,
			Symbol:   c.Name,
			Message:  fmt.Sprintf("Class '%s' has %d public methods (max: %d)", c.Name, n, s.MaxPublicMethods),
			Value:    n,
			Limit:    s.MaxPublicMethods,
			Details:  []string{"Methods: " + strings.Join(c.PublicMethods, ", ")},
		})
	}
	return findings
}

// OCP flags long if/else-if chains and switches with many cases.
type OCP struct {
	MinBranches int
}

func (o *OCP) Name() string  { return "ocp" }
func (o *OCP) Title() string { return "Potential OCP Violations" }

func (o *OCP) Check(unit *jsast.Unit) []report.Finding {
	var findings []report.Finding
	for _, b := range unit.Branches {
		if b.Branches < o.MinBranches {
			continue
		}
		what := "branches"
		if b.Kind == jsast.KindSwitch {
			what = "cases"
		}
		findings = append(findings, report.Finding{
			File:     unit.Path,
			Line:     b.Line,
			Rule:     o.Name(),
			Severity: report.SeverityWarning,
			Message:  fmt.Sprintf("Potential OCP violation: %s with %d %s (min: %d)", b.Kind, b.Branches, what, o.MinBranches),
			Value:    b.Branches,
			Limit:    o.MinBranches,
			Details:  []string{"Snippet: " + b.Snippet},
		})
	}
	return findings
}

// DIP flags direct instantiation of concrete classes.
type DIP struct {
	exclude map[string]bool
}

// NewDIP accepts exclusions written either as "Date" or "new Date".
func NewDIP(exclude []string) *DIP {
	set := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		e = strings.TrimSpace(e)
		e = strings.TrimSpace(strings.TrimPrefix(e, "new "))
		if e != "" {
			set[e] = true
		}
	}
	return &DIP{exclude: set}
}

func (d *DIP) Name() string  { return "dip" }
func (d *DIP) Title() string { return "Potential DIP Violations" }

func (d *DIP) Check(unit *jsast.Unit) []report.Finding {
	var findings []report.Finding
	for _, n := range unit.News {
		if d.exclude[n.Class] {
			continue
		}
		findings = append(findings, report.Finding{
			File:     unit.Path,
			Line:     n.Line,
			Rule:     d.Name(),
			Severity: report.SeverityInfo,
			Symbol:   n.Class,
			Message:  fmt.Sprintf("Direct instantiation of a concrete class (%s). Consider depending on an abstraction instead.", n.Text),
		})
	}
	return findings
}
