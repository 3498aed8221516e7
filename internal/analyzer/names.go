package analyzer

import (
	"fmt"
	"strings"

	"github.com/maxfahl/Loom-sub002/internal/jsast"
	"github.com/maxfahl/Loom-sub002/internal/report"
)

// loop counters are never flagged
var loopCounters = map[string]bool{"i": true, "j": true, "k": true}

// NameChecker flags declared names that are generic or too short.
type NameChecker struct {
	MinLength int
	generic   map[string]bool
}

// NewNameChecker matches generic names case-insensitively.
func NewNameChecker(minLength int, generic []string) *NameChecker {
	set := make(map[string]bool, len(generic))
	for _, g := range generic {
		if g = strings.TrimSpace(g); g != "" {
			set[strings.ToLower(g)] = true
		}
	}
	return &NameChecker{MinLength: minLength, generic: set}
}

func (n *NameChecker) Name() string  { return "names" }
func (n *NameChecker) Title() string { return "Unclear Name Detection Report" }

func (n *NameChecker) Check(unit *jsast.Unit) []report.Finding {
	var findings []report.Finding
	for _, b := range unit.Bindings {
		if loopCounters[b.Name] {
			continue
		}

		f := report.Finding{
			File:     unit.Path,
			Line:     b.Line,
			Severity: report.SeverityInfo,
			Symbol:   b.Name,
		}
		switch {
		case n.generic[strings.ToLower(b.Name)]:
			f.Rule = "generic-name"
			f.Message = fmt.Sprintf("Generic %s name '%s' detected", b.Kind, b.Name)
		case len([]rune(b.Name)) < n.MinLength:
			f.Rule = "short-name"
			f.Message = fmt.Sprintf("%s name '%s' is too short (min-length: %d)", capitalize(b.Kind), b.Name, n.MinLength)
			f.Value = len([]rune(b.Name))
			f.Limit = n.MinLength
		default:
			continue
		}
		findings = append(findings, f)
	}
	return findings
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
