package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/maxfahl/Loom-sub002/internal/dupes"
)

func sampleDupes() *Report {
	r := New("dupes", "Duplicate Code Detection", "src")
	r.FilesScanned = 2
	r.MinLines = 2
	r.Duplicates = []dupes.Group{{
		Fingerprint: "0123456789abcdef",
		Lines:       3,
		Locations:   []dupes.Location{{File: "src/a.ts", Line: 2}, {File: "src/b.ts", Line: 7}},
		Snippet:     []string{"const a = 1;  ", "const b = 2;"},
	}}
	return r
}

func sampleFindings() *Report {
	r := New("complexity", "Cyclomatic Complexity Analysis", "src")
	r.FilesScanned = 3
	r.Add(
		Finding{File: "src/z.ts", Line: 4, Rule: "complexity", Severity: SeverityWarning, Message: "Function 'run' has complexity 12 (threshold 10)"},
		Finding{File: "src/a.ts", Line: 9, Rule: "complexity", Severity: SeverityWarning, Message: "Function 'go' | x has complexity 11 (threshold 10)"},
		Finding{File: "Dockerfile", Rule: "dockerignore", Severity: SeverityInfo, Message: "no .dockerignore"},
	)
	r.Sort()
	return r
}

func TestNew(t *testing.T) {
	a := New("dupes", "t", "x")
	b := New("dupes", "t", "x")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("run IDs should be unique, got %q and %q", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if a.Findings == nil {
		t.Error("Findings should be an empty slice so JSON renders []")
	}
}

func TestReport_SortAndCount(t *testing.T) {
	r := sampleFindings()

	var got []string
	for _, f := range r.Findings {
		got = append(got, f.Location())
	}
	want := []string{"Dockerfile", "src/a.ts:L9", "src/z.ts:L4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sorted locations mismatch (-want +got):\n%s", diff)
	}

	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
	if diff := cmp.Diff(map[Severity]int{SeverityWarning: 2, SeverityInfo: 1}, r.BySeverity()); diff != "" {
		t.Errorf("BySeverity() mismatch (-want +got):\n%s", diff)
	}

	if c := sampleDupes().Count(); c != 1 {
		t.Errorf("duplicate groups should count once each, got %d", c)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestText_Duplicates(t *testing.T) {
	out := Text(sampleDupes(), false)

	for _, want := range []string{
		"--- Duplicate Code Detection ---",
		"Analyzed 2 files for duplicates of 2 or more lines.",
		"Duplicate Block (hash: 01234567..., 3 lines)",
		"  - src/a.ts:L2\n  - src/b.ts:L7\n",
		"    const a = 1;\n    const b = 2;\n",
		"... 1 more lines",
		"1 issue(s) found.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestText_Clean(t *testing.T) {
	r := New("srp", "SRP Analysis", ".")
	out := Text(r, false)
	if !strings.Contains(out, "No issues found.") {
		t.Errorf("clean report should say so:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color disabled output must not contain escape codes")
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleDupes(), FormatJSON, Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var decoded struct {
		Tool       string `json:"tool"`
		Findings   []any  `json:"findings"`
		Duplicates []struct {
			Lines     int `json:"lines"`
			Locations []struct {
				File string `json:"file"`
				Line int    `json:"line"`
			} `json:"locations"`
		} `json:"duplicates"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Tool != "dupes" || len(decoded.Duplicates) != 1 || decoded.Duplicates[0].Locations[1].Line != 7 {
		t.Errorf("unexpected JSON payload: %s", buf.String())
	}
	if decoded.Findings == nil {
		t.Error("findings should render as [] not null")
	}
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleFindings(), FormatYAML, Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if decoded["tool"] != "complexity" {
		t.Errorf("tool = %v, want complexity", decoded["tool"])
	}
	if findings, ok := decoded["findings"].([]any); !ok || len(findings) != 3 {
		t.Errorf("findings = %v, want 3 entries", decoded["findings"])
	}
}

func TestRender_Markdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleFindings(), FormatMarkdown, Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Cyclomatic Complexity Analysis\n",
		"| Location | Severity | Rule | Message |",
		"| `src/a.ts:L9` | warning | complexity | Function 'go' \\| x has complexity 11 (threshold 10) |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}

	md := Markdown(sampleDupes())
	if !strings.Contains(md, "## Duplicate block `01234567` (3 lines)") || !strings.Contains(md, "- `src/b.ts:7`") {
		t.Errorf("duplicate markdown unexpected:\n%s", md)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if err := Render(&bytes.Buffer{}, sampleDupes(), Format("xml"), Options{}); err == nil {
		t.Error("Render() should reject unknown formats")
	}
}

func TestBytes(t *testing.T) {
	data, err := Bytes(sampleDupes(), FormatText)
	if err != nil {
		t.Fatalf("Bytes() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("--- Duplicate Code Detection ---")) {
		t.Errorf("Bytes() = %q", data)
	}
}
