package retro

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Sprint 5 Retro":      "sprint_5_retro",
		"  Q3   Planning  ":   "q3_planning",
		"single":              "single",
		"Tabs\tand\nnewlines": "tabs_and_newlines",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}

	if got := DefaultFileName("Sprint 5 Retro"); got != "retro_feedback_sprint_5_retro.md" {
		t.Errorf("DefaultFileName() = %q", got)
	}
}

func TestIsTerminator(t *testing.T) {
	for _, in := range []string{"", "   ", "done", "DONE", " Done "} {
		if !IsTerminator(in) {
			t.Errorf("IsTerminator(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"done deal", "x"} {
		if IsTerminator(in) {
			t.Errorf("IsTerminator(%q) = true, want false", in)
		}
	}
}

func TestRender(t *testing.T) {
	f := &Feedback{
		Name: "Sprint 5",
		Date: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
	}
	f.Add(WentWell, "shipped search")
	f.Add(WentWell, "  ")
	f.Add(ActionItems, "add flaky test dashboard")

	want := `# Retrospective Feedback: Sprint 5

**Date:** 2024-03-01 14:30:00

## What Went Well?

- shipped search

## What Could Be Improved?

_No feedback provided for this section._

## Action Items

- [ ] add flaky test dashboard

`
	if diff := cmp.Diff(want, Render(f)); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect(t *testing.T) {
	input := strings.Join([]string{
		"pairing sessions",
		"fast reviews",
		"done",
		"",
		"write the runbook",
		"",
	}, "\n")

	var out bytes.Buffer
	f, err := Collect(strings.NewReader(input), &out, "Sprint 6")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := [3][]string{
		{"pairing sessions", "fast reviews"},
		nil,
		{"write the runbook"},
	}
	if diff := cmp.Diff(want, f.Items); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	for _, s := range Sections {
		if !strings.Contains(out.String(), s.Prompt()) {
			t.Errorf("output missing prompt %q", s.Prompt())
		}
	}
}

func TestCollect_EarlyEOF(t *testing.T) {
	f, err := Collect(strings.NewReader("only one\n"), &bytes.Buffer{}, "x")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if diff := cmp.Diff([3][]string{{"only one"}, nil, nil}, f.Items); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
}
