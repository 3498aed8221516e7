package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maxfahl/Loom-sub002/internal/dupes"
)

func testGroups() []dupes.Group {
	return []dupes.Group{
		{
			Fingerprint: "0123456789abcdef",
			Lines:       5,
			Locations:   []dupes.Location{{File: "/src/a.ts", Line: 3}, {File: "/src/b.ts", Line: 10}},
			Snippet:     []string{"a = 1", "b = 2"},
		},
		{
			Fingerprint: "fedcba9876543210",
			Lines:       7,
			Locations:   []dupes.Location{{File: "/src/c.ts", Line: 1}, {File: "/src/c.ts", Line: 40}, {File: "/src/d.ts", Line: 2}},
			Snippet:     []string{"x()"},
		},
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path   string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"/home/user/workspace", 20, "/home/user/workspace"},
		{"/home/user/very/long/path/to/workspace", 20, "...path/to/workspace"},
		{"", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := truncatePath(tt.path, tt.maxLen); got != tt.want {
				t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestGroupItemMethods(t *testing.T) {
	item := groupItem{group: testGroups()[1], root: "/src"}

	if got := item.Title(); got != "c.ts:1" {
		t.Errorf("Title() = %q, want %q", got, "c.ts:1")
	}
	if got := item.Description(); got != "3 occurrences | 7 lines | fedcba98" {
		t.Errorf("Description() = %q", got)
	}
	if got := item.FilterValue(); got != "c.ts c.ts d.ts" {
		t.Errorf("FilterValue() = %q", got)
	}

	empty := groupItem{group: dupes.Group{Fingerprint: "abc"}}
	if got := empty.Title(); got != "abc" {
		t.Errorf("Title() without locations = %q, want %q", got, "abc")
	}
}

func TestBrowserKeyHandling(t *testing.T) {
	t.Run("enter toggles snippet", func(t *testing.T) {
		m := NewBrowser(testGroups(), "/src")

		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = updated.(BrowserModel)
		if !m.showSnippet {
			t.Fatal("enter should open the snippet view")
		}
		view := m.View()
		for _, want := range []string{"a = 1", "a.ts:3", "b.ts:10"} {
			if !strings.Contains(view, want) {
				t.Errorf("snippet view missing %q", want)
			}
		}

		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m = updated.(BrowserModel)
		if m.showSnippet {
			t.Error("esc should close the snippet view")
		}
		if m.quitting {
			t.Error("esc in the snippet view should not quit")
		}
	})

	t.Run("q quits", func(t *testing.T) {
		m := NewBrowser(testGroups(), "/src")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		m = updated.(BrowserModel)
		if !m.quitting {
			t.Error("q should quit")
		}
		if cmd == nil {
			t.Error("q should return tea.Quit")
		}
		if m.View() != "" {
			t.Error("View() should be empty after quitting")
		}
	})

	t.Run("window size", func(t *testing.T) {
		m := NewBrowser(testGroups(), "/src")
		updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
		m = updated.(BrowserModel)
		if m.width != 120 || m.height != 40 {
			t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
		}
	})
}

func TestRunBrowser_Empty(t *testing.T) {
	if err := RunBrowser(nil, ""); err != nil {
		t.Errorf("RunBrowser(nil) error = %v", err)
	}
}
