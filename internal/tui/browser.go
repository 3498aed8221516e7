package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxfahl/Loom-sub002/internal/dupes"
	"github.com/maxfahl/Loom-sub002/internal/source"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	codeStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
)

// browserKeys are checked before the list sees a key, except while filtering.
var browserKeys = struct {
	Open key.Binding
	Back key.Binding
	Quit key.Binding
}{
	Open: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show snippet")),
	Back: key.NewBinding(key.WithKeys("enter", "esc", "backspace"), key.WithHelp("esc", "back")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// groupItem adapts a duplicate group to list.Item.
type groupItem struct {
	group dupes.Group
	root  string
}

func (i groupItem) Title() string {
	if len(i.group.Locations) == 0 {
		return shortHash(i.group.Fingerprint)
	}
	first := i.group.Locations[0]
	return fmt.Sprintf("%s:%d", source.Relative(i.root, first.File), first.Line)
}

func (i groupItem) Description() string {
	return fmt.Sprintf("%d occurrences | %d lines | %s",
		len(i.group.Locations), i.group.Lines, shortHash(i.group.Fingerprint))
}

// FilterValue lets "/" match on any file the block occurs in.
func (i groupItem) FilterValue() string {
	files := make([]string, len(i.group.Locations))
	for n, loc := range i.group.Locations {
		files[n] = source.Relative(i.root, loc.File)
	}
	return strings.Join(files, " ")
}

func shortHash(fp string) string {
	return fp[:min(len(fp), 8)]
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// BrowserModel lists duplicate groups and shows one group's snippet and
// locations on demand.
type BrowserModel struct {
	list   list.Model
	root   string
	width  int
	height int

	showSnippet bool
	quitting    bool
}

// NewBrowser builds the browser. Paths are shown relative to root.
func NewBrowser(groups []dupes.Group, root string) BrowserModel {
	items := make([]list.Item, 0, len(groups))
	for _, g := range groups {
		items = append(items, groupItem{group: g, root: root})
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(lipgloss.Color("39")).BorderForeground(lipgloss.Color("39"))
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(lipgloss.Color("245")).BorderForeground(lipgloss.Color("39"))

	l := list.New(items, d, 80, 20)
	l.Title = fmt.Sprintf("Duplicate Blocks (%d)", len(groups))
	l.Styles.Title = titleStyle
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{browserKeys.Open}
	}

	return BrowserModel{list: l, root: root}
}

func (m BrowserModel) Init() tea.Cmd { return nil }

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
		m.list.SetSize(size.Width, size.Height-4)
		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(keyMsg, browserKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case m.showSnippet:
			if key.Matches(keyMsg, browserKeys.Back) {
				m.showSnippet = false
			}
			return m, nil
		case key.Matches(keyMsg, browserKeys.Open):
			_, m.showSnippet = m.list.SelectedItem().(groupItem)
			return m, nil
		case keyMsg.String() == "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}
	if item, ok := m.list.SelectedItem().(groupItem); ok && m.showSnippet {
		return m.snippetView(item.group)
	}
	return m.list.View()
}

func (m BrowserModel) snippetView(g dupes.Group) string {
	width := 70
	if m.width > 10 {
		width = m.width - 4
	}

	lines := []string{titleStyle.Render(fmt.Sprintf("Duplicate block %s (%d lines)", shortHash(g.Fingerprint), g.Lines))}
	for _, loc := range g.Locations {
		where := fmt.Sprintf("  %s:%d", truncatePath(source.Relative(m.root, loc.File), width), loc.Line)
		lines = append(lines, pathStyle.Render(where))
	}
	lines = append(lines, "", codeStyle.Render(strings.Join(g.Snippet, "\n")))
	lines = append(lines, hintStyle.Render("[enter/esc] Back  [q] Quit"))
	return strings.Join(lines, "\n")
}

// RunBrowser blocks until the user quits. It does nothing for no groups.
func RunBrowser(groups []dupes.Group, root string) error {
	if len(groups) == 0 {
		return nil
	}
	_, err := tea.NewProgram(NewBrowser(groups, root), tea.WithAltScreen()).Run()
	return err
}
