package practices

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streaklit/internal/models"
)

type AddPracticeMsg struct{}

type DeletePracticeMsg struct {
	Practice models.Practice
}

// OpenPracticeMsg asks for the practice's progress grid
type OpenPracticeMsg struct {
	Practice models.Practice
}

// ToggleTodayMsg checks or unchecks today's date on the practice
type ToggleTodayMsg struct {
	Practice models.Practice
}

type Item struct {
	Practice models.Practice
}

func (i Item) Title() string {
	if i.Practice.IsCompleted {
		return "★ " + i.Practice.Name
	}
	return i.Practice.Name
}

func (i Item) Description() string {
	p := i.Practice
	return fmt.Sprintf("%d/%d days | streak %d | %d points",
		len(p.CompletedDays), p.TotalDays, p.CurrentStreak, p.Points)
}

func (i Item) FilterValue() string { return i.Practice.Name }

type KeyMap struct {
	Add    key.Binding
	Open   key.Binding
	Toggle key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "mark today"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(practices []models.Practice, width, height int) Model {
	l := list.New(toItems(practices), list.NewDefaultDelegate(), width, height)
	l.Title = "Practices"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Open, keys.Toggle, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Open, keys.Toggle, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func toItems(practices []models.Practice) []list.Item {
	items := make([]list.Item, len(practices))
	for i, p := range practices {
		items[i] = Item{Practice: p}
	}
	return items
}

func (m *Model) SetPractices(practices []models.Practice) {
	m.list.SetItems(toItems(practices))
}

// Selected returns the highlighted practice
func (m Model) Selected() (models.Practice, bool) {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Practice, true
	}
	return models.Practice{}, false
}

func (m Model) FilterState() list.FilterState {
	return m.list.FilterState()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddPracticeMsg{} }
		case key.Matches(msg, m.keys.Open):
			if p, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenPracticeMsg{Practice: p} }
			}
		case key.Matches(msg, m.keys.Toggle):
			if p, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleTodayMsg{Practice: p} }
			}
		case key.Matches(msg, m.keys.Delete):
			if p, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeletePracticeMsg{Practice: p} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No practices yet.\n  Press 'a' to start a challenge."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
