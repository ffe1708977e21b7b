package catalog

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streaklit/internal/models"
)

// BuyItemMsg asks to purchase the item
type BuyItemMsg struct {
	Item models.Item
}

type Item struct {
	Item  models.Item
	Owned bool
}

func (i Item) Title() string {
	if i.Owned {
		return "✓ " + i.Item.Name
	}
	return i.Item.Name
}

func (i Item) Description() string {
	if i.Owned {
		return fmt.Sprintf("%s | owned", i.Item.Description)
	}
	return fmt.Sprintf("%s | %d coins", i.Item.Description, i.Item.Cost)
}

func (i Item) FilterValue() string { return i.Item.Name }

type KeyMap struct {
	Buy key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Buy: key.NewBinding(
			key.WithKeys("b", "enter"),
			key.WithHelp("b", "buy"),
		),
	}
}

type Model struct {
	list    list.Model
	keys    KeyMap
	balance int
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Buy}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Buy}
	}

	return Model{list: l, keys: keys}
}

// SetCatalog replaces the listed items, marking those the user owns
func (m *Model) SetCatalog(items []models.Item, owned []models.UserItem, balance int) {
	have := make(map[string]bool, len(owned))
	for _, ui := range owned {
		have[ui.ItemID] = true
	}
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = Item{Item: it, Owned: have[it.ID]}
	}
	m.list.SetItems(listItems)
	m.balance = balance
}

func (m Model) Balance() int {
	return m.balance
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Buy) {
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Owned {
				return m, func() tea.Msg { return BuyItemMsg{Item: i.Item} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  The store is empty."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
