package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StatePractices:
		content = docStyle.Render(m.practiceList.View())
	case StateProgress:
		content = docStyle.Render(m.grid.View())
	case StateShop:
		content = docStyle.Render(m.catalog.View())
	case StateAddPractice, StateConfirmDelete, StateConfirmPurchase:
		content = m.viewForm()
	}

	parts := []string{m.viewTabs(), content}
	if notices := m.viewNotices(); notices != "" {
		parts = append(parts, notices)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.validationWarning != "" {
		parts = append(parts, warningStyle.Render(m.validationWarning))
	}
	parts = append(parts, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.activeTab() == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, coinStyle.Render(fmt.Sprintf("🪙 %d coins", m.catalog.Balance())))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// activeTab maps form states back to the tab they were opened from
func (m Model) activeTab() SessionState {
	if m.state < tabCount {
		return m.state
	}
	return m.previousState
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	title := ""
	if m.state == StateConfirmDelete {
		title = dangerStyle.Render("This cannot be undone.")
	}
	return lipgloss.Place(m.width, max(m.height-6, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, title, m.form.View()),
	)
}

func (m Model) viewNotices() string {
	notices := m.notices.active()
	if len(notices) == 0 {
		return ""
	}
	var boxes []string
	for _, n := range notices {
		boxes = append(boxes, noticeStyle.Render(noticeTitleStyle.Render(n.Title)+"\n"+n.Message))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func formatCost(cost, balance int) string {
	if cost > balance {
		return fmt.Sprintf("Costs %d coins. You have %d.", cost, balance)
	}
	return fmt.Sprintf("Costs %d coins. You will have %d left.", cost, balance-cost)
}
