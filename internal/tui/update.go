package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/practice"
	"github.com/julianstephens/streaklit/internal/shop"
	"github.com/julianstephens/streaklit/internal/tui/components/catalog"
	"github.com/julianstephens/streaklit/internal/tui/components/practices"
)

const tabCount = 3

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// tabs, status and help lines
		bodyHeight := max(msg.Height-v-6, 1)
		m.practiceList.SetSize(msg.Width-h, bodyHeight)
		m.grid.SetSize(msg.Width-h, bodyHeight)
		m.catalog.SetSize(msg.Width-h, bodyHeight)
		return m, nil

	case expireNoticesMsg:
		if m.notices.pending() {
			return m, expireNotices()
		}
		return m, nil
	}

	switch m.state {
	case StateAddPractice:
		return m, m.updateAddPractice(msg)
	case StateConfirmDelete, StateConfirmPurchase:
		return m, m.updateConfirm(msg)
	}

	if handled, cmd := m.handleComponentMsg(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.switchTab((m.state + 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.switchTab((m.state - 1 + tabCount) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case m.state == StateProgress && key.Matches(msg, m.keys.Toggle):
			if p, ok := m.grid.Practice(); ok {
				return m, m.toggleDay(p.ID, m.grid.Cursor())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StatePractices:
		m.practiceList, cmd = m.practiceList.Update(msg)
	case StateProgress:
		m.grid, cmd = m.grid.Update(msg)
	case StateShop:
		m.catalog, cmd = m.catalog.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	return m.state == StatePractices && m.practiceList.FilterState() == list.Filtering
}

func (m *Model) switchTab(state SessionState) {
	m.state = state
	m.status = ""
	if state == StateShop {
		m.reloadShop()
	}
}

// handleComponentMsg reacts to the messages emitted by the tab components
func (m *Model) handleComponentMsg(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case practices.AddPracticeMsg:
		m.practiceForm = &PracticeForm{}
		m.form = NewPracticeForm(m.practiceForm)
		m.previousState = m.state
		m.state = StateAddPractice
		return true, m.form.Init()

	case practices.OpenPracticeMsg:
		m.openPractice(msg.Practice)
		m.state = StateProgress
		return true, nil

	case practices.ToggleTodayMsg:
		i, err := m.practices.DayIndex(msg.Practice, m.practices.Today())
		if errors.Is(err, practice.ErrDayOutOfRange) {
			m.status = warningStyle.Render("Today is outside this challenge. Open it to mark another day.")
			return true, nil
		}
		if err != nil {
			m.setError(err)
			return true, nil
		}
		return true, m.toggleDay(msg.Practice.ID, i)

	case practices.DeletePracticeMsg:
		p := msg.Practice
		m.pendingDelete = &p
		m.confirmForm = &ConfirmForm{}
		m.form = NewConfirmForm("Delete "+p.Name+"?", "Its progress and achievements are removed too.", m.confirmForm)
		m.previousState = m.state
		m.state = StateConfirmDelete
		return true, m.form.Init()

	case catalog.BuyItemMsg:
		it := msg.Item
		m.pendingItem = &it
		m.confirmForm = &ConfirmForm{}
		m.form = NewConfirmForm("Buy "+it.Name+"?", formatCost(it.Cost, m.catalog.Balance()), m.confirmForm)
		m.previousState = m.state
		m.state = StateConfirmPurchase
		return true, m.form.Init()
	}
	return false, nil
}

func (m *Model) toggleDay(id string, day int) tea.Cmd {
	result, err := m.practices.ToggleDay(m.ctx, id, day)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.status = ""
	if result.Checked {
		logger.Debug("Marked day from TUI", "practice", id, "date", result.Date)
	}
	m.reloadPractices()
	if m.state == StateProgress {
		m.openPractice(result.Practice)
	}
	m.reloadShop()

	if m.notices.pending() {
		return expireNotices()
	}
	return nil
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd
}

func (m *Model) updateAddPractice(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return nil
	}

	cmd := m.updateForm(msg)

	switch m.form.State {
	case huh.StateCompleted:
		days, err := m.practiceForm.TotalDays()
		if err == nil {
			_, err = m.practices.Create(m.ctx, m.userID, m.practiceForm.Name, days)
		}
		if err != nil {
			// stay on the form so the user can fix the input
			m.setError(err)
			m.form.State = huh.StateNormal
			return cmd
		}
		m.status = ""
		m.reloadPractices()
		m.state = StatePractices
	case huh.StateAborted:
		m.state = m.previousState
	}
	return cmd
}

func (m *Model) updateConfirm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.clearPending()
		return nil
	}

	cmd := m.updateForm(msg)

	switch m.form.State {
	case huh.StateCompleted:
		if m.confirmForm.Confirmed {
			m.runConfirmed()
		}
		m.clearPending()
	case huh.StateAborted:
		m.clearPending()
	}
	return cmd
}

func (m *Model) runConfirmed() {
	switch {
	case m.state == StateConfirmDelete && m.pendingDelete != nil:
		if err := m.practices.Delete(m.ctx, m.pendingDelete.ID); err != nil {
			m.setError(err)
			return
		}
		m.status = "Deleted " + m.pendingDelete.Name
		m.reloadPractices()
		m.reloadShop()

	case m.state == StateConfirmPurchase && m.pendingItem != nil:
		_, err := m.shop.Purchase(m.ctx, m.userID, m.pendingItem.ID)
		switch {
		case errors.Is(err, shop.ErrInsufficientCoins), errors.Is(err, shop.ErrAlreadyOwned):
			m.status = warningStyle.Render(err.Error())
		case err != nil:
			m.setError(err)
		default:
			m.status = "Purchased " + m.pendingItem.Name
		}
		m.reloadShop()
	}
}

func (m *Model) clearPending() {
	m.pendingDelete = nil
	m.pendingItem = nil
	m.confirmForm = nil
	m.state = m.previousState
}
