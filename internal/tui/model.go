package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/model"
)

// MsgTick refreshes the displayed clock. It never mutates the ledger.
type MsgTick time.Time

// Model is the bubbletea model behind `kintai watch`.
type Model struct {
	ledger *ledger.Ledger
	now    time.Time
	cursor int
	Err    error
}

func NewModel(l *ledger.Ledger) *Model {
	return &Model{ledger: l, now: l.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return MsgTick(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.now = m.ledger.Now()
		return m, tick()
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

// newestFirst returns the records in display order.
func (m *Model) newestFirst() []model.WorkRecord {
	records := m.ledger.Records()
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.Err = nil
	records := m.newestFirst()

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "i":
		m.Err = m.ledger.ClockIn()
	case "o":
		if _, err := m.ledger.ClockOut(); err != nil {
			m.Err = err
		}
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(records)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(records) {
			m.ledger.Select(records[m.cursor].ID)
		}
	case "d":
		if id, ok := m.ledger.Selected(); ok {
			m.Err = m.ledger.DeleteRecord(id)
			if m.cursor >= len(m.ledger.Records()) && m.cursor > 0 {
				m.cursor--
			}
		}
	}
	m.now = m.ledger.Now()
	return m, nil
}
