package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kintai-rec/kintai/internal/clock"
	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/storage"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*Model, *clock.Manual, *ledger.Ledger) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	l, err := ledger.New(storage.NewMemory(), clk, 60)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(l), clk, l
}

func TestClockInOutKeys(t *testing.T) {
	m, clk, l := newTestModel(t)

	m.Update(key("i"))
	if !l.IsWorking() {
		t.Fatal("'i' did not clock in")
	}
	if !strings.Contains(m.View(), "Working since 09:00:00") {
		t.Errorf("view missing working line:\n%s", m.View())
	}

	m.Update(key("i"))
	if !errors.Is(m.Err, ledger.ErrInvalidState) {
		t.Errorf("second 'i' Err = %v, want ErrInvalidState", m.Err)
	}

	clk.Set(time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC))
	m.Update(key("o"))
	if l.IsWorking() {
		t.Fatal("'o' did not clock out")
	}
	view := m.View()
	if !strings.Contains(view, "Total net: 7:00") {
		t.Errorf("view missing total:\n%s", view)
	}
	if !strings.Contains(view, "07:00") || !strings.Contains(view, "01:00") {
		t.Errorf("view missing record row:\n%s", view)
	}
}

func TestTickOnlyRefreshesClock(t *testing.T) {
	m, clk, l := newTestModel(t)
	before := len(l.Records())

	clk.Advance(time.Second)
	_, cmd := m.Update(MsgTick(clk.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if !m.now.Equal(clk.Now()) {
		t.Errorf("now = %v, want %v", m.now, clk.Now())
	}
	if len(l.Records()) != before || l.IsWorking() {
		t.Error("tick mutated the ledger")
	}
}

func TestSelectAndDelete(t *testing.T) {
	m, clk, l := newTestModel(t)
	for _, h := range []int{9, 11} {
		clk.Set(time.Date(2024, 1, 10, h, 0, 0, 0, time.UTC))
		m.Update(key("i"))
		clk.Advance(time.Hour)
		m.Update(key("o"))
	}
	records := l.Records()

	// Cursor starts on the newest record; move to the older one and select it.
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if id, ok := l.Selected(); !ok || id != records[0].ID {
		t.Fatalf("Selected = %d, %v; want %d", id, ok, records[0].ID)
	}

	m.Update(key("d"))
	left := l.Records()
	if len(left) != 1 || left[0].ID != records[1].ID {
		t.Errorf("after delete = %+v", left)
	}
	if _, ok := l.Selected(); ok {
		t.Error("selection not cleared after delete")
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
