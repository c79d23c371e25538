package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kintai-rec/kintai/internal/timecalc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69")).
			Bold(true)

	workingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Time Records"))
	b.WriteString("\n")
	b.WriteString(clockStyle.Render(m.now.Format("2006-01-02 15:04:05")))
	b.WriteString("\n\n")

	if start, ok := m.ledger.StartTime(); ok {
		elapsed := int64(m.now.Sub(start).Seconds())
		b.WriteString(workingStyle.Render(fmt.Sprintf("Working since %s (%s)",
			start.Format(timecalc.ClockLayout), timecalc.FormatDurationHHMMSS(max(0, elapsed)))))
	} else {
		b.WriteString(idleStyle.Render("Not working"))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Total net: %s\n", m.ledger.TotalNetDuration()))

	records := m.newestFirst()
	if len(records) == 0 {
		b.WriteString(idleStyle.Render("No records yet."))
	} else {
		var rows []string
		rows = append(rows, rowStyle.Render(fmt.Sprintf("%-10s  %-8s  %-8s  %-5s  %-5s", "Date", "Start", "End", "Break", "Net")))
		selID, hasSel := m.ledger.Selected()
		for i, r := range records {
			line := fmt.Sprintf("%-10s  %-8s  %-8s  %-5s  %-5s",
				r.Date, r.StartTime, r.EndTime, timecalc.FormatBreakTime(r.BreakMinutes), m.ledger.NetDuration(r))
			switch {
			case i == m.cursor:
				rows = append(rows, cursorStyle.Render(line))
			case hasSel && r.ID == selID:
				rows = append(rows, selectedStyle.Render(line))
			default:
				rows = append(rows, rowStyle.Render(line))
			}
		}
		b.WriteString(boxStyle.Render(strings.Join(rows, "\n")))
	}
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("i: clock in • o: clock out • ↑/↓: move • enter: select • d: delete selected • q: quit"))
	return b.String()
}
