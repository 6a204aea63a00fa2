package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.title))
	s.WriteString(" ")
	s.WriteString(stageBadge(m.snap.Stage))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.section == SectionTimeline {
		if f := filterCycle[m.filter]; f != "" {
			s.WriteString(fmt.Sprintf("Filter: %s\n", f))
		}
	}

	s.WriteString(m.renderTable())
	s.WriteString("\n\n")

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, name := range sectionNames {
		if Section(i) == m.section {
			rendered = append(rendered, tabActiveStyle.Render(name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	var columns []table.Column
	var rows []table.Row

	switch m.section {
	case SectionTimeline:
		columns = []table.Column{
			{Title: "#", Width: 4},
			{Title: "When", Width: 16},
			{Title: "User", Width: 12},
			{Title: "Event", Width: 28},
			{Title: "Description", Width: 36},
		}
		for _, ev := range m.visibleEvents() {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", ev.ID),
				ev.Timestamp.Format("2006-01-02 15:04"),
				ev.User,
				ev.Title,
				ev.Description,
			})
		}

	case SectionProducts:
		columns = []table.Column{
			{Title: "Product", Width: 30},
			{Title: "Qty", Width: 5},
			{Title: "Unit", Width: 14},
			{Title: "Discount", Width: 9},
			{Title: "Total", Width: 14},
		}
		for _, p := range m.snap.Products {
			rows = append(rows, table.Row{
				p.ProductName,
				fmt.Sprintf("%d", p.Quantity),
				money(p.UnitPrice, p.Currency),
				fmt.Sprintf("%.0f%%", p.DiscountPercent),
				money(p.Total(), p.Currency),
			})
		}

	case SectionFollowUps:
		now := m.now()
		columns = []table.Column{
			{Title: "Subject", Width: 30},
			{Title: "Scheduled", Width: 16},
			{Title: "Status", Width: 12},
			{Title: "Moved", Width: 6},
		}
		for _, f := range m.snap.FollowUps {
			rows = append(rows, table.Row{
				f.Subject,
				f.ScheduledDate.Format("2006-01-02 15:04"),
				string(f.EffectiveStatus(now)),
				fmt.Sprintf("%d", f.RescheduleCount),
			})
		}

	case SectionAttachments:
		columns = []table.Column{
			{Title: "File", Width: 30},
			{Title: "Type", Width: 20},
			{Title: "Size", Width: 10},
			{Title: "Uploaded", Width: 16},
		}
		for _, a := range m.snap.Attachments {
			rows = append(rows, table.Row{
				a.FileName,
				a.ContentType,
				fmt.Sprintf("%d B", a.Size),
				a.UploadedAt.Format("2006-01-02 15:04"),
			})
		}
	}

	if len(rows) == 0 {
		return helpStyle.Render("Nothing here yet")
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{"↑/↓: Navigate", "Tab: Switch section"}
	if m.section == SectionTimeline {
		help = append(help, "Enter: Event details", "f: Filter")
	}
	help = append(help, "g: Stage history", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab", "right", "l":
		m.section = (m.section + 1) % Section(len(sectionNames))
		m.selectedRow = 0
	case "shift+tab", "left", "h":
		m.section = (m.section + Section(len(sectionNames)) - 1) % Section(len(sectionNames))
		m.selectedRow = 0
	case "f":
		if m.section == SectionTimeline {
			m.filter = (m.filter + 1) % len(filterCycle)
			m.selectedRow = 0
		}
	case "enter":
		if m.section == SectionTimeline && m.selectedRow < len(m.visibleEvents()) {
			m.viewMode = ViewEventDetail
		}
	case "g":
		m.viewMode = ViewStages
	}
	return m, nil
}

func money(cents int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}
