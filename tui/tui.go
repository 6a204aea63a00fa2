// ABOUTME: Terminal timeline viewer using the bubbletea framework
// ABOUTME: Browses one deal snapshot: timeline, products, follow-ups, attachments and stage history
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewEventDetail
	ViewStages
)

// Section is the tab shown in the list view.
type Section int

const (
	SectionTimeline Section = iota
	SectionProducts
	SectionFollowUps
	SectionAttachments
)

var sectionNames = []string{"Timeline", "Products", "Follow-ups", "Attachments"}

// filterCycle is the order "f" steps through; the empty type shows everything.
var filterCycle = []models.EventType{
	"",
	models.EventStageChange,
	models.EventProduct,
	models.EventFollowUp,
	models.EventMeeting,
	models.EventCall,
	models.EventEmail,
	models.EventNote,
	models.EventReminder,
	models.EventAttachment,
}

// Model is a read-only view over a deal snapshot.
type Model struct {
	title string
	snap  deal.Snapshot
	now   func() time.Time

	viewMode ViewMode
	section  Section

	selectedRow int
	filter      int

	width  int
	height int
}

// NewTimelineModel shows snap under title. now decides which follow-ups are overdue.
func NewTimelineModel(title string, snap deal.Snapshot, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		title:    title,
		snap:     snap,
		now:      now,
		viewMode: ViewList,
		section:  SectionTimeline,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewEventDetail:
		return m.renderEventDetailView()
	case ViewStages:
		return m.renderStagesView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewEventDetail, ViewStages:
		if msg.String() == "esc" || msg.String() == "backspace" {
			m.viewMode = ViewList
		}
	}
	return m, nil
}

// visibleEvents returns the timeline, newest first, narrowed by the active filter.
func (m Model) visibleEvents() []models.TimelineEvent {
	want := filterCycle[m.filter]
	if want == "" {
		return m.snap.Timeline
	}
	var out []models.TimelineEvent
	for _, ev := range m.snap.Timeline {
		if ev.Type == want {
			out = append(out, ev)
		}
	}
	return out
}

func (m Model) rowCount() int {
	switch m.section {
	case SectionTimeline:
		return len(m.visibleEvents())
	case SectionProducts:
		return len(m.snap.Products)
	case SectionFollowUps:
		return len(m.snap.FollowUps)
	case SectionAttachments:
		return len(m.snap.Attachments)
	}
	return 0
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

var eventColors = map[models.Color]lipgloss.Color{
	models.ColorInfo:    lipgloss.Color("39"),
	models.ColorSuccess: lipgloss.Color("42"),
	models.ColorFailure: lipgloss.Color("196"),
	models.ColorWarning: lipgloss.Color("208"),
	models.ColorNeutral: lipgloss.Color("245"),
	models.ColorStage:   lipgloss.Color("170"),
}

func colorFor(c models.Color) lipgloss.Style {
	color, ok := eventColors[c]
	if !ok {
		color = lipgloss.Color("252")
	}
	return lipgloss.NewStyle().Foreground(color)
}

func stageBadge(s models.Stage) string {
	color := models.ColorStage
	switch s {
	case models.StageClosedWon:
		color = models.ColorSuccess
	case models.StageClosedLost:
		color = models.ColorFailure
	}
	return colorFor(color).Bold(true).Render("[" + s.Label() + "]")
}
