package tui

import (
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/viz"
)

func (m Model) renderStagesView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("STAGE HISTORY"))
	s.WriteString("\n\n")

	transitions := viz.StageTransitions(m.snap.Timeline)
	if len(transitions) == 0 {
		s.WriteString(fieldValueStyle.Render("Still in " + m.snap.Stage.Label()))
		s.WriteString("\n")
	}
	for _, t := range transitions {
		s.WriteString(fmt.Sprintf("#%-4d %s → %s  %s\n",
			t.EventID,
			stageBadge(t.From),
			stageBadge(t.To),
			fieldValueStyle.Render(t.Reason),
		))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))

	return s.String()
}
