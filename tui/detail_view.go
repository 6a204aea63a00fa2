package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
)

func (m Model) renderEventDetailView() string {
	events := m.visibleEvents()
	if m.selectedRow >= len(events) {
		return "No event selected"
	}
	ev := events[m.selectedRow]

	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("EVENT #%d", ev.ID)))
	s.WriteString("\n\n")

	s.WriteString(colorFor(ev.Color).Bold(true).Render(ev.Title))
	s.WriteString("\n")
	if ev.Description != "" {
		s.WriteString(fieldValueStyle.Render(ev.Description))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	s.WriteString(renderField("Type", string(ev.Type)))
	s.WriteString(renderField("When", ev.Timestamp.Format("2006-01-02 15:04:05")))
	s.WriteString(renderField("By", ev.User))
	s.WriteString("\n")
	s.WriteString(renderDetails(ev.Details))

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))

	return s.String()
}

func renderField(label, value string) string {
	if value == "" {
		return ""
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func renderTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func renderDetails(d models.Details) string {
	var s strings.Builder

	switch d := d.(type) {
	case models.StageChangeDetails:
		s.WriteString(renderField("From", d.PreviousStage.Label()))
		s.WriteString(renderField("To", d.NewStage.Label()))
		s.WriteString(renderField("Reason", d.Reason))
		s.WriteString(renderField("Loss reason", d.LossReason))
		for i, a := range d.Proof {
			s.WriteString(renderField(fmt.Sprintf("Proof %d", i+1), firstNonEmpty(a.URL, a.FileName)))
		}
		for _, r := range d.ContactPersonReviews {
			name := firstNonEmpty(r.ContactName, r.ContactPersonUUID)
			s.WriteString(renderField("Review", fmt.Sprintf("%s %d/%d %s", name, r.Rating, models.MaxReviewRating, r.Comment)))
		}

	case models.ProductDetails:
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("Product", d.Product.ProductName))
		s.WriteString(renderField("Quantity", fmt.Sprintf("%d", d.Product.Quantity)))
		s.WriteString(renderField("Total", money(d.Product.Total(), d.Product.Currency)))
		if d.Previous != nil {
			s.WriteString(renderField("Was", fmt.Sprintf("%s x%d", d.Previous.ProductName, d.Previous.Quantity)))
		}
		s.WriteString(renderField("Reason", d.Reason))

	case models.FollowUpDetails:
		f := d.FollowUp
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("Subject", f.Subject))
		s.WriteString(renderField("Scheduled", f.ScheduledDate.Format("2006-01-02 15:04")))
		s.WriteString(renderField("Status", string(f.Status)))
		s.WriteString(renderField("Outcome", f.Outcome))
		s.WriteString(renderField("Cancelled", f.CancellationReason))
		s.WriteString(renderField("Originally", renderTime(f.OriginalScheduledDate)))
		s.WriteString(renderField("Next time", f.NextFollowUpNotes))

	case models.MeetingDetails:
		mt := d.Meeting
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("Meeting", mt.Title))
		s.WriteString(renderField("Starts", mt.StartTime.Format("2006-01-02 15:04")))
		s.WriteString(renderField("Location", mt.Location))
		var names []string
		for _, p := range mt.ContactPersons {
			names = append(names, p.Name)
		}
		s.WriteString(renderField("With", strings.Join(names, ", ")))

	case models.CallDetails:
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("Subject", d.Call.Subject))
		s.WriteString(renderField("Direction", d.Call.Direction))
		if d.Call.ContactPerson != nil {
			s.WriteString(renderField("With", d.Call.ContactPerson.Name))
		}
		s.WriteString(renderField("Duration", d.Call.Duration.String()))
		s.WriteString(renderField("Outcome", d.Call.Outcome))

	case models.EmailDetails:
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("Subject", d.Email.Subject))
		s.WriteString(renderField("From", d.Email.From))
		s.WriteString(renderField("To", strings.Join(d.Email.To, ", ")))

	case models.NoteDetails:
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("Note", d.Note.Content))

	case models.ReminderDetails:
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("Reminder", d.Reminder.Title))
		s.WriteString(renderField("Remind at", d.Reminder.RemindAt.Format("2006-01-02 15:04")))

	case models.AttachmentDetails:
		s.WriteString(renderField("Action", string(d.Action)))
		s.WriteString(renderField("File", d.Attachment.FileName))
		s.WriteString(renderField("URL", d.Attachment.URL))
	}

	return s.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
