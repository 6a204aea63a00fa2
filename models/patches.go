// ABOUTME: Partial-update payloads for deal-owned entities
// ABOUTME: Nil fields are left untouched when a patch is applied
package models

import "time"

type ProductPatch struct {
	ProductName     *string
	Quantity        *int
	UnitPrice       *int64
	Currency        *string
	DiscountPercent *float64
}

func (p ProductPatch) Apply(x Product) Product {
	if p.ProductName != nil {
		x.ProductName = *p.ProductName
	}
	if p.Quantity != nil {
		x.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		x.UnitPrice = *p.UnitPrice
	}
	if p.Currency != nil {
		x.Currency = *p.Currency
	}
	if p.DiscountPercent != nil {
		x.DiscountPercent = *p.DiscountPercent
	}
	return x
}

type AttachmentPatch struct {
	FileName *string
}

func (p AttachmentPatch) Apply(x Attachment) Attachment {
	if p.FileName != nil {
		x.FileName = *p.FileName
	}
	return x
}

type MeetingPatch struct {
	Title          *string
	StartTime      *time.Time
	EndTime        *time.Time
	Location       *string
	ContactPersons []ContactPerson
	Agenda         *string
	Notes          *string
}

func (p MeetingPatch) Apply(x Meeting) Meeting {
	if p.Title != nil {
		x.Title = *p.Title
	}
	if p.StartTime != nil {
		x.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		x.EndTime = *p.EndTime
	}
	if p.Location != nil {
		x.Location = *p.Location
	}
	if p.ContactPersons != nil {
		x.ContactPersons = append([]ContactPerson(nil), p.ContactPersons...)
	}
	if p.Agenda != nil {
		x.Agenda = *p.Agenda
	}
	if p.Notes != nil {
		x.Notes = *p.Notes
	}
	return x
}

// FollowUpPatch edits the descriptive fields only; status moves through the lifecycle.
type FollowUpPatch struct {
	Subject        *string
	Description    *string
	ContactPersons []ContactPerson
}

func (p FollowUpPatch) Apply(x FollowUp) FollowUp {
	if p.Subject != nil {
		x.Subject = *p.Subject
	}
	if p.Description != nil {
		x.Description = *p.Description
	}
	if p.ContactPersons != nil {
		x.ContactPersons = append([]ContactPerson(nil), p.ContactPersons...)
	}
	return x
}

type CallPatch struct {
	Subject  *string
	Duration *time.Duration
	Outcome  *string
}

func (p CallPatch) Apply(x Call) Call {
	if p.Subject != nil {
		x.Subject = *p.Subject
	}
	if p.Duration != nil {
		x.Duration = *p.Duration
	}
	if p.Outcome != nil {
		x.Outcome = *p.Outcome
	}
	return x
}

type EmailPatch struct {
	Subject *string
	Body    *string
}

func (p EmailPatch) Apply(x Email) Email {
	if p.Subject != nil {
		x.Subject = *p.Subject
	}
	if p.Body != nil {
		x.Body = *p.Body
	}
	return x
}

type NotePatch struct {
	Content *string
}

func (p NotePatch) Apply(x Note) Note {
	if p.Content != nil {
		x.Content = *p.Content
	}
	return x
}

type ReminderPatch struct {
	Title       *string
	Description *string
	RemindAt    *time.Time
	Done        *bool
}

func (p ReminderPatch) Apply(x Reminder) Reminder {
	if p.Title != nil {
		x.Title = *p.Title
	}
	if p.Description != nil {
		x.Description = *p.Description
	}
	if p.RemindAt != nil {
		x.RemindAt = *p.RemindAt
	}
	if p.Done != nil {
		x.Done = *p.Done
	}
	return x
}
