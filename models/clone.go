// ABOUTME: Deep copies of deal-owned entities and timeline details
// ABOUTME: Copies share no slices or pointers with the value they were taken from
package models

import "slices"

// Cloner is implemented by every deal-owned entity.
type Cloner[T any] interface {
	Clone() T
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CloneAll deep-copies every item. A nil slice stays nil.
func CloneAll[T Cloner[T]](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func clonePrevious[T Cloner[T]](p *T) *T {
	if p == nil {
		return nil
	}
	v := (*p).Clone()
	return &v
}

func (c ContactPerson) Clone() ContactPerson { return c }
func (c ContactReview) Clone() ContactReview { return c }
func (p Product) Clone() Product             { return p }
func (a Attachment) Clone() Attachment       { return a }
func (n Note) Clone() Note                   { return n }
func (r Reminder) Clone() Reminder           { return r }

func (m Meeting) Clone() Meeting {
	m.ContactPersons = slices.Clone(m.ContactPersons)
	return m
}

func (c Call) Clone() Call {
	c.ContactPerson = clonePtr(c.ContactPerson)
	return c
}

func (e Email) Clone() Email {
	e.To = slices.Clone(e.To)
	e.CC = slices.Clone(e.CC)
	return e
}

func (f FollowUp) Clone() FollowUp {
	f.ContactPersons = slices.Clone(f.ContactPersons)
	f.CompletedDate = clonePtr(f.CompletedDate)
	f.OriginalScheduledDate = clonePtr(f.OriginalScheduledDate)
	return f
}

// Clone returns the event with its details deep-copied.
func (e TimelineEvent) Clone() TimelineEvent {
	if e.Details != nil {
		e.Details = e.Details.Clone()
	}
	return e
}

func (d ProductDetails) Clone() Details {
	d.Product, d.Previous = d.Product.Clone(), clonePrevious(d.Previous)
	return d
}

func (d AttachmentDetails) Clone() Details {
	d.Attachment, d.Previous = d.Attachment.Clone(), clonePrevious(d.Previous)
	return d
}

func (d MeetingDetails) Clone() Details {
	d.Meeting, d.Previous = d.Meeting.Clone(), clonePrevious(d.Previous)
	return d
}

func (d FollowUpDetails) Clone() Details {
	d.FollowUp, d.Previous = d.FollowUp.Clone(), clonePrevious(d.Previous)
	return d
}

func (d CallDetails) Clone() Details {
	d.Call, d.Previous = d.Call.Clone(), clonePrevious(d.Previous)
	return d
}

func (d EmailDetails) Clone() Details {
	d.Email, d.Previous = d.Email.Clone(), clonePrevious(d.Previous)
	return d
}

func (d NoteDetails) Clone() Details {
	d.Note, d.Previous = d.Note.Clone(), clonePrevious(d.Previous)
	return d
}

func (d ReminderDetails) Clone() Details {
	d.Reminder, d.Previous = d.Reminder.Clone(), clonePrevious(d.Previous)
	return d
}

func (d StageChangeDetails) Clone() Details {
	d.Proof = CloneAll(d.Proof)
	d.ContactPersonReviews = CloneAll(d.ContactPersonReviews)
	return d
}
