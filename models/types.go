// ABOUTME: Data models for the deal workspace
// ABOUTME: Defines stages, deal-owned entities, contact persons and reviews
package models

import (
	"fmt"
	"time"
)

// Stage is the deal's position in the sales pipeline.
type Stage string

const (
	StageDiscussion  Stage = "discussion"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed_won"
	StageClosedLost  Stage = "closed_lost"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageDiscussion, StageNegotiation, StageClosedWon, StageClosedLost}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageDiscussion, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// IsClosed reports whether the stage is terminal.
func (s Stage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Label returns a human readable stage name.
func (s Stage) Label() string {
	switch s {
	case StageDiscussion:
		return "Discussion"
	case StageNegotiation:
		return "Negotiation"
	case StageClosedWon:
		return "Closed Won"
	case StageClosedLost:
		return "Closed Lost"
	}
	return string(s)
}

// ParseStage converts user input into a Stage.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid stage: %s (valid: discussion, negotiation, closed_won, closed_lost)", raw)
	}
	return s, nil
}

// User attributes timeline entries to whoever performed the change.
type User struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type ContactPerson struct {
	ContactPersonUUID string `json:"contact_person_uuid"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Role              string `json:"role,omitempty"`
}

// ContactReview rates a contact person when a deal closes.
type ContactReview struct {
	ContactPersonUUID string `json:"contact_person_uuid"`
	ContactName       string `json:"contact_name,omitempty"`
	Rating            int    `json:"rating"`
	Comment           string `json:"comment,omitempty"`
}

// Review rating bounds.
const (
	MinReviewRating = 0
	MaxReviewRating = 5
)

type Product struct {
	ProductUUID     string  `json:"product_uuid"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       int64   `json:"unit_price,omitempty"` // in cents
	Currency        string  `json:"currency,omitempty"`
	DiscountPercent float64 `json:"discount_percent,omitempty"`
}

// Total returns the discounted line total in cents.
func (p Product) Total() int64 {
	gross := float64(p.UnitPrice) * float64(p.Quantity)
	return int64(gross * (1 - p.DiscountPercent/100))
}

type Attachment struct {
	AttachmentUUID string    `json:"attachment_uuid"`
	FileName       string    `json:"file_name"`
	ContentType    string    `json:"content_type,omitempty"`
	Size           int64     `json:"size"`
	URL            string    `json:"url,omitempty"`
	PreviewURL     string    `json:"preview_url,omitempty"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

type Meeting struct {
	MeetingUUID    string          `json:"meeting_uuid"`
	Title          string          `json:"title"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Location       string          `json:"location,omitempty"`
	ContactPersons []ContactPerson `json:"contact_persons,omitempty"`
	Agenda         string          `json:"agenda,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// Communication directions for calls and emails.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type Call struct {
	CallUUID      string         `json:"call_uuid"`
	Subject       string         `json:"subject"`
	Direction     string         `json:"direction"`
	ContactPerson *ContactPerson `json:"contact_person,omitempty"`
	Duration      time.Duration  `json:"duration"`
	Outcome       string         `json:"outcome,omitempty"`
	CalledAt      time.Time      `json:"called_at"`
}

type Email struct {
	EmailUUID string    `json:"email_uuid"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body,omitempty"`
	From      string    `json:"from,omitempty"`
	To        []string  `json:"to"`
	CC        []string  `json:"cc,omitempty"`
	Direction string    `json:"direction"`
	SentAt    time.Time `json:"sent_at"`
}

type Note struct {
	NoteUUID  string    `json:"note_uuid"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Reminder struct {
	ReminderUUID string    `json:"reminder_uuid"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	RemindAt     time.Time `json:"remind_at"`
	Done         bool      `json:"done"`
}
