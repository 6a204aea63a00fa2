// ABOUTME: Timeline event types for the deal audit trail
// ABOUTME: Details is a sealed sum type with one variant per event type
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType tags a timeline event with the kind of entity it describes.
type EventType string

const (
	EventProduct     EventType = "product"
	EventAttachment  EventType = "attachment"
	EventMeeting     EventType = "meeting"
	EventFollowUp    EventType = "follow_up"
	EventCall        EventType = "call"
	EventEmail       EventType = "email"
	EventNote        EventType = "note"
	EventStageChange EventType = "stage_change"
	EventReminder    EventType = "reminder"
)

// Action describes what happened to the entity.
type Action string

const (
	ActionAdded       Action = "added"
	ActionUpdated     Action = "updated"
	ActionRemoved     Action = "removed"
	ActionCompleted   Action = "completed"
	ActionCancelled   Action = "cancelled"
	ActionRescheduled Action = "rescheduled"
)

// Color is the display hint for a timeline entry.
type Color string

const (
	ColorInfo    Color = "blue"
	ColorSuccess Color = "green"
	ColorFailure Color = "red"
	ColorWarning Color = "orange"
	ColorNeutral Color = "gray"
	ColorStage   Color = "purple"
)

// TimelineEvent is one immutable entry in a deal's audit trail.
type TimelineEvent struct {
	ID          int       `json:"id"`
	Type        EventType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	User        string    `json:"user"`
	UserUUID    string    `json:"user_uuid"`
	Color       Color     `json:"color"`
	Details     Details   `json:"details"`
}

// Details is implemented only by the variants in this file.
type Details interface {
	EventType() EventType
	Clone() Details
	isDetails()
}

type ProductDetails struct {
	Action   Action   `json:"action"`
	Product  Product  `json:"product"`
	Previous *Product `json:"previous,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

type AttachmentDetails struct {
	Action     Action      `json:"action"`
	Attachment Attachment  `json:"attachment"`
	Previous   *Attachment `json:"previous,omitempty"`
}

type MeetingDetails struct {
	Action   Action   `json:"action"`
	Meeting  Meeting  `json:"meeting"`
	Previous *Meeting `json:"previous,omitempty"`
}

type FollowUpDetails struct {
	Action   Action    `json:"action"`
	FollowUp FollowUp  `json:"follow_up"`
	Previous *FollowUp `json:"previous,omitempty"`
}

type CallDetails struct {
	Action   Action `json:"action"`
	Call     Call   `json:"call"`
	Previous *Call  `json:"previous,omitempty"`
}

type EmailDetails struct {
	Action   Action `json:"action"`
	Email    Email  `json:"email"`
	Previous *Email `json:"previous,omitempty"`
}

type NoteDetails struct {
	Action   Action `json:"action"`
	Note     Note   `json:"note"`
	Previous *Note  `json:"previous,omitempty"`
}

type ReminderDetails struct {
	Action   Action    `json:"action"`
	Reminder Reminder  `json:"reminder"`
	Previous *Reminder `json:"previous,omitempty"`
}

type StageChangeDetails struct {
	PreviousStage        Stage           `json:"previous_stage"`
	NewStage             Stage           `json:"new_stage"`
	Reason               string          `json:"reason"`
	LossReason           string          `json:"loss_reason,omitempty"`
	Proof                []Attachment    `json:"proof,omitempty"`
	ContactPersonReviews []ContactReview `json:"contact_person_reviews,omitempty"`
}

func (ProductDetails) EventType() EventType     { return EventProduct }
func (AttachmentDetails) EventType() EventType  { return EventAttachment }
func (MeetingDetails) EventType() EventType     { return EventMeeting }
func (FollowUpDetails) EventType() EventType    { return EventFollowUp }
func (CallDetails) EventType() EventType        { return EventCall }
func (EmailDetails) EventType() EventType       { return EventEmail }
func (NoteDetails) EventType() EventType        { return EventNote }
func (ReminderDetails) EventType() EventType    { return EventReminder }
func (StageChangeDetails) EventType() EventType { return EventStageChange }

func (ProductDetails) isDetails()     {}
func (AttachmentDetails) isDetails()  {}
func (MeetingDetails) isDetails()     {}
func (FollowUpDetails) isDetails()    {}
func (CallDetails) isDetails()        {}
func (EmailDetails) isDetails()       {}
func (NoteDetails) isDetails()        {}
func (ReminderDetails) isDetails()    {}
func (StageChangeDetails) isDetails() {}

// UnmarshalJSON decodes details into the variant named by the type tag.
func (e *TimelineEvent) UnmarshalJSON(data []byte) error {
	type plain TimelineEvent
	var raw struct {
		plain
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	details, err := DecodeDetails(raw.Type, raw.Details)
	if err != nil {
		return err
	}

	*e = TimelineEvent(raw.plain)
	e.Details = details
	return nil
}

// DecodeDetails decodes a raw details payload for the given event type.
func DecodeDetails(t EventType, data json.RawMessage) (Details, error) {
	var (
		target Details
		err    error
	)

	switch t {
	case EventProduct:
		var d ProductDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventAttachment:
		var d AttachmentDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventMeeting:
		var d MeetingDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventFollowUp:
		var d FollowUpDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventCall:
		var d CallDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventEmail:
		var d EmailDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventNote:
		var d NoteDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventReminder:
		var d ReminderDetails
		err = json.Unmarshal(data, &d)
		target = d
	case EventStageChange:
		var d StageChangeDetails
		err = json.Unmarshal(data, &d)
		target = d
	default:
		return nil, fmt.Errorf("unknown timeline event type: %q", t)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s details: %w", t, err)
	}
	return target, nil
}
