// ABOUTME: Deal aggregate owning stage, entity collections, and the audit timeline
// ABOUTME: Every mutation commits the new state and its timeline entry as one snapshot swap
package deal

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

// Options configures a Deal. Zero values get defaults.
type Options struct {
	ID        string
	User      models.User
	Clock     func() time.Time
	FollowUps FollowUpService
	Uploads   Uploader
	Previews  *PreviewRegistry
	Logger    *log.Logger
}

// State is the current value of everything a deal owns, apart from its timeline.
type State struct {
	Stage       models.Stage        `json:"stage"`
	Products    []models.Product    `json:"products"`
	Attachments []models.Attachment `json:"attachments"`
	Meetings    []models.Meeting    `json:"meetings"`
	FollowUps   []models.FollowUp   `json:"follow_ups"`
	Calls       []models.Call       `json:"calls"`
	Emails      []models.Email      `json:"emails"`
	Notes       []models.Note       `json:"notes"`
	Reminders   []models.Reminder   `json:"reminders"`
}

func (s State) clone() State {
	return State{
		Stage:       s.Stage,
		Products:    models.CloneAll(s.Products),
		Attachments: models.CloneAll(s.Attachments),
		Meetings:    models.CloneAll(s.Meetings),
		FollowUps:   models.CloneAll(s.FollowUps),
		Calls:       models.CloneAll(s.Calls),
		Emails:      models.CloneAll(s.Emails),
		Notes:       models.CloneAll(s.Notes),
		Reminders:   models.CloneAll(s.Reminders),
	}
}

// Snapshot is a read-only copy of a deal at one point in time.
type Snapshot struct {
	DealUUID string `json:"deal_uuid"`
	State
	Timeline []models.TimelineEvent `json:"timeline"`
}

// Deal is the aggregate root. Construct with New or Restore; never share State between deals.
type Deal struct {
	id        string
	user      models.User
	now       func() time.Time
	followUps FollowUpService
	uploads   Uploader
	previews  *PreviewRegistry
	logger    *log.Logger

	mu       sync.RWMutex
	state    State
	timeline Timeline
}

// New creates a deal at Discussion with empty collections and an empty timeline.
func New(opts Options) *Deal {
	d := newDeal(opts)
	d.state = State{Stage: models.StageDiscussion}
	return d
}

func newDeal(opts Options) *Deal {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.FollowUps == nil {
		opts.FollowUps = EchoFollowUps{}
	}
	if opts.Previews == nil {
		opts.Previews = NewPreviewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Deal{
		id:        opts.ID,
		user:      opts.User,
		now:       opts.Clock,
		followUps: opts.FollowUps,
		uploads:   opts.Uploads,
		previews:  opts.Previews,
		logger:    opts.Logger.With("deal_id", opts.ID),
	}
}

func (d *Deal) ID() string {
	return d.id
}

func (d *Deal) Stage() models.Stage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.Stage
}

// Snapshot returns a deep copy of the deal. Later mutations cannot affect it,
// and edits to it cannot reach the deal or its timeline.
func (d *Deal) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{
		DealUUID: d.id,
		State:    d.state.clone(),
		Timeline: d.timeline.Events(),
	}
}

// Timeline returns the audit trail, newest first.
func (d *Deal) Timeline() []models.TimelineEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.timeline.Events()
}

func (d *Deal) TimelineLen() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.timeline.Len()
}

// commit swaps in next and the recorded event together. Callers hold d.mu.
func (d *Deal) commit(next State, ev models.TimelineEvent) models.TimelineEvent {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = d.now()
	}
	ev.User = d.user.Name
	ev.UserUUID = d.user.UUID

	timeline, recorded := d.timeline.Record(ev)
	d.state = next
	d.timeline = timeline

	d.logger.Debug("deal change committed", "event_type", recorded.Type, "event_id", recorded.ID, "title", recorded.Title)
	return recorded
}

func (d *Deal) reject(op string, err error) error {
	field, _ := FieldOf(err)
	d.logger.Debug("deal change rejected", "op", op, "field", field, "err", err)
	return err
}
