// ABOUTME: Registry of live deals shared by the MCP tool handlers
// ABOUTME: Loads deals from their stored timelines and persists new events after each change
package handlers

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

// Workspace keeps one live aggregate per deal so that concurrent tool calls share state.
type Workspace struct {
	db       *sql.DB
	template deal.Options
	logger   *log.Logger

	mu    sync.Mutex
	deals map[string]*deal.Deal
}

// NewWorkspace wires deals to database. template supplies the user, clock and
// collaborators every deal gets; follow-ups default to the database store.
func NewWorkspace(database *sql.DB, template deal.Options) *Workspace {
	if template.FollowUps == nil {
		template.FollowUps = db.NewFollowUpStore(database)
	}
	if template.Previews == nil {
		template.Previews = deal.NewPreviewRegistry()
	}
	if template.Logger == nil {
		template.Logger = log.New(io.Discard)
	}
	return &Workspace{
		db:       database,
		template: template,
		logger:   template.Logger,
		deals:    make(map[string]*deal.Deal),
	}
}

func (w *Workspace) DB() *sql.DB {
	return w.db
}

// Create stores a new deal header and returns its live aggregate.
func (w *Workspace) Create(title, company string) (*deal.Deal, *db.DealRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil, fmt.Errorf("title is required")
	}

	record := &db.DealRecord{
		Title:     title,
		Company:   strings.TrimSpace(company),
		CreatedBy: w.template.User.Name,
	}
	if err := db.CreateDeal(w.db, record); err != nil {
		return nil, nil, err
	}

	opts := w.template
	opts.ID = record.ID
	d := deal.New(opts)

	w.mu.Lock()
	w.deals[record.ID] = d
	w.mu.Unlock()

	w.logger.Info("deal created", "deal_id", record.ID, "title", record.Title)
	return d, record, nil
}

// Open returns the live aggregate for id, replaying it from storage on first use.
func (w *Workspace) Open(id string) (*deal.Deal, error) {
	if id == "" {
		return nil, fmt.Errorf("deal_id is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if d, ok := w.deals[id]; ok {
		return d, nil
	}

	d, err := db.LoadDeal(w.db, id, w.template)
	if err != nil {
		return nil, err
	}
	w.deals[id] = d
	w.logger.Debug("deal loaded", "deal_id", id, "events", d.TimelineLen())
	return d, nil
}

// Save persists events recorded since the last save.
func (w *Workspace) Save(d *deal.Deal) error {
	n, err := db.SaveDeal(w.db, d)
	if err != nil {
		w.logger.Error("failed to save deal", "deal_id", d.ID(), "err", err)
		return err
	}
	if n > 0 {
		w.logger.Debug("deal saved", "deal_id", d.ID(), "events", n)
	}
	return nil
}

// Forget drops a deal from memory and releases its previews.
func (w *Workspace) Forget(id string) {
	w.mu.Lock()
	d, ok := w.deals[id]
	delete(w.deals, id)
	w.mu.Unlock()

	if ok {
		d.Close()
	}
}

// Close releases every loaded deal.
func (w *Workspace) Close() {
	w.mu.Lock()
	loaded := w.deals
	w.deals = make(map[string]*deal.Deal)
	w.mu.Unlock()

	for _, d := range loaded {
		d.Close()
	}
}

func (w *Workspace) now() time.Time {
	if w.template.Clock != nil {
		return w.template.Clock()
	}
	return time.Now()
}

// Previews exposes the registry shared by every deal in the workspace.
func (w *Workspace) Previews() *deal.PreviewRegistry {
	return w.template.Previews
}

// mutate opens a deal, runs fn and saves whatever fn recorded.
func (w *Workspace) mutate(dealID string, fn func(*deal.Deal) (deal.Outcome, error)) (*deal.Deal, deal.Outcome, error) {
	d, err := w.Open(dealID)
	if err != nil {
		return nil, deal.OutcomeRejected, err
	}

	outcome, err := fn(d)
	if err != nil {
		return d, outcome, err
	}
	if outcome.Changed() {
		if err := w.Save(d); err != nil {
			return d, outcome, fmt.Errorf("failed to save deal: %w", err)
		}
	}
	return d, outcome, nil
}

// ChangeOutput reports the result of a mutating tool call.
type ChangeOutput struct {
	DealID      string          `json:"deal_id"`
	Outcome     string          `json:"outcome"`
	Stage       models.Stage    `json:"stage"`
	EntityID    string          `json:"entity_id,omitempty"`
	LatestEvent *TimelineOutput `json:"latest_event,omitempty"`
}

func changeOutput(d *deal.Deal, outcome deal.Outcome, entityID string) ChangeOutput {
	out := ChangeOutput{
		DealID:   d.ID(),
		Outcome:  outcome.String(),
		Stage:    d.Stage(),
		EntityID: entityID,
	}
	if outcome.Changed() {
		if events := d.Timeline(); len(events) > 0 {
			ev := timelineToOutput(events[0])
			out.LatestEvent = &ev
		}
	}
	return out
}

// change runs fn through mutate and reports the result for entityID.
func (w *Workspace) change(dealID, entityID string, fn func(*deal.Deal) (deal.Outcome, error)) (ChangeOutput, error) {
	d, outcome, err := w.mutate(dealID, fn)
	if err != nil {
		return ChangeOutput{}, err
	}
	return changeOutput(d, outcome, entityID), nil
}
