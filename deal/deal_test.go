// ABOUTME: Shared fixtures for deal tests
// ABOUTME: Fixed clock, in-memory uploader, and a scriptable follow-up service
package deal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/models"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type memUploader struct {
	files map[string][]byte
	err   error
}

func (u *memUploader) Upload(_ context.Context, fileName, _ string, data []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if u.files == nil {
		u.files = make(map[string][]byte)
	}
	url := fmt.Sprintf("https://files.test/%d/%s", len(u.files)+1, fileName)
	u.files[url] = data
	return url, nil
}

// stubFollowUps confirms requests, optionally failing or stamping a server note.
type stubFollowUps struct {
	EchoFollowUps
	err   error
	calls []string
}

func (s *stubFollowUps) confirm(op string, f models.FollowUp) (models.FollowUp, error) {
	s.calls = append(s.calls, op)
	if s.err != nil {
		return models.FollowUp{}, s.err
	}
	f.Description += " [confirmed]"
	return f, nil
}

func (s *stubFollowUps) CreateFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return s.confirm("create", f)
}

func (s *stubFollowUps) UpdateFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return s.confirm("update", f)
}

func (s *stubFollowUps) CompleteFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return s.confirm("complete", f)
}

func (s *stubFollowUps) CancelFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return s.confirm("cancel", f)
}

func (s *stubFollowUps) RescheduleFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return s.confirm("reschedule", f)
}

func (s *stubFollowUps) DeleteFollowUp(context.Context, string, string) error {
	s.calls = append(s.calls, "delete")
	return s.err
}

func newTestDeal(t *testing.T) (*Deal, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: base}
	d := New(Options{
		ID:      "deal-1",
		User:    models.User{UUID: "user-1", Name: "Harper"},
		Clock:   clock.Now,
		Uploads: &memUploader{},
	})
	return d, clock
}

func TestNewDeal(t *testing.T) {
	d, _ := newTestDeal(t)

	assert.Equal(t, "deal-1", d.ID())
	assert.Equal(t, models.StageDiscussion, d.Stage())
	assert.Zero(t, d.TimelineLen())

	snap := d.Snapshot()
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.FollowUps)
	assert.Empty(t, snap.Timeline)
}

func TestNewDealGeneratesID(t *testing.T) {
	a := New(Options{})
	b := New(Options{})
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestEveryChangeRecordsOneMatchingEvent(t *testing.T) {
	d, _ := newTestDeal(t)
	ctx := context.Background()

	steps := []struct {
		name string
		want models.EventType
		run  func() (Outcome, error)
	}{
		{"product", models.EventProduct, func() (Outcome, error) {
			return d.AddProduct(models.Product{ProductName: "Seats", Quantity: 10, UnitPrice: 5000})
		}},
		{"note", models.EventNote, func() (Outcome, error) {
			return d.AddNote(models.Note{Content: "Champion is the VP of ops"})
		}},
		{"meeting", models.EventMeeting, func() (Outcome, error) {
			return d.AddMeeting(models.Meeting{Title: "Kickoff", StartTime: base.Add(24 * time.Hour)})
		}},
		{"call", models.EventCall, func() (Outcome, error) {
			return d.LogCall(models.Call{Subject: "Intro", Duration: 15 * time.Minute})
		}},
		{"email", models.EventEmail, func() (Outcome, error) {
			return d.LogEmail(models.Email{Subject: "Pricing", To: []string{"buyer@example.com"}})
		}},
		{"reminder", models.EventReminder, func() (Outcome, error) {
			return d.AddReminder(models.Reminder{Title: "Send contract", RemindAt: base.Add(time.Hour)})
		}},
		{"attachment", models.EventAttachment, func() (Outcome, error) {
			_, outcome, err := d.AddAttachment(ctx, AttachmentUpload{FileName: "quote.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
			return outcome, err
		}},
		{"follow-up", models.EventFollowUp, func() (Outcome, error) {
			_, outcome, err := d.AddFollowUp(ctx, models.FollowUp{Subject: "Check in", ScheduledDate: base.Add(48 * time.Hour)})
			return outcome, err
		}},
		{"stage", models.EventStageChange, func() (Outcome, error) {
			return d.ChangeStage(StageChange{Target: models.StageNegotiation, Reason: "Budget confirmed"})
		}},
	}

	for i, step := range steps {
		outcome, err := step.run()
		require.NoError(t, err, step.name)
		require.Equal(t, OutcomeApplied, outcome, step.name)

		events := d.Timeline()
		require.Len(t, events, i+1, step.name)
		assert.Equal(t, i+1, events[0].ID, step.name)
		assert.Equal(t, step.want, events[0].Type, step.name)
		assert.Equal(t, "Harper", events[0].User)
		assert.Equal(t, "user-1", events[0].UserUUID)
		assert.Equal(t, base, events[0].Timestamp)
	}
}

func TestSnapshotIsIsolatedFromLaterChanges(t *testing.T) {
	d, _ := newTestDeal(t)
	_, err := d.AddProduct(models.Product{ProductUUID: "p1", ProductName: "Seats"})
	require.NoError(t, err)

	snap := d.Snapshot()
	snap.Products[0].ProductName = "mutated"

	_, err = d.AddProduct(models.Product{ProductUUID: "p2", ProductName: "Support"})
	require.NoError(t, err)

	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Timeline, 1)
	p, ok := d.Product("p1")
	require.True(t, ok)
	assert.Equal(t, "Seats", p.ProductName)
}

func TestDealsAreIndependent(t *testing.T) {
	a, _ := newTestDeal(t)
	b, _ := newTestDeal(t)

	_, err := a.AddNote(models.Note{Content: "only on a"})
	require.NoError(t, err)

	assert.Equal(t, 1, a.TimelineLen())
	assert.Zero(t, b.TimelineLen())
	assert.Empty(t, b.Notes())
}

func TestConcurrentMutationsKeepSequence(t *testing.T) {
	d, _ := newTestDeal(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.AddNote(models.Note{Content: "parallel"})
		}()
	}
	wg.Wait()

	events := d.Timeline()
	require.Len(t, events, 20)
	for i, ev := range events {
		assert.Equal(t, 20-i, ev.ID)
	}
	assert.Len(t, d.Notes(), 20)
}
