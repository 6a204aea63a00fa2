// ABOUTME: Tests that recorded timeline entries and deal state share nothing with callers
// ABOUTME: Inputs reused after a call and edited snapshots must leave the deal untouched
package deal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/models"
)

// latest returns the newest timeline entry of a fresh read.
func latest(t *testing.T, d *Deal) models.TimelineEvent {
	t.Helper()
	events := d.Timeline()
	require.NotEmpty(t, events)
	return events[0]
}

func TestFollowUpInputReuseDoesNotRewriteTimeline(t *testing.T) {
	d, _ := newTestDeal(t)
	ctx := context.Background()

	people := []models.ContactPerson{{ContactPersonUUID: "c1", Name: "Dana"}}
	_, _, err := d.AddFollowUp(ctx, models.FollowUp{
		FollowUpUUID:   "f1",
		Subject:        "Pricing call",
		ScheduledDate:  base.Add(24 * time.Hour),
		ContactPersons: people,
	})
	require.NoError(t, err)

	people[0].Name = "someone else"

	det := latest(t, d).Details.(models.FollowUpDetails)
	assert.Equal(t, "Dana", det.FollowUp.ContactPersons[0].Name)
	f, ok := d.FollowUp("f1")
	require.True(t, ok)
	assert.Equal(t, "Dana", f.ContactPersons[0].Name)
}

func TestEditedSnapshotDoesNotRewriteFollowUpHistory(t *testing.T) {
	d, _ := newTestDeal(t)
	ctx := context.Background()

	_, _, err := d.AddFollowUp(ctx, models.FollowUp{FollowUpUUID: "f1", Subject: "Demo", ScheduledDate: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = d.RescheduleFollowUp(ctx, "f1", base.Add(48*time.Hour), "moved by client")
	require.NoError(t, err)
	_, err = d.CompleteFollowUp(ctx, "f1", "demo went well")
	require.NoError(t, err)

	snap := d.Snapshot()
	*snap.FollowUps[0].CompletedDate = time.Time{}
	*snap.FollowUps[0].OriginalScheduledDate = time.Time{}
	completed := snap.Timeline[0].Details.(models.FollowUpDetails)
	*completed.FollowUp.CompletedDate = time.Time{}
	*completed.Previous.OriginalScheduledDate = time.Time{}

	det := latest(t, d).Details.(models.FollowUpDetails)
	require.NotNil(t, det.FollowUp.CompletedDate)
	assert.Equal(t, base, *det.FollowUp.CompletedDate)
	require.NotNil(t, det.Previous.OriginalScheduledDate)
	assert.Equal(t, base.Add(time.Hour), *det.Previous.OriginalScheduledDate)

	f, _ := d.FollowUp("f1")
	assert.Equal(t, base, *f.CompletedDate)
	assert.Equal(t, base.Add(time.Hour), *f.OriginalScheduledDate)

	// Lookups hand out copies too.
	*f.CompletedDate = time.Time{}
	again, _ := d.FollowUp("f1")
	assert.Equal(t, base, *again.CompletedDate)
}

func TestReturnedFollowUpIsACopy(t *testing.T) {
	d, _ := newTestDeal(t)
	f, _, err := d.AddFollowUp(context.Background(), models.FollowUp{
		Subject:        "Intro",
		ScheduledDate:  base.Add(time.Hour),
		ContactPersons: []models.ContactPerson{{ContactPersonUUID: "c1", Name: "Dana"}},
	})
	require.NoError(t, err)

	f.ContactPersons[0].Name = "changed"

	stored, _ := d.FollowUp(f.FollowUpUUID)
	assert.Equal(t, "Dana", stored.ContactPersons[0].Name)
}

func TestMeetingContactsAreCopied(t *testing.T) {
	d, _ := newTestDeal(t)

	people := []models.ContactPerson{{ContactPersonUUID: "c1", Name: "Dana"}}
	_, err := d.AddMeeting(models.Meeting{MeetingUUID: "m1", Title: "Kickoff", StartTime: base, ContactPersons: people})
	require.NoError(t, err)
	people[0].Name = "changed"

	patchPeople := []models.ContactPerson{{ContactPersonUUID: "c2", Name: "Lee"}}
	_, err = d.UpdateMeeting("m1", models.MeetingPatch{ContactPersons: patchPeople})
	require.NoError(t, err)
	patchPeople[0].Name = "changed"

	events := d.Timeline()
	added := events[1].Details.(models.MeetingDetails)
	assert.Equal(t, "Dana", added.Meeting.ContactPersons[0].Name)
	updated := events[0].Details.(models.MeetingDetails)
	assert.Equal(t, "Lee", updated.Meeting.ContactPersons[0].Name)
	assert.Equal(t, "Dana", updated.Previous.ContactPersons[0].Name)

	snap := d.Snapshot()
	snap.Meetings[0].ContactPersons[0].Name = "changed"
	m, _ := d.Meeting("m1")
	assert.Equal(t, "Lee", m.ContactPersons[0].Name)
}

func TestEmailRecipientsAreCopied(t *testing.T) {
	d, _ := newTestDeal(t)

	to := []string{"cfo@acme.test"}
	cc := []string{"ops@acme.test"}
	_, err := d.LogEmail(models.Email{EmailUUID: "e1", Subject: "Quote", To: to, CC: cc})
	require.NoError(t, err)
	to[0], cc[0] = "changed", "changed"

	det := latest(t, d).Details.(models.EmailDetails)
	assert.Equal(t, []string{"cfo@acme.test"}, det.Email.To)
	assert.Equal(t, []string{"ops@acme.test"}, det.Email.CC)

	emails := d.Emails()
	emails[0].To[0] = "changed"
	assert.Equal(t, []string{"cfo@acme.test"}, d.Emails()[0].To)
}

func TestCallContactIsCopied(t *testing.T) {
	d, _ := newTestDeal(t)

	person := &models.ContactPerson{ContactPersonUUID: "c1", Name: "Dana"}
	_, err := d.LogCall(models.Call{CallUUID: "k1", Subject: "Check-in", ContactPerson: person, CalledAt: base})
	require.NoError(t, err)
	person.Name = "changed"

	det := latest(t, d).Details.(models.CallDetails)
	assert.Equal(t, "Dana", det.Call.ContactPerson.Name)
}

func TestProductPreviousCannotBeRewritten(t *testing.T) {
	d, _ := newTestDeal(t)
	_, err := d.AddProduct(models.Product{ProductUUID: "p1", ProductName: "Seats", Quantity: 10})
	require.NoError(t, err)
	qty := 12
	_, err = d.UpdateProduct("p1", models.ProductPatch{Quantity: &qty})
	require.NoError(t, err)

	det := latest(t, d).Details.(models.ProductDetails)
	require.NotNil(t, det.Previous)
	det.Previous.Quantity = 99

	again := latest(t, d).Details.(models.ProductDetails)
	assert.Equal(t, 10, again.Previous.Quantity)
	assert.Equal(t, 12, again.Product.Quantity)
}

func TestStageProofCannotBeRewritten(t *testing.T) {
	d, _ := newTestDeal(t)
	proof := []models.Attachment{{AttachmentUUID: "a1", FileName: "contract.pdf", URL: "https://files.test/contract.pdf"}}
	_, err := d.ChangeStage(StageChange{Target: models.StageClosedWon, Reason: "signed", Proof: proof})
	require.NoError(t, err)
	proof[0].FileName = "changed"

	det := latest(t, d).Details.(models.StageChangeDetails)
	det.Proof[0].URL = "changed"

	again := latest(t, d).Details.(models.StageChangeDetails)
	assert.Equal(t, "contract.pdf", again.Proof[0].FileName)
	assert.Equal(t, "https://files.test/contract.pdf", again.Proof[0].URL)
}

func TestRestoreDoesNotShareCallerEvents(t *testing.T) {
	src, _ := newTestDeal(t)
	_, err := src.LogEmail(models.Email{EmailUUID: "e1", Subject: "Quote", To: []string{"cfo@acme.test"}})
	require.NoError(t, err)

	events := src.Timeline()
	restored, err := Restore(Options{ID: "deal-1"}, events)
	require.NoError(t, err)

	events[0].Details.(models.EmailDetails).Email.To[0] = "changed"

	assert.Equal(t, []string{"cfo@acme.test"}, restored.Emails()[0].To)
	det := restored.Timeline()[0].Details.(models.EmailDetails)
	assert.Equal(t, []string{"cfo@acme.test"}, det.Email.To)
}
