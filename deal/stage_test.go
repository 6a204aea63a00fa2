// ABOUTME: Tests for deal stage transitions
// ABOUTME: Covers closing evidence, review bounds, and the no-reopen rule
package deal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/models"
)

func proof(n int) []models.Attachment {
	out := make([]models.Attachment, n)
	for i := range out {
		out[i] = models.Attachment{AttachmentUUID: fmt.Sprintf("att-%d", i+1), FileName: "signed.pdf"}
	}
	return out
}

func TestChangeStageClosedWonProofBounds(t *testing.T) {
	tests := []struct {
		proofs int
		ok     bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, true},
		{4, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d attachments", tt.proofs), func(t *testing.T) {
			d, _ := newTestDeal(t)

			outcome, err := d.ChangeStage(StageChange{
				Target: models.StageClosedWon,
				Reason: "Contract signed",
				Proof:  proof(tt.proofs),
			})

			if !tt.ok {
				require.ErrorIs(t, err, ErrValidation)
				field, _ := FieldOf(err)
				assert.Equal(t, "proof", field)
				assert.Equal(t, OutcomeRejected, outcome)
				assert.Equal(t, models.StageDiscussion, d.Stage())
				assert.Zero(t, d.TimelineLen())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, OutcomeApplied, outcome)
			assert.Equal(t, models.StageClosedWon, d.Stage())

			ev := d.Timeline()[0]
			assert.Equal(t, models.EventStageChange, ev.Type)
			assert.Equal(t, models.ColorSuccess, ev.Color)
			details := ev.Details.(models.StageChangeDetails)
			assert.Equal(t, models.StageDiscussion, details.PreviousStage)
			assert.Equal(t, models.StageClosedWon, details.NewStage)
			assert.Len(t, details.Proof, tt.proofs)
		})
	}
}

func TestChangeStageEmptyProofScenario(t *testing.T) {
	d, _ := newTestDeal(t)
	_, err := d.ChangeStage(StageChange{Target: models.StageNegotiation, Reason: "Pricing sent"})
	require.NoError(t, err)

	_, err = d.ChangeStage(StageChange{Target: models.StageClosedWon, Reason: "Won", Proof: nil})
	require.Error(t, err)

	assert.Equal(t, models.StageNegotiation, d.Stage())
	assert.Equal(t, 1, d.TimelineLen())
}

func TestChangeStageClosedLostNeedsLossReason(t *testing.T) {
	d, _ := newTestDeal(t)

	_, err := d.ChangeStage(StageChange{Target: models.StageClosedLost, Reason: "Went quiet"})
	require.ErrorIs(t, err, ErrValidation)
	field, _ := FieldOf(err)
	assert.Equal(t, "lossReason", field)
	assert.Zero(t, d.TimelineLen())

	outcome, err := d.ChangeStage(StageChange{Target: models.StageClosedLost, Reason: "Went quiet", LossReason: "Chose competitor"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	details := d.Timeline()[0].Details.(models.StageChangeDetails)
	assert.Equal(t, "Chose competitor", details.LossReason)
	assert.Empty(t, details.Proof)
	assert.Equal(t, models.ColorFailure, d.Timeline()[0].Color)
}

func TestChangeStageRejects(t *testing.T) {
	tests := []struct {
		name  string
		req   StageChange
		field string
	}{
		{"unknown stage", StageChange{Target: "prospecting", Reason: "x"}, "stage"},
		{"same stage", StageChange{Target: models.StageDiscussion, Reason: "x"}, "stage"},
		{"missing reason", StageChange{Target: models.StageNegotiation}, "reason"},
		{"proof without id", StageChange{Target: models.StageClosedWon, Reason: "x", Proof: []models.Attachment{{FileName: "a.pdf"}}}, "proof"},
		{"rating too high", StageChange{Target: models.StageClosedLost, Reason: "x", LossReason: "y", ContactReviews: []models.ContactReview{{ContactPersonUUID: "c1", Rating: 6}}}, "contactPersonReviews"},
		{"rating negative", StageChange{Target: models.StageClosedLost, Reason: "x", LossReason: "y", ContactReviews: []models.ContactReview{{ContactPersonUUID: "c1", Rating: -1}}}, "contactPersonReviews"},
		{"review without contact", StageChange{Target: models.StageClosedLost, Reason: "x", LossReason: "y", ContactReviews: []models.ContactReview{{Rating: 3}}}, "contactPersonReviews"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDeal(t)
			outcome, err := d.ChangeStage(tt.req)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, OutcomeRejected, outcome)
			assert.Zero(t, d.TimelineLen())
		})
	}
}

func TestClosedDealsDoNotReopen(t *testing.T) {
	d, _ := newTestDeal(t)
	_, err := d.ChangeStage(StageChange{Target: models.StageClosedLost, Reason: "No budget", LossReason: "Budget cut"})
	require.NoError(t, err)

	for _, target := range []models.Stage{models.StageDiscussion, models.StageNegotiation, models.StageClosedWon} {
		_, err := d.ChangeStage(StageChange{Target: target, Reason: "Try again", Proof: proof(1)})
		assert.ErrorIs(t, err, ErrValidation, target)
	}
	assert.Equal(t, models.StageClosedLost, d.Stage())
	assert.Equal(t, 1, d.TimelineLen())
}

func TestStageCanMoveBackBeforeClosing(t *testing.T) {
	d, _ := newTestDeal(t)
	_, err := d.ChangeStage(StageChange{Target: models.StageNegotiation, Reason: "Pricing"})
	require.NoError(t, err)
	_, err = d.ChangeStage(StageChange{Target: models.StageDiscussion, Reason: "Scope changed"})
	require.NoError(t, err)

	assert.Equal(t, models.StageDiscussion, d.Stage())
	assert.Equal(t, 2, d.TimelineLen())
}

func TestReviewsKeptOnlyWhenClosing(t *testing.T) {
	reviews := []models.ContactReview{{ContactPersonUUID: "c1", ContactName: "Dana", Rating: 5, Comment: "Great champion"}}

	d, _ := newTestDeal(t)
	_, err := d.ChangeStage(StageChange{Target: models.StageNegotiation, Reason: "Pricing", ContactReviews: reviews})
	require.NoError(t, err)
	details := d.Timeline()[0].Details.(models.StageChangeDetails)
	assert.Empty(t, details.ContactPersonReviews)

	_, err = d.ChangeStage(StageChange{Target: models.StageClosedWon, Reason: "Signed", Proof: proof(1), ContactReviews: reviews})
	require.NoError(t, err)
	details = d.Timeline()[0].Details.(models.StageChangeDetails)
	assert.Equal(t, reviews, details.ContactPersonReviews)
}
