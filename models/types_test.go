// ABOUTME: Tests for deal data models
// ABOUTME: Validates stage helpers, follow-up derived status, and timeline decoding
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	for _, s := range Stages {
		parsed, err := ParseStage(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStage("prospecting")
	assert.Error(t, err)
}

func TestStageIsClosed(t *testing.T) {
	assert.False(t, StageDiscussion.IsClosed())
	assert.False(t, StageNegotiation.IsClosed())
	assert.True(t, StageClosedWon.IsClosed())
	assert.True(t, StageClosedLost.IsClosed())
}

func TestProductTotal(t *testing.T) {
	p := Product{Quantity: 3, UnitPrice: 1000, DiscountPercent: 10}
	assert.Equal(t, int64(2700), p.Total())
}

func TestFollowUpEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    FollowUpStatus
		scheduled time.Time
		want      FollowUpStatus
	}{
		{"scheduled in future", FollowUpScheduled, now.Add(time.Hour), FollowUpScheduled},
		{"scheduled in past", FollowUpScheduled, now.Add(-time.Hour), FollowUpOverdue},
		{"rescheduled in past", FollowUpRescheduled, now.Add(-time.Hour), FollowUpOverdue},
		{"completed in past", FollowUpCompleted, now.Add(-time.Hour), FollowUpCompleted},
		{"cancelled in past", FollowUpCancelled, now.Add(-time.Hour), FollowUpCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FollowUp{Status: tt.status, ScheduledDate: tt.scheduled}
			assert.Equal(t, tt.want, f.EffectiveStatus(now))
			// the stored status never changes
			assert.Equal(t, tt.status, f.Status)
		})
	}
}

func TestFollowUpCanPerformActions(t *testing.T) {
	assert.True(t, FollowUp{Status: FollowUpScheduled}.CanPerformActions())
	assert.True(t, FollowUp{Status: FollowUpRescheduled}.CanPerformActions())
	assert.False(t, FollowUp{Status: FollowUpCompleted}.CanPerformActions())
	assert.False(t, FollowUp{Status: FollowUpCancelled}.CanPerformActions())
}

func TestTimelineEventDecodesDetailsVariant(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []TimelineEvent{
		{
			ID: 2, Type: EventStageChange, Title: "Stage changed", Timestamp: ts, Color: ColorStage,
			Details: StageChangeDetails{
				PreviousStage: StageDiscussion,
				NewStage:      StageClosedLost,
				Reason:        "budget cut",
				LossReason:    "price",
			},
		},
		{
			ID: 1, Type: EventProduct, Title: "Product added", Timestamp: ts, Color: ColorInfo,
			Details: ProductDetails{Action: ActionAdded, Product: Product{ProductUUID: "P1", ProductName: "Foo"}},
		},
	}

	data, err := json.Marshal(events)
	require.NoError(t, err)

	var decoded []TimelineEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	stage, ok := decoded[0].Details.(StageChangeDetails)
	require.True(t, ok, "expected StageChangeDetails, got %T", decoded[0].Details)
	assert.Equal(t, StageClosedLost, stage.NewStage)
	assert.Equal(t, "price", stage.LossReason)

	product, ok := decoded[1].Details.(ProductDetails)
	require.True(t, ok, "expected ProductDetails, got %T", decoded[1].Details)
	assert.Equal(t, "P1", product.Product.ProductUUID)
	assert.Equal(t, ActionAdded, product.Action)
}

func TestDecodeDetailsUnknownType(t *testing.T) {
	_, err := DecodeDetails("invoice", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestPatchesLeaveNilFieldsUntouched(t *testing.T) {
	name := "Bar"
	p := ProductPatch{ProductName: &name}.Apply(Product{ProductUUID: "P1", ProductName: "Foo", Quantity: 4})
	assert.Equal(t, "Bar", p.ProductName)
	assert.Equal(t, 4, p.Quantity)

	done := true
	r := ReminderPatch{Done: &done}.Apply(Reminder{Title: "Call back"})
	assert.True(t, r.Done)
	assert.Equal(t, "Call back", r.Title)
}
