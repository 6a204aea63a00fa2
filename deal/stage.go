// ABOUTME: Stage machine for deals: discussion, negotiation, closed won, closed lost
// ABOUTME: Closing a deal requires evidence; closed deals do not reopen
package deal

import (
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/models"
)

const (
	MinProof = 1
	MaxProof = 3
)

// StageChange asks to move a deal to Target.
type StageChange struct {
	Target         models.Stage
	Reason         string
	LossReason     string
	Proof          []models.Attachment
	ContactReviews []models.ContactReview
}

func validateStageChange(current models.Stage, req StageChange) error {
	if !req.Target.Valid() {
		return invalid("stage", "unknown stage %q", req.Target)
	}
	if current.IsClosed() {
		return invalid("stage", "deal is already %s", current.Label())
	}
	if req.Target == current {
		return invalid("stage", "deal is already in %s", current.Label())
	}
	if strings.TrimSpace(req.Reason) == "" {
		return invalid("reason", "is required")
	}

	switch req.Target {
	case models.StageClosedLost:
		if strings.TrimSpace(req.LossReason) == "" {
			return invalid("lossReason", "is required when closing as lost")
		}
	case models.StageClosedWon:
		if n := len(req.Proof); n < MinProof || n > MaxProof {
			return invalid("proof", "closing as won needs %d to %d attachments, got %d", MinProof, MaxProof, n)
		}
		for i, a := range req.Proof {
			if a.AttachmentUUID == "" && a.URL == "" {
				return invalid("proof", "attachment %d has no id or url", i+1)
			}
		}
	}

	if req.Target.IsClosed() {
		for _, r := range req.ContactReviews {
			if r.ContactPersonUUID == "" {
				return invalid("contactPersonReviews", "review is missing a contact person")
			}
			if r.Rating < models.MinReviewRating || r.Rating > models.MaxReviewRating {
				return invalid("contactPersonReviews", "rating for %s must be between %d and %d", r.ContactPersonUUID, models.MinReviewRating, models.MaxReviewRating)
			}
		}
	}
	return nil
}

// ChangeStage moves the deal to req.Target and records a stage_change event.
func (d *Deal) ChangeStage(req StageChange) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := d.state.Stage
	if err := validateStageChange(current, req); err != nil {
		return OutcomeRejected, d.reject("change stage", err)
	}

	details := models.StageChangeDetails{
		PreviousStage: current,
		NewStage:      req.Target,
		Reason:        req.Reason,
	}
	switch req.Target {
	case models.StageClosedLost:
		details.LossReason = req.LossReason
	case models.StageClosedWon:
		details.Proof = append([]models.Attachment(nil), req.Proof...)
	}
	if req.Target.IsClosed() && len(req.ContactReviews) > 0 {
		details.ContactPersonReviews = append([]models.ContactReview(nil), req.ContactReviews...)
	}

	color := models.ColorStage
	switch req.Target {
	case models.StageClosedWon:
		color = models.ColorSuccess
	case models.StageClosedLost:
		color = models.ColorFailure
	}

	next := d.state
	next.Stage = req.Target
	d.commit(next, models.TimelineEvent{
		Title:       "Stage changed to " + req.Target.Label(),
		Description: fmt.Sprintf("%s → %s: %s", current.Label(), req.Target.Label(), req.Reason),
		Color:       color,
		Details:     details,
	})
	d.logger.Info("deal stage changed", "from", current, "to", req.Target)
	return OutcomeApplied, nil
}
