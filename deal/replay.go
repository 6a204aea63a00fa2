// ABOUTME: Rebuilds deal state from a stored timeline
// ABOUTME: Events are folded oldest to newest; each carries enough to redo its change
package deal

import (
	"fmt"
	"slices"

	"github.com/harperreed/dealdesk/models"
)

// Replay folds a newest-first timeline into the state it describes.
func Replay(events []models.TimelineEvent) (State, error) {
	s := State{Stage: models.StageDiscussion}
	for i := len(events) - 1; i >= 0; i-- {
		if err := apply(&s, events[i]); err != nil {
			return State{}, fmt.Errorf("failed to replay event %d: %w", events[i].ID, err)
		}
	}
	return s, nil
}

// Restore builds a deal from its stored timeline.
// Preview URLs do not survive a restart, so restored attachments have none.
func Restore(opts Options, events []models.TimelineEvent) (*Deal, error) {
	timeline, err := NewTimeline(events)
	if err != nil {
		return nil, err
	}
	state, err := Replay(events)
	if err != nil {
		return nil, err
	}
	for i := range state.Attachments {
		state.Attachments[i].PreviewURL = ""
	}

	d := newDeal(opts)
	d.state = state
	d.timeline = timeline
	return d, nil
}

func apply(s *State, ev models.TimelineEvent) error {
	switch det := ev.Details.(type) {
	case models.StageChangeDetails:
		if s.Stage != det.PreviousStage {
			return fmt.Errorf("stage change from %s but deal is in %s", det.PreviousStage, s.Stage)
		}
		s.Stage = det.NewStage
		return nil
	case models.ProductDetails:
		return fold(products, s, det.Action, det.Product)
	case models.AttachmentDetails:
		return fold(attachments, s, det.Action, det.Attachment)
	case models.MeetingDetails:
		return fold(meetings, s, det.Action, det.Meeting)
	case models.FollowUpDetails:
		return fold(followUps, s, det.Action, det.FollowUp)
	case models.CallDetails:
		return fold(calls, s, det.Action, det.Call)
	case models.EmailDetails:
		return fold(emails, s, det.Action, det.Email)
	case models.NoteDetails:
		return fold(notes, s, det.Action, det.Note)
	case models.ReminderDetails:
		return fold(reminders, s, det.Action, det.Reminder)
	case nil:
		return fmt.Errorf("event has no details")
	}
	return fmt.Errorf("unsupported details %T", ev.Details)
}

func fold[T models.Cloner[T]](c collection[T], s *State, action models.Action, item T) error {
	item = item.Clone()
	items := c.slot(s)
	id := c.key(item)
	i := c.index(*items, id)

	switch action {
	case models.ActionAdded:
		if i >= 0 {
			return fmt.Errorf("%s %s added twice", c.kind, id)
		}
		*items = append(*items, item)
	case models.ActionRemoved:
		if i < 0 {
			return fmt.Errorf("%s %s removed but never added", c.kind, id)
		}
		*items = slices.Delete(*items, i, i+1)
	case models.ActionUpdated, models.ActionCompleted, models.ActionCancelled, models.ActionRescheduled:
		if i < 0 {
			return fmt.Errorf("%s %s changed but never added", c.kind, id)
		}
		(*items)[i] = item
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}
