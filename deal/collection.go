// ABOUTME: Generic add/update/remove manager shared by every deal-owned collection
// ABOUTME: Each successful change produces a new slice and exactly one timeline event
package deal

import (
	"slices"

	"github.com/harperreed/dealdesk/models"
)

type patcher[T any] interface {
	Apply(T) T
}

// collection describes one entity kind: how to key it, where it lives in State,
// and how its changes read on the timeline.
type collection[T models.Cloner[T]] struct {
	kind  models.EventType
	key   func(T) string
	slot  func(*State) *[]T
	event func(action models.Action, item T, previous *T) models.TimelineEvent
}

func (c collection[T]) index(items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return c.key(item) == id })
}

func (c collection[T]) find(items []T, id string) (T, bool) {
	if i := c.index(items, id); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

func (c collection[T]) appended(items []T, item T) []T {
	next := make([]T, len(items), len(items)+1)
	copy(next, items)
	return append(next, item)
}

func (c collection[T]) replaced(items []T, i int, item T) []T {
	next := slices.Clone(items)
	next[i] = item
	return next
}

func (c collection[T]) removed(items []T, i int) []T {
	next := make([]T, 0, len(items)-1)
	next = append(next, items[:i]...)
	return append(next, items[i+1:]...)
}

// addTo appends a copy of item unless its key is already present.
func addTo[T models.Cloner[T]](d *Deal, c collection[T], item T) Outcome {
	item = item.Clone()

	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state
	items := c.slot(&next)
	if c.index(*items, c.key(item)) >= 0 {
		d.logger.Debug("duplicate ignored", "kind", c.kind, "id", c.key(item))
		return OutcomeDuplicate
	}

	*items = c.appended(*items, item)
	d.commit(next, c.event(models.ActionAdded, item, nil))
	return OutcomeApplied
}

// updateIn merges patch into the entity with the given id.
func updateIn[T models.Cloner[T], P patcher[T]](d *Deal, c collection[T], id string, patch P, validate func(T) error) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state
	items := c.slot(&next)
	i := c.index(*items, id)
	if i < 0 {
		return OutcomeNotFound, nil
	}

	before := (*items)[i]
	after := patch.Apply(before.Clone())
	if validate != nil {
		if err := validate(after); err != nil {
			return OutcomeRejected, d.reject("update "+string(c.kind), err)
		}
	}

	*items = c.replaced(*items, i, after)
	d.commit(next, c.event(models.ActionUpdated, after, &before))
	return OutcomeApplied, nil
}

// removeFrom drops the entity with the given id; decorate may enrich the removal event.
func removeFrom[T models.Cloner[T]](d *Deal, c collection[T], id string, decorate func(*models.TimelineEvent)) (T, Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state
	items := c.slot(&next)
	i := c.index(*items, id)
	if i < 0 {
		var zero T
		return zero, OutcomeNotFound
	}

	gone := (*items)[i]
	*items = c.removed(*items, i)
	ev := c.event(models.ActionRemoved, gone, nil)
	if decorate != nil {
		decorate(&ev)
	}
	d.commit(next, ev)
	return gone.Clone(), OutcomeApplied
}

func lookup[T models.Cloner[T]](d *Deal, c collection[T], id string) (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	item, ok := c.find(*c.slot(&d.state), id)
	return item.Clone(), ok
}

func list[T models.Cloner[T]](d *Deal, c collection[T]) []T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return models.CloneAll(*c.slot(&d.state))
}
