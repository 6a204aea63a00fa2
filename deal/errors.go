// ABOUTME: Error and outcome types returned by deal operations
// ABOUTME: Validation errors are field-level; missing ids are a distinct outcome, not an error
package deal

import (
	"errors"
	"fmt"

	"github.com/harperreed/dealdesk/models"
)

// ErrValidation is wrapped by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a rejected input field. No state changes when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// FieldOf returns the rejected field name when err is a ValidationError.
func FieldOf(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field, true
	}
	return "", false
}

// Outcome tells the caller what an operation did.
type Outcome int

const (
	// OutcomeRejected accompanies a non-nil error.
	OutcomeRejected Outcome = iota
	OutcomeApplied
	OutcomeNotFound
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDuplicate:
		return "duplicate"
	}
	return "rejected"
}

// Changed reports whether the operation committed a new snapshot.
func (o Outcome) Changed() bool {
	return o == OutcomeApplied
}

// ApplyPolicy states when a mutation reaches local state.
type ApplyPolicy int

const (
	// ApplyOptimistic commits locally with generated identifiers.
	ApplyOptimistic ApplyPolicy = iota
	// ApplyConfirmed commits only the entity returned by the persistence service.
	ApplyConfirmed
)

func (p ApplyPolicy) String() string {
	if p == ApplyConfirmed {
		return "confirmed"
	}
	return "optimistic"
}

// ApplyPolicyFor returns the apply policy for an entity kind.
func ApplyPolicyFor(t models.EventType) ApplyPolicy {
	if t == models.EventFollowUp {
		return ApplyConfirmed
	}
	return ApplyOptimistic
}
