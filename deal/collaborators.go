// ABOUTME: Boundaries to the services a deal depends on
// ABOUTME: Follow-up persistence, attachment uploads, and the contact directory
package deal

import (
	"context"

	"github.com/harperreed/dealdesk/models"
)

// FollowUpService persists follow-up changes and returns the confirmed entity.
// A deal commits follow-up changes only after the service accepts them.
type FollowUpService interface {
	CreateFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error)
	UpdateFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error)
	CompleteFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error)
	CancelFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error)
	RescheduleFollowUp(ctx context.Context, dealID string, f models.FollowUp) (models.FollowUp, error)
	DeleteFollowUp(ctx context.Context, dealID, followUpID string) error
}

// Uploader stores attachment bytes and returns a durable URL.
type Uploader interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

// Discarder is an Uploader that can drop a blob it returned. A deal discards
// an upload that lost a race with an attachment of the same id.
type Discarder interface {
	Discard(ctx context.Context, url string) error
}

// ContactDirectory supplies contact persons selectable for meetings, follow-ups and reviews.
type ContactDirectory interface {
	ListContactPersons(ctx context.Context, query string, limit int) ([]models.ContactPerson, error)
	GetContactPerson(ctx context.Context, id string) (*models.ContactPerson, error)
}

// EchoFollowUps confirms every request unchanged. It stands in for the
// persistence service when a deal runs without a database.
type EchoFollowUps struct{}

func (EchoFollowUps) CreateFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return f, nil
}

func (EchoFollowUps) UpdateFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return f, nil
}

func (EchoFollowUps) CompleteFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return f, nil
}

func (EchoFollowUps) CancelFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return f, nil
}

func (EchoFollowUps) RescheduleFollowUp(_ context.Context, _ string, f models.FollowUp) (models.FollowUp, error) {
	return f, nil
}

func (EchoFollowUps) DeleteFollowUp(context.Context, string, string) error {
	return nil
}
