// ABOUTME: Attachment upload and removal on a deal
// ABOUTME: Uploaded bytes go to the Uploader; image previews are tracked in the PreviewRegistry
package deal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

// MaxAttachmentSize bounds a single upload.
const MaxAttachmentSize = 25 << 20

// ErrNoUploader is returned when a deal has no Uploader configured.
var ErrNoUploader = errors.New("no uploader configured")

// AttachmentUpload is a file waiting to be attached.
type AttachmentUpload struct {
	AttachmentUUID string
	FileName       string
	ContentType    string
	Data           []byte
}

var attachments = collection[models.Attachment]{
	kind: models.EventAttachment,
	key:  func(a models.Attachment) string { return a.AttachmentUUID },
	slot: func(s *State) *[]models.Attachment { return &s.Attachments },
	event: func(action models.Action, a models.Attachment, previous *models.Attachment) models.TimelineEvent {
		return models.TimelineEvent{
			Title:       "Attachment " + string(action),
			Description: fmt.Sprintf("%s (%d bytes)", a.FileName, a.Size),
			Color:       actionColor(action),
			Details:     models.AttachmentDetails{Action: action, Attachment: a, Previous: previous},
		}
	},
}

func validateAttachment(a models.Attachment) error {
	if strings.TrimSpace(a.FileName) == "" {
		return invalid("fileName", "is required")
	}
	if a.Size < 0 || a.Size > MaxAttachmentSize {
		return invalid("size", "must be between 0 and %d bytes", MaxAttachmentSize)
	}
	return nil
}

// AddAttachment uploads the file and adds it to the deal.
func (d *Deal) AddAttachment(ctx context.Context, up AttachmentUpload) (models.Attachment, Outcome, error) {
	a := models.Attachment{
		AttachmentUUID: up.AttachmentUUID,
		FileName:       up.FileName,
		ContentType:    up.ContentType,
		Size:           int64(len(up.Data)),
	}
	if a.AttachmentUUID == "" {
		a.AttachmentUUID = uuid.NewString()
	}
	if a.ContentType == "" {
		a.ContentType = "application/octet-stream"
	}
	if err := validateAttachment(a); err != nil {
		return models.Attachment{}, OutcomeRejected, d.reject("add attachment", err)
	}
	if len(up.Data) == 0 {
		return models.Attachment{}, OutcomeRejected, d.reject("add attachment", invalid("data", "is empty"))
	}
	if _, ok := d.Attachment(a.AttachmentUUID); ok {
		return models.Attachment{}, OutcomeDuplicate, nil
	}
	if d.uploads == nil {
		return models.Attachment{}, OutcomeRejected, ErrNoUploader
	}

	url, err := d.uploads.Upload(ctx, a.FileName, a.ContentType, up.Data)
	if err != nil {
		return models.Attachment{}, OutcomeRejected, fmt.Errorf("failed to upload attachment: %w", err)
	}
	a.URL = url
	a.UploadedAt = d.now()

	// Concurrent adds of the same id both pass the early check; only the
	// one that wins the lock may acquire a preview.
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state
	items := attachments.slot(&next)
	if attachments.index(*items, a.AttachmentUUID) >= 0 {
		d.discard(ctx, url)
		return models.Attachment{}, OutcomeDuplicate, nil
	}

	a.PreviewURL = d.previews.Acquire(d.id, a.AttachmentUUID, a.ContentType, up.Data)
	*items = attachments.appended(*items, a)
	d.commit(next, attachments.event(models.ActionAdded, a, nil))
	return a, OutcomeApplied, nil
}

func (d *Deal) discard(ctx context.Context, url string) {
	discarder, ok := d.uploads.(Discarder)
	if !ok {
		d.logger.Warn("duplicate upload left in store", "url", url)
		return
	}
	if err := discarder.Discard(ctx, url); err != nil {
		d.logger.Warn("failed to discard duplicate upload", "url", url, "err", err)
	}
}

// AttachReference adds an attachment that already lives at a URL.
func (d *Deal) AttachReference(a models.Attachment) (Outcome, error) {
	if a.AttachmentUUID == "" {
		a.AttachmentUUID = uuid.NewString()
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = d.now()
	}
	a.PreviewURL = ""
	if err := validateAttachment(a); err != nil {
		return OutcomeRejected, d.reject("attach reference", err)
	}
	return addTo(d, attachments, a), nil
}

func (d *Deal) UpdateAttachment(id string, patch models.AttachmentPatch) (Outcome, error) {
	return updateIn(d, attachments, id, patch, validateAttachment)
}

// RemoveAttachment removes an attachment and releases its preview.
func (d *Deal) RemoveAttachment(id string) Outcome {
	gone, outcome := removeFrom(d, attachments, id, nil)
	if outcome == OutcomeApplied {
		d.previews.Release(gone.PreviewURL)
	}
	return outcome
}

func (d *Deal) Attachments() []models.Attachment {
	return list(d, attachments)
}

func (d *Deal) Attachment(id string) (models.Attachment, bool) {
	return lookup(d, attachments, id)
}

// Close releases every preview this deal acquired. The deal stays usable.
func (d *Deal) Close() {
	if n := d.previews.ReleaseOwner(d.id); n > 0 {
		d.logger.Debug("released previews", "count", n)
	}
}
