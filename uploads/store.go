// ABOUTME: Attachment blob store on top of the charm KV
// ABOUTME: Blobs are keyed by time-sortable ULIDs and addressed by URL
package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/dealdesk/charm"
)

// ErrBlobNotFound is returned for an unknown blob id or URL.
var ErrBlobNotFound = errors.New("blob not found")

// Meta describes a stored blob.
type Meta struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store saves attachment bytes and hands back URLs of the form <base>/<id>/<file name>.
// It satisfies deal.Uploader.
type Store struct {
	kv      *charm.Client
	baseURL string
	now     func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewStore(kv *charm.Client, baseURL string) *Store {
	return &Store{
		kv:      kv,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *Store) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *Store) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	meta := Meta{
		ID:          s.newID(),
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  s.now(),
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode blob metadata: %w", err)
	}

	if err := s.kv.Set([]byte(charm.BlobPrefix+meta.ID), data); err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}
	if err := s.kv.Set([]byte(charm.MetaPrefix+meta.ID), raw); err != nil {
		_ = s.kv.Delete([]byte(charm.BlobPrefix + meta.ID))
		return "", fmt.Errorf("failed to store blob metadata: %w", err)
	}

	return s.URL(meta), nil
}

// URL returns the address of a stored blob.
func (s *Store) URL(meta Meta) string {
	return s.baseURL + "/" + meta.ID + "/" + url.PathEscape(meta.FileName)
}

// IDFromURL extracts the blob id from a URL made by this store.
func (s *Store) IDFromURL(raw string) (string, error) {
	rest, ok := strings.CutPrefix(raw, s.baseURL+"/")
	if !ok {
		return "", fmt.Errorf("%w: %s is not a %s url", ErrBlobNotFound, raw, s.baseURL)
	}
	id, _, _ := strings.Cut(rest, "/")
	if _, err := ulid.ParseStrict(id); err != nil {
		return "", fmt.Errorf("%w: bad id %q", ErrBlobNotFound, id)
	}
	return id, nil
}

// Stat returns blob metadata.
func (s *Store) Stat(id string) (Meta, error) {
	raw, err := s.kv.Get([]byte(charm.MetaPrefix + id))
	if errors.Is(err, charm.ErrNotFound) {
		return Meta{}, ErrBlobNotFound
	}
	if err != nil {
		return Meta{}, fmt.Errorf("failed to read blob metadata: %w", err)
	}

	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{}, fmt.Errorf("failed to decode blob metadata: %w", err)
	}
	return meta, nil
}

// Open returns a blob's metadata and bytes.
func (s *Store) Open(id string) (Meta, []byte, error) {
	meta, err := s.Stat(id)
	if err != nil {
		return Meta{}, nil, err
	}
	data, err := s.kv.Get([]byte(charm.BlobPrefix + id))
	if errors.Is(err, charm.ErrNotFound) {
		return Meta{}, nil, ErrBlobNotFound
	}
	if err != nil {
		return Meta{}, nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return meta, data, nil
}

// Delete removes a blob. Unknown ids return ErrBlobNotFound.
func (s *Store) Delete(id string) error {
	if _, err := s.Stat(id); err != nil {
		return err
	}
	if err := s.kv.Delete([]byte(charm.BlobPrefix + id)); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	if err := s.kv.Delete([]byte(charm.MetaPrefix + id)); err != nil {
		return fmt.Errorf("failed to delete blob metadata: %w", err)
	}
	return nil
}

// Discard deletes the blob behind a URL made by this store.
func (s *Store) Discard(_ context.Context, raw string) error {
	id, err := s.IDFromURL(raw)
	if err != nil {
		return err
	}
	return s.Delete(id)
}

// List returns metadata for every blob, oldest first.
func (s *Store) List() ([]Meta, error) {
	keys, err := s.kv.KeysWithPrefix([]byte(charm.MetaPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	metas := make([]Meta, 0, len(keys))
	for _, k := range keys {
		meta, err := s.Stat(strings.TrimPrefix(string(k), charm.MetaPrefix))
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	// ULIDs sort by time.
	slices.SortFunc(metas, func(a, b Meta) int { return strings.Compare(a.ID, b.ID) })
	return metas, nil
}
