// ABOUTME: In-memory registry of attachment preview blobs
// ABOUTME: Previews are acquired on upload and must be released on removal or teardown
package deal

import (
	"strings"
	"sync"
)

const previewScheme = "preview:"

type preview struct {
	owner       string
	contentType string
	data        []byte
}

// PreviewRegistry hands out preview URLs for attachment bytes. It may be
// shared by several deals, so entries are keyed by owning deal and attachment id.
type PreviewRegistry struct {
	mu      sync.Mutex
	entries map[string]preview
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{entries: make(map[string]preview)}
}

// PreviewURL is the URL Acquire hands out for owner's attachment.
func PreviewURL(owner, attachmentID string) string {
	return previewScheme + owner + "/" + attachmentID
}

// Acquire stores data for an attachment and returns its preview URL.
// Only images get previews; other content types return "".
func (r *PreviewRegistry) Acquire(owner, attachmentID, contentType string, data []byte) string {
	if !strings.HasPrefix(contentType, "image/") || len(data) == 0 {
		return ""
	}
	url := PreviewURL(owner, attachmentID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[url] = preview{owner: owner, contentType: contentType, data: append([]byte(nil), data...)}
	return url
}

// Open returns the bytes behind a preview URL.
func (r *PreviewRegistry) Open(url string) ([]byte, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.entries[url]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), p.data...), p.contentType, true
}

// Release drops the preview behind url. Unknown urls are ignored.
func (r *PreviewRegistry) Release(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, url)
}

// ReleaseOwner drops every preview acquired by owner and returns how many were held.
func (r *PreviewRegistry) ReleaseOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for url, p := range r.entries {
		if p.owner == owner {
			delete(r.entries, url)
			n++
		}
	}
	return n
}

func (r *PreviewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
