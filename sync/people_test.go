// ABOUTME: Tests for the People API contact directory
// ABOUTME: Uses a scripted page fetcher instead of the Google API
package sync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

var _ deal.ContactDirectory = (*PeopleDirectory)(nil)

func person(resource, name, email string) *people.Person {
	p := &people.Person{ResourceName: resource}
	if name != "" {
		p.Names = []*people.Name{{DisplayName: name}}
	}
	if email != "" {
		p.EmailAddresses = []*people.EmailAddress{{Value: email}}
	}
	return p
}

func TestPersonToContact(t *testing.T) {
	p := &people.Person{
		ResourceName: "people/c1",
		Names:        []*people.Name{{DisplayName: "Dana Scully"}},
		EmailAddresses: []*people.EmailAddress{
			{Value: "other@example.com"},
			{Value: "dana@example.com", Metadata: &people.FieldMetadata{Primary: true}},
		},
		PhoneNumbers:  []*people.PhoneNumber{{Value: "555-0100"}},
		Organizations: []*people.Organization{{Name: "FBI", Title: "Special Agent"}},
	}

	c, ok := PersonToContact(p)
	require.True(t, ok)
	assert.Equal(t, models.ContactPerson{
		ContactPersonUUID: "people/c1",
		Name:              "Dana Scully",
		Email:             "dana@example.com",
		Phone:             "555-0100",
		Role:              "Special Agent, FBI",
	}, c)

	_, ok = PersonToContact(person("people/c2", "", "x@example.com"))
	assert.False(t, ok)
	_, ok = PersonToContact(nil)
	assert.False(t, ok)
}

func newTestDirectory(t *testing.T, pages map[string]*people.ListConnectionsResponse, fail error) *PeopleDirectory {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	d := NewPeopleDirectory(database, nil, nil)
	d.fetch = func(_ context.Context, token string) (*people.ListConnectionsResponse, error) {
		if fail != nil {
			return nil, fail
		}
		return pages[token], nil
	}
	return d
}

func TestImportPagesAndMatches(t *testing.T) {
	pages := map[string]*people.ListConnectionsResponse{
		"": {
			Connections:   []*people.Person{person("people/c1", "Dana", "dana@example.com"), person("people/c2", "", "")},
			NextPageToken: "p2",
		},
		"p2": {
			Connections: []*people.Person{person("people/c3", "Fox", "fox@example.com")},
		},
	}
	d := newTestDirectory(t, pages, nil)
	ctx := context.Background()

	manual := &models.ContactPerson{ContactPersonUUID: "manual-fox", Name: "Fox M.", Email: "FOX@example.com"}
	require.NoError(t, d.local.UpsertContactPerson(ctx, manual, ""))

	stats, err := d.Import(ctx)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Fetched: 3, Created: 1, Updated: 1, Skipped: 1}, stats)

	all, err := d.ListContactPersons(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fox, err := d.GetContactPerson(ctx, "manual-fox")
	require.NoError(t, err)
	require.NotNil(t, fox)
	assert.Equal(t, "Fox", fox.Name)

	state, err := db.GetSyncState(d.db, PeopleService)
	require.NoError(t, err)
	assert.Equal(t, db.SyncIdle, state.Status)
}

func TestImportFailureIsRecorded(t *testing.T) {
	d := newTestDirectory(t, nil, errors.New("quota exceeded"))

	_, err := d.Import(context.Background())
	require.Error(t, err)

	state, err := db.GetSyncState(d.db, PeopleService)
	require.NoError(t, err)
	assert.Equal(t, db.SyncFailed, state.Status)
	assert.Contains(t, state.LastError, "quota exceeded")
}

func TestImportWithoutServiceFails(t *testing.T) {
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	_, err = NewPeopleDirectory(database, nil, nil).Import(context.Background())
	assert.Error(t, err)
}
