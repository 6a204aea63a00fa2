// ABOUTME: Contact directory fed from Google Contacts through the People API
// ABOUTME: Imports people into the local contacts table and serves lookups from it
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
)

// PeopleService is the sync_state service name for Google Contacts.
const PeopleService = "google_people"

const personFields = "names,emailAddresses,phoneNumbers,organizations"

// pageFunc fetches one page of connections.
type pageFunc func(ctx context.Context, pageToken string) (*people.ListConnectionsResponse, error)

// PeopleDirectory serves contact persons from the local directory and refreshes it from Google.
// It satisfies deal.ContactDirectory.
type PeopleDirectory struct {
	db     *sql.DB
	local  *db.ContactDirectory
	fetch  pageFunc
	logger *log.Logger
}

// NewPeopleService creates an authenticated People API client.
func NewPeopleService(ctx context.Context, token *oauth2.Token) (*people.Service, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	client := NewOAuthConfig().Client(ctx, token)
	service, err := people.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return service, nil
}

// NewPeopleDirectory wires a directory to svc. A nil svc gives a local-only directory.
func NewPeopleDirectory(database *sql.DB, svc *people.Service, logger *log.Logger) *PeopleDirectory {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &PeopleDirectory{
		db:     database,
		local:  db.NewContactDirectory(database),
		logger: logger,
	}
	if svc != nil {
		d.fetch = func(ctx context.Context, pageToken string) (*people.ListConnectionsResponse, error) {
			call := svc.People.Connections.List("people/me").
				PageSize(1000).
				PersonFields(personFields).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			return call.Do()
		}
	}
	return d
}

func (d *PeopleDirectory) ListContactPersons(ctx context.Context, query string, limit int) ([]models.ContactPerson, error) {
	return d.local.ListContactPersons(ctx, query, limit)
}

func (d *PeopleDirectory) GetContactPerson(ctx context.Context, id string) (*models.ContactPerson, error) {
	return d.local.GetContactPerson(ctx, id)
}

// ImportStats summarizes one import run.
type ImportStats struct {
	Fetched int
	Created int
	Updated int
	Skipped int
}

// Import pulls every Google contact into the local directory.
// People already known by email keep their existing id.
func (d *PeopleDirectory) Import(ctx context.Context) (ImportStats, error) {
	var stats ImportStats
	if d.fetch == nil {
		return stats, fmt.Errorf("google contacts not connected; run 'dealdesk contacts login' first")
	}

	if err := db.MarkSyncStarted(d.db, PeopleService); err != nil {
		return stats, err
	}

	stats, err := d.importPages(ctx)
	if err != nil {
		_ = db.MarkSyncFailed(d.db, PeopleService, err)
		d.logger.Error("contact import failed", "err", err, "fetched", stats.Fetched)
		return stats, err
	}

	if err := db.MarkSyncDone(d.db, PeopleService, ""); err != nil {
		return stats, err
	}
	d.logger.Info("contact import complete", "fetched", stats.Fetched, "created", stats.Created, "updated", stats.Updated, "skipped", stats.Skipped)
	return stats, nil
}

func (d *PeopleDirectory) importPages(ctx context.Context) (ImportStats, error) {
	var stats ImportStats

	existing, err := d.local.ListContactPersons(ctx, "", 20000)
	if err != nil {
		return stats, fmt.Errorf("failed to load existing contacts: %w", err)
	}
	matcher := NewContactMatcher(existing)

	pageToken := ""
	for {
		resp, err := d.fetch(ctx, pageToken)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch contacts: %w", err)
		}
		if resp == nil {
			break
		}

		for _, person := range resp.Connections {
			stats.Fetched++
			c, ok := PersonToContact(person)
			if !ok {
				stats.Skipped++
				continue
			}

			if match, found := matcher.FindMatch(c.Email); found {
				c.ContactPersonUUID = match.ContactPersonUUID
				stats.Updated++
			} else {
				stats.Created++
			}

			if err := d.local.UpsertContactPerson(ctx, &c, PeopleService); err != nil {
				return stats, err
			}
			matcher.Add(c)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
		d.logger.Debug("fetched contacts page", "so_far", stats.Fetched)
	}

	return stats, nil
}

// PersonToContact converts a People API person. People without a name are skipped.
func PersonToContact(person *people.Person) (models.ContactPerson, bool) {
	if person == nil {
		return models.ContactPerson{}, false
	}
	c := models.ContactPerson{ContactPersonUUID: person.ResourceName}

	if len(person.Names) > 0 {
		c.Name = strings.TrimSpace(person.Names[0].DisplayName)
	}
	if c.Name == "" {
		return models.ContactPerson{}, false
	}

	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		if c.Email == "" {
			c.Email = email.Value
		}
		if email.Metadata != nil && email.Metadata.Primary {
			c.Email = email.Value
			break
		}
	}

	for _, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		if c.Phone == "" {
			c.Phone = phone.Value
		}
		if phone.Metadata != nil && phone.Metadata.Primary {
			c.Phone = phone.Value
			break
		}
	}

	if len(person.Organizations) > 0 {
		org := person.Organizations[0]
		switch {
		case org.Title != "" && org.Name != "":
			c.Role = org.Title + ", " + org.Name
		case org.Title != "":
			c.Role = org.Title
		default:
			c.Role = org.Name
		}
	}

	return c, true
}
