// ABOUTME: Tests for the SQLite contact directory
package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

var _ deal.ContactDirectory = (*ContactDirectory)(nil)

func TestContactDirectory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := NewContactDirectory(db)

	dana := &models.ContactPerson{Name: "Dana Scully", Email: "dana@fbi.example", Role: "Champion"}
	require.NoError(t, dir.UpsertContactPerson(ctx, dana, ""))
	require.NotEmpty(t, dana.ContactPersonUUID)

	fox := &models.ContactPerson{ContactPersonUUID: "people/c42", Name: "Fox Mulder", Phone: "555-0100"}
	require.NoError(t, dir.UpsertContactPerson(ctx, fox, "google_people"))

	all, err := dir.ListContactPersons(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Dana Scully", all[0].Name)

	byEmail, err := dir.ListContactPersons(ctx, "FBI.example", 10)
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "Champion", byEmail[0].Role)

	fox.Role = "Skeptic"
	require.NoError(t, dir.UpsertContactPerson(ctx, fox, "google_people"))
	got, err := dir.GetContactPerson(ctx, "people/c42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Skeptic", got.Role)

	missing, err := dir.GetContactPerson(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
