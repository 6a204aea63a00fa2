// ABOUTME: Contact person directory backed by SQLite
// ABOUTME: Supplies contact persons for meetings, follow-ups, and closing reviews
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

// ContactDirectory reads and writes contact persons. It satisfies deal.ContactDirectory.
type ContactDirectory struct {
	db *sql.DB
}

func NewContactDirectory(db *sql.DB) *ContactDirectory {
	return &ContactDirectory{db: db}
}

// UpsertContactPerson creates or replaces a contact. source records where it came from.
func (c *ContactDirectory) UpsertContactPerson(ctx context.Context, p *models.ContactPerson, source string) error {
	if p.ContactPersonUUID == "" {
		p.ContactPersonUUID = uuid.NewString()
	}
	if source == "" {
		source = "manual"
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, phone, role, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			role = excluded.role,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, p.ContactPersonUUID, p.Name, p.Email, p.Phone, p.Role, source, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

// ListContactPersons matches query against name and email. An empty query lists everyone.
func (c *ContactDirectory) ListContactPersons(ctx context.Context, query string, limit int) ([]models.ContactPerson, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(query) + "%"

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, email, phone, role
		FROM contacts
		WHERE LOWER(name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?
		ORDER BY name
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var people []models.ContactPerson
	for rows.Next() {
		p, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return people, nil
}

// GetContactPerson returns nil when id is unknown.
func (c *ContactDirectory) GetContactPerson(ctx context.Context, id string) (*models.ContactPerson, error) {
	row := c.db.QueryRowContext(ctx, `SELECT id, name, email, phone, role FROM contacts WHERE id = ?`, id)
	p, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (*models.ContactPerson, error) {
	var p models.ContactPerson
	var email, phone, role sql.NullString
	if err := s.Scan(&p.ContactPersonUUID, &p.Name, &email, &phone, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	p.Email = email.String
	p.Phone = phone.String
	p.Role = role.String
	return &p, nil
}
