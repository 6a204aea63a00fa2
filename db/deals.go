// ABOUTME: Deal header database operations
// ABOUTME: Title, company, and the denormalized stage used for listing
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

// DealRecord is the listing row for a deal. The timeline holds everything else.
type DealRecord struct {
	ID        string
	Title     string
	Company   string
	Stage     models.Stage
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func CreateDeal(db *sql.DB, deal *DealRecord) error {
	if deal.ID == "" {
		deal.ID = uuid.NewString()
	}
	if deal.Stage == "" {
		deal.Stage = models.StageDiscussion
	}
	now := time.Now()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO deals (id, title, company, stage, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, deal.ID, deal.Title, deal.Company, deal.Stage, deal.CreatedBy, deal.CreatedAt, deal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

func GetDeal(db *sql.DB, id string) (*DealRecord, error) {
	deal := &DealRecord{}
	var company, createdBy sql.NullString

	err := db.QueryRow(`
		SELECT id, title, company, stage, created_by, created_at, updated_at
		FROM deals WHERE id = ?
	`, id).Scan(
		&deal.ID,
		&deal.Title,
		&company,
		&deal.Stage,
		&createdBy,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	deal.Company = company.String
	deal.CreatedBy = createdBy.String
	return deal, nil
}

// FindDeals lists deals, most recently active first. Empty stage or query match everything.
func FindDeals(db *sql.DB, stage, query string, limit int) ([]DealRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	where := []string{"1=1"}
	var args []any
	if stage != "" {
		where = append(where, "stage = ?")
		args = append(args, stage)
	}
	if query != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(company) LIKE ?)")
		pattern := "%" + strings.ToLower(query) + "%"
		args = append(args, pattern, pattern)
	}
	args = append(args, limit)

	rows, err := db.Query(`
		SELECT id, title, company, stage, created_by, created_at, updated_at
		FROM deals
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY updated_at DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deals []DealRecord
	for rows.Next() {
		var deal DealRecord
		var company, createdBy sql.NullString
		if err := rows.Scan(&deal.ID, &deal.Title, &company, &deal.Stage, &createdBy, &deal.CreatedAt, &deal.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deal.Company = company.String
		deal.CreatedBy = createdBy.String
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}

	return deals, nil
}

// DeleteDeal removes a deal with its timeline and follow-ups.
func DeleteDeal(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM deals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDealNotFound
	}
	return nil
}
