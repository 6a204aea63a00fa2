// ABOUTME: Tests for deal header operations
// ABOUTME: Covers create, lookup, filtering, and deletion
package db

import (
	"errors"
	"testing"

	"github.com/harperreed/dealdesk/models"
)

func TestCreateAndGetDeal(t *testing.T) {
	db := setupTestDB(t)

	rec := &DealRecord{Title: "Fleet renewal", Company: "Acme Logistics", CreatedBy: "Harper"}
	if err := CreateDeal(db, rec); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Deal ID was not set")
	}
	if rec.Stage != models.StageDiscussion {
		t.Errorf("Expected default stage discussion, got %s", rec.Stage)
	}

	found, err := GetDeal(db, rec.ID)
	if err != nil {
		t.Fatalf("GetDeal failed: %v", err)
	}
	if found.Title != "Fleet renewal" || found.Company != "Acme Logistics" || found.CreatedBy != "Harper" {
		t.Errorf("Unexpected deal: %+v", found)
	}
}

func TestGetDealNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetDeal(db, "missing")
	if !errors.Is(err, ErrDealNotFound) {
		t.Errorf("Expected ErrDealNotFound, got %v", err)
	}
}

func TestFindDeals(t *testing.T) {
	db := setupTestDB(t)

	for _, rec := range []*DealRecord{
		{Title: "Fleet renewal", Company: "Acme Logistics"},
		{Title: "Pilot", Company: "Globex", Stage: models.StageNegotiation},
		{Title: "Expansion", Company: "Acme Retail", Stage: models.StageNegotiation},
	} {
		if err := CreateDeal(db, rec); err != nil {
			t.Fatalf("CreateDeal failed: %v", err)
		}
	}

	all, err := FindDeals(db, "", "", 10)
	if err != nil {
		t.Fatalf("FindDeals failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 deals, got %d", len(all))
	}

	negotiating, err := FindDeals(db, string(models.StageNegotiation), "", 10)
	if err != nil {
		t.Fatalf("FindDeals failed: %v", err)
	}
	if len(negotiating) != 2 {
		t.Errorf("Expected 2 negotiating deals, got %d", len(negotiating))
	}

	acme, err := FindDeals(db, string(models.StageNegotiation), "ACME", 10)
	if err != nil {
		t.Fatalf("FindDeals failed: %v", err)
	}
	if len(acme) != 1 || acme[0].Title != "Expansion" {
		t.Errorf("Expected only Expansion, got %+v", acme)
	}

	limited, err := FindDeals(db, "", "", 1)
	if err != nil {
		t.Fatalf("FindDeals failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected limit 1, got %d", len(limited))
	}
}

func TestDeleteDeal(t *testing.T) {
	db := setupTestDB(t)

	rec := &DealRecord{Title: "Short lived"}
	if err := CreateDeal(db, rec); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}
	if err := DeleteDeal(db, rec.ID); err != nil {
		t.Fatalf("DeleteDeal failed: %v", err)
	}
	if err := DeleteDeal(db, rec.ID); !errors.Is(err, ErrDealNotFound) {
		t.Errorf("Expected ErrDealNotFound on second delete, got %v", err)
	}
}
