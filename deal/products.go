// ABOUTME: Product collection operations on a deal
// ABOUTME: Removal during an active stage can carry a reason onto the timeline
package deal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dealdesk/models"
)

var products = collection[models.Product]{
	kind: models.EventProduct,
	key:  func(p models.Product) string { return p.ProductUUID },
	slot: func(s *State) *[]models.Product { return &s.Products },
	event: func(action models.Action, p models.Product, previous *models.Product) models.TimelineEvent {
		return models.TimelineEvent{
			Title:       "Product " + string(action),
			Description: fmt.Sprintf("%s x%d", p.ProductName, p.Quantity),
			Color:       actionColor(action),
			Details:     models.ProductDetails{Action: action, Product: p, Previous: previous},
		}
	},
}

func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.ProductName) == "" {
		return invalid("productName", "is required")
	}
	if p.Quantity < 0 {
		return invalid("quantity", "must not be negative")
	}
	if p.UnitPrice < 0 {
		return invalid("unitPrice", "must not be negative")
	}
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		return invalid("discountPercent", "must be between 0 and 100")
	}
	return nil
}

// AddProduct adds p to the deal. A product whose UUID is already present is ignored.
func (d *Deal) AddProduct(p models.Product) (Outcome, error) {
	if p.ProductUUID == "" {
		p.ProductUUID = uuid.NewString()
	}
	if p.Quantity == 0 {
		p.Quantity = 1
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if err := validateProduct(p); err != nil {
		return OutcomeRejected, d.reject("add product", err)
	}
	return addTo(d, products, p), nil
}

func (d *Deal) UpdateProduct(id string, patch models.ProductPatch) (Outcome, error) {
	return updateIn(d, products, id, patch, validateProduct)
}

// RemoveProduct removes a product; reason is recorded when given.
func (d *Deal) RemoveProduct(id, reason string) Outcome {
	_, outcome := removeFrom(d, products, id, func(ev *models.TimelineEvent) {
		if reason == "" {
			return
		}
		details := ev.Details.(models.ProductDetails)
		details.Reason = reason
		ev.Details = details
		ev.Description += ": " + reason
	})
	return outcome
}

func (d *Deal) Products() []models.Product {
	return list(d, products)
}

func (d *Deal) Product(id string) (models.Product, bool) {
	return lookup(d, products, id)
}
