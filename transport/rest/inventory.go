package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a stock entry: a purchased batch of one medication.
type InventoryItem struct {
	ID             int             `json:"id,omitempty"`
	MedicationID   int             `json:"fhir_medication_id"`
	BatchNumber    string          `json:"batch_number"`
	ExpirationDate time.Time       `json:"expiration_date"`
	PurchaseDate   time.Time       `json:"purchase_date"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	SupplierID     int             `json:"supplier_id"`
}

// Inventory lists all stock entries.
func (c *Client) Inventory(ctx context.Context) ([]InventoryItem, error) {
	var items []InventoryItem
	if err := c.doJSON(ctx, http.MethodGet, "/inventory", nil, &items, false); err != nil {
		return nil, err
	}
	return items, nil
}

// InventoryItem fetches a single stock entry by ID.
func (c *Client) InventoryItem(ctx context.Context, id int) (*InventoryItem, error) {
	var item InventoryItem
	path := fmt.Sprintf("/inventory/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &item, false); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateInventoryItem overwrites a stock entry.
func (c *Client) UpdateInventoryItem(ctx context.Context, id int, item InventoryItem) (*InventoryItem, error) {
	var updated InventoryItem
	path := fmt.Sprintf("/inventory/%d", id)
	if err := c.doJSON(ctx, http.MethodPut, path, item, &updated, false); err != nil {
		return nil, err
	}
	return &updated, nil
}
