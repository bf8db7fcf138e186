package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem is one line of a sale.
type SaleItem struct {
	ID              int             `json:"id,omitempty"`
	Sequence        int             `json:"sequence"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	MedicationID    int             `json:"medication_id,omitempty"`
	InventoryItemID int             `json:"inventory_item_id,omitempty"`
}

// Sale is a completed or pending counter sale.
type Sale struct {
	ID            int             `json:"id,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CustomerName  string          `json:"customer_name,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	Items         []SaleItem      `json:"sale_items"`
}

// Sales lists all sales.
func (c *Client) Sales(ctx context.Context) ([]Sale, error) {
	var sales []Sale
	if err := c.doJSON(ctx, http.MethodGet, "/sales", nil, &sales, false); err != nil {
		return nil, err
	}
	return sales, nil
}

// CreateSale records a sale and returns it with server-assigned fields.
func (c *Client) CreateSale(ctx context.Context, sale Sale) (*Sale, error) {
	var created Sale
	if err := c.doJSON(ctx, http.MethodPost, "/sales", sale, &created, false); err != nil {
		return nil, err
	}
	return &created, nil
}
