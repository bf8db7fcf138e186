package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DosageInstruction is one step of a prescription's dosage text.
type DosageInstruction struct {
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`
}

// Prescription is a medication request entered at the counter or
// received from a practitioner.
type Prescription struct {
	ID         int                 `json:"id,omitempty"`
	Status     string              `json:"status"`
	Intent     string              `json:"intent"`
	Priority   string              `json:"priority,omitempty"`
	AuthoredOn time.Time           `json:"authored_on"`
	Dosage     []DosageInstruction `json:"dosage_instruction"`
}

// Prescriptions lists all prescriptions.
func (c *Client) Prescriptions(ctx context.Context) ([]Prescription, error) {
	var out []Prescription
	if err := c.doJSON(ctx, http.MethodGet, "/prescriptions", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Prescription fetches a single prescription by ID.
func (c *Client) Prescription(ctx context.Context, id int) (*Prescription, error) {
	var out Prescription
	path := fmt.Sprintf("/prescriptions/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePrescription records a new prescription.
func (c *Client) CreatePrescription(ctx context.Context, p Prescription) (*Prescription, error) {
	var created Prescription
	if err := c.doJSON(ctx, http.MethodPost, "/prescriptions", p, &created, false); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePrescription overwrites an existing prescription.
func (c *Client) UpdatePrescription(ctx context.Context, id int, p Prescription) (*Prescription, error) {
	var updated Prescription
	path := fmt.Sprintf("/prescriptions/%d", id)
	if err := c.doJSON(ctx, http.MethodPut, path, p, &updated, false); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePrescription removes a prescription.
func (c *Client) DeletePrescription(ctx context.Context, id int) error {
	path := fmt.Sprintf("/prescriptions/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, false)
}
