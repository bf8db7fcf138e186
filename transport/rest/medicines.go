package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// Medicine is one reference entry of the medicine database.
type Medicine struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	ActiveIngredient string          `json:"active_ingredient,omitempty"`
	Category         string          `json:"category,omitempty"`
	Price            decimal.Decimal `json:"price,omitempty"`
	Manufacturer     string          `json:"manufacturer,omitempty"`
	DosageForm       string          `json:"dosage_form,omitempty"`
	Effects          string          `json:"effects,omitempty"`
}

// UploadResult reports the outcome of a medicine-database CSV import.
type UploadResult struct {
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

// SearchMedicines queries the medicine database by name or ingredient.
// The endpoint is public in the API contract, so no bearer is sent.
func (c *Client) SearchMedicines(ctx context.Context, query string) ([]Medicine, error) {
	var out []Medicine
	q := url.Values{}
	q.Set("query", query)

	resp, err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   "/medicine-database/search",
		query:  q,
		noAuth: true,
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, decodeError(resp)
	}
	if err := decodeJSON(resp.body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Medicine fetches one reference entry by ID.
func (c *Client) Medicine(ctx context.Context, id int) (*Medicine, error) {
	var out Medicine
	path := fmt.Sprintf("/medicine-database/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadMedicineDatabase imports a CSV export into the medicine
// database. The whole file is buffered: uploads are small reference
// lists, and the transport needs replayable bodies anyway.
func (c *Client) UploadMedicineDatabase(ctx context.Context, filename string, csv io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload form: %w", err)
	}

	resp, err := c.do(ctx, &request{
		method:      http.MethodPost,
		path:        "/medicine-database/upload",
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
		noAuth:      true,
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out UploadResult
	if err := decodeJSON(resp.body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeJSON(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
