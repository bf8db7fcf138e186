package rest_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galenus-health/galenus-go/transport/rest"
)

func TestInventoryList(t *testing.T) {
	client, srv, _, _ := signedIn(t)
	srv.SeedInventory([]gin.H{
		{
			"id":                 1,
			"fhir_medication_id": 7,
			"batch_number":       "B-2031",
			"expiration_date":    "2027-01-31T00:00:00Z",
			"purchase_date":      "2026-01-10T00:00:00Z",
			"purchase_price":     12.5,
			"supplier_id":        3,
		},
	})

	items, err := client.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B-2031", items[0].BatchNumber)
	assert.Equal(t, 7, items[0].MedicationID)
	assert.True(t, items[0].PurchasePrice.Equal(decimal.NewFromFloat(12.5)))
	assert.Equal(t, 2027, items[0].ExpirationDate.Year())
}

func TestCreateSale(t *testing.T) {
	client, _, _, _ := signedIn(t)

	sale := rest.Sale{
		TotalAmount:   decimal.NewFromFloat(25.00),
		PaymentMethod: "cash",
		PaymentStatus: "paid",
		Status:        "completed",
		CustomerName:  "Walk-in",
		Items: []rest.SaleItem{
			{
				Sequence:   1,
				Quantity:   2,
				UnitPrice:  decimal.NewFromFloat(12.50),
				TotalPrice: decimal.NewFromFloat(25.00),
			},
		},
	}
	created, err := client.CreateSale(context.Background(), sale)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.InvoiceNumber)
	assert.True(t, created.TotalAmount.Equal(sale.TotalAmount))

	sales, err := client.Sales(context.Background())
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestPrescriptionLifecycle(t *testing.T) {
	client, _, _, _ := signedIn(t)
	ctx := context.Background()

	created, err := client.CreatePrescription(ctx, rest.Prescription{
		Status:     "active",
		Intent:     "order",
		AuthoredOn: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Dosage: []rest.DosageInstruction{
			{Sequence: 1, Text: "One tablet twice daily"},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	list, err := client.Prescriptions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "One tablet twice daily", list[0].Dosage[0].Text)

	require.NoError(t, client.DeletePrescription(ctx, created.ID))
}

func TestMedicineUploadAndSearch(t *testing.T) {
	client, _, _ := newClient(t)
	ctx := context.Background()

	csv := "name,active_ingredient\nParacetamol 500mg,paracetamol\nIbuprofen 200mg,ibuprofen\n"
	result, err := client.UploadMedicineDatabase(ctx, "medicines.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	matches, err := client.SearchMedicines(ctx, "paracetamol")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Paracetamol 500mg", matches[0].Name)

	all, err := client.SearchMedicines(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
