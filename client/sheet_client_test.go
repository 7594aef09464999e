package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/receipt-capture/config"
	"github.com/Aashish23092/receipt-capture/dto"
)

func sampleReceipt() dto.ReceiptFields {
	return dto.ReceiptFields{
		Amount:        "551.78",
		Merchant:      "D-Mart",
		Date:          "2024-03-07",
		Category:      "GROCERY",
		InvoiceNumber: "DM/2024/88812",
		PaymentMethod: dto.PaymentUPI,
		HasFields:     true,
	}
}

func TestSheetSubmit(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		got = map[string]string{}
		for k := range r.PostForm {
			got[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fields := config.DefaultSheetFieldNames()
	fields.Amount = "entry.1001"
	client := NewSheetClient(config.SheetConfig{Endpoint: srv.URL, Timeout: time.Second, Fields: fields})

	require.NoError(t, client.Submit(context.Background(), sampleReceipt()))
	assert.Equal(t, map[string]string{
		"entry.1001":     "551.78",
		"category":       "GROCERY",
		"method":         "UPI",
		"date":           "2024-03-07",
		"merchant":       "D-Mart",
		"invoice_number": "DM/2024/88812",
	}, got)
}

func TestSheetSubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewSheetClient(config.SheetConfig{Endpoint: srv.URL, Fields: config.DefaultSheetFieldNames()})
	err := client.Submit(context.Background(), sampleReceipt())
	require.ErrorIs(t, err, dto.ErrSubmissionFailed)
}

func TestSheetSubmitDisabled(t *testing.T) {
	client := NewSheetClient(config.SheetConfig{Fields: config.DefaultSheetFieldNames()})
	assert.False(t, client.Enabled())
	require.ErrorIs(t, client.Submit(context.Background(), sampleReceipt()), dto.ErrSubmissionDisabled)
}

func TestValidateSubmission(t *testing.T) {
	accepted := config.DefaultParserConfig().AcceptsPaymentMethod

	require.NoError(t, ValidateSubmission(sampleReceipt(), accepted))

	blankAmount := sampleReceipt()
	blankAmount.Amount = ""
	require.NoError(t, ValidateSubmission(blankAmount, accepted))

	bad := sampleReceipt()
	bad.Date = "07/03/2024"
	bad.Amount = "-5"
	bad.PaymentMethod = "CHEQUE"
	bad.Category = ""
	err := ValidateSubmission(bad, accepted)
	require.ErrorIs(t, err, dto.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "date must be YYYY-MM-DD")
	assert.Contains(t, err.Error(), "amount must be a non-negative decimal")
	assert.Contains(t, err.Error(), `payment_method "CHEQUE"`)
	assert.Contains(t, err.Error(), "category is required")
}
