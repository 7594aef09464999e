package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/receipt-capture/dto"
)

func TestParseUPIURI(t *testing.T) {
	upi, err := ParseUPIURI("upi://pay?pa=cafe.coffee@okaxis&pn=Cafe%20Coffee+Day&am=240&tr=CCD-00912&tn=Order%2012")
	require.NoError(t, err)

	assert.Equal(t, &dto.UPIPayment{
		PayeeAddress: "cafe.coffee@okaxis",
		PayeeName:    "Cafe Coffee Day",
		Amount:       "240.00",
		Reference:    "CCD-00912",
		Note:         "Order 12",
	}, upi)
}

func TestParseUPIURIInvalid(t *testing.T) {
	for _, raw := range []string{
		"https://example.com/pay?pa=x@y",
		"upi://mandate?pa=x@y",
		"upi://pay?pn=NoAddress",
		"upi://pay?pa=x@y&am=ten",
		"upi://pay?pa=x@y&am=-5",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseUPIURI(raw)
			require.ErrorIs(t, err, dto.ErrInvalidArgument)
		})
	}
}

func TestEnrichWithUPI(t *testing.T) {
	upi := &dto.UPIPayment{PayeeAddress: "m@upi", PayeeName: "QR Name", Amount: "99.00", Reference: "TR123"}

	t.Run("fills empty fields", func(t *testing.T) {
		got := EnrichWithUPI(dto.ReceiptFields{Category: "Other"}, upi)
		assert.Equal(t, "QR Name", got.Merchant)
		assert.Equal(t, "99.00", got.Amount)
		assert.Equal(t, "TR123", got.InvoiceNumber)
		assert.True(t, got.HasFields)
	})

	t.Run("keeps parsed fields", func(t *testing.T) {
		in := dto.ReceiptFields{Merchant: "D-Mart", Amount: "551.78", InvoiceNumber: "DM/1", HasFields: true}
		assert.Equal(t, in, EnrichWithUPI(in, upi))
	})

	t.Run("nil payment", func(t *testing.T) {
		in := dto.ReceiptFields{Category: "Other"}
		assert.Equal(t, in, EnrichWithUPI(in, nil))
	})

	t.Run("payee without name leaves hasFields false", func(t *testing.T) {
		got := EnrichWithUPI(dto.ReceiptFields{}, &dto.UPIPayment{PayeeAddress: "m@upi"})
		assert.False(t, got.HasFields)
	})
}
