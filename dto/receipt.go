package dto

import "strings"

// PaymentMethod is the instrument a receipt was paid with.
type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

// DateLayout is the ISO layout every ReceiptFields.Date is rendered in.
const DateLayout = "2006-01-02"

// TextFragment is one piece of text reported by an OCR engine, in reading order.
// Confidence is in [0, 1]; zero when the engine does not report one.
type TextFragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ReceiptFields is the structured draft derived from one receipt's OCR text.
type ReceiptFields struct {
	Text          string        `json:"text"`
	Amount        string        `json:"amount"`
	Merchant      string        `json:"merchant"`
	Date          string        `json:"date"`
	Category      string        `json:"category"`
	InvoiceNumber string        `json:"invoice_number"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	HasFields     bool          `json:"hasFields"`
}

// ComputeHasFields reports whether the draft looks like a real receipt.
// It is the only rule HasFields may be derived from.
func (r ReceiptFields) ComputeHasFields() bool {
	return r.Amount != "" || r.Merchant != ""
}

// JoinFragments concatenates fragment texts in the order supplied, newline separated.
func JoinFragments(frags []TextFragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, "\n")
}
