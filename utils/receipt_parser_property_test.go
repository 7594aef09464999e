package utils

import (
	"slices"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/Aashish23092/receipt-capture/config"
	"github.com/Aashish23092/receipt-capture/dto"
)

var receiptTokens = []string{
	"TOTAL:", "Total", "Subtotal", "Rs.", "INR", "₹", "AMT=",
	"1,250.00", "45.00", "120,50", "9.99", "12.345", "100",
	"07/03/2024", "2024-03-07", "31/02/2024", "5-6-24",
	"D-Mart", "Zomato", "Uber", "Big Bazaar Store", "RECEIPT", "TAX INVOICE",
	"cash", "VISA", "UPI", "PhonePe",
	"Invoice No:", "INV-77821", "Ref", "#", "9876543210",
	"ab", "", "   ", "\t", "Thank you",
}

func genReceiptText() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		tokens := rapid.SliceOfN(rapid.SampledFrom(receiptTokens), 0, 24).Draw(t, "tokens")
		var b strings.Builder
		for i, tok := range tokens {
			if i > 0 {
				b.WriteString(rapid.SampledFrom([]string{" ", "\n", "  ", "\r\n"}).Draw(t, "sep"))
			}
			b.WriteString(tok)
		}
		return b.String()
	})
}

func TestParseProperties(t *testing.T) {
	cfg := config.DefaultParserConfig()
	p, err := NewReceiptParser(cfg, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}

	labels := []string{cfg.DefaultCategory}
	for _, rule := range cfg.Categories {
		labels = append(labels, rule.Label)
	}

	rapid.Check(t, func(t *rapid.T) {
		text := genReceiptText().Draw(t, "text")
		fields := p.Parse(text)

		if fields.HasFields != (fields.Amount != "" || fields.Merchant != "") {
			t.Fatalf("hasFields=%v with amount=%q merchant=%q", fields.HasFields, fields.Amount, fields.Merchant)
		}
		if _, err := time.Parse(dto.DateLayout, fields.Date); err != nil {
			t.Fatalf("date %q is not YYYY-MM-DD: %v", fields.Date, err)
		}
		if !slices.Contains(labels, fields.Category) {
			t.Fatalf("category %q is not configured", fields.Category)
		}
		if !cfg.AcceptsPaymentMethod(fields.PaymentMethod) {
			t.Fatalf("payment method %q is not accepted", fields.PaymentMethod)
		}
		if strings.ContainsAny(fields.Amount, ", ") || strings.Count(fields.Amount, ".") > 1 {
			t.Fatalf("amount %q is not normalized", fields.Amount)
		}
		if fields.Text != text {
			t.Fatalf("text was modified")
		}
		if again := p.Parse(text); again != fields {
			t.Fatalf("parse is not idempotent: %+v != %+v", again, fields)
		}
	})
}
