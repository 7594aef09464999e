package service

import (
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/shopspring/decimal"

	"github.com/Aashish23092/receipt-capture/dto"
)

// DecodeUPIQR looks for a UPI payment QR code in the image and parses it.
func DecodeUPIQR(img image.Image) (*dto.UPIPayment, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code: %w", err)
	}

	return ParseUPIURI(result.GetText())
}

// ParseUPIURI parses a upi://pay deep link such as
// upi://pay?pa=dmart@icici&pn=D-Mart&am=551.78&tr=DM2024.
func ParseUPIURI(raw string) (*dto.UPIPayment, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed UPI link: %v", dto.ErrInvalidArgument, err)
	}
	if !strings.EqualFold(u.Scheme, "upi") || !strings.EqualFold(u.Host, "pay") {
		return nil, fmt.Errorf("%w: not a upi://pay link", dto.ErrInvalidArgument)
	}

	q := u.Query()
	payment := &dto.UPIPayment{
		PayeeAddress: strings.TrimSpace(q.Get("pa")),
		PayeeName:    strings.TrimSpace(q.Get("pn")),
		Reference:    strings.TrimSpace(q.Get("tr")),
		Note:         strings.TrimSpace(q.Get("tn")),
	}
	if payment.PayeeAddress == "" {
		return nil, fmt.Errorf("%w: UPI link has no payee address", dto.ErrInvalidArgument)
	}

	if am := strings.TrimSpace(q.Get("am")); am != "" {
		amount, err := decimal.NewFromString(am)
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("%w: UPI amount %q", dto.ErrInvalidArgument, am)
		}
		payment.Amount = amount.StringFixed(2)
	}
	return payment, nil
}

// EnrichWithUPI fills fields the text parser left empty from a decoded UPI
// QR code. Fields already extracted from the text are never overwritten.
func EnrichWithUPI(fields dto.ReceiptFields, upi *dto.UPIPayment) dto.ReceiptFields {
	if upi == nil {
		return fields
	}
	if fields.Merchant == "" {
		fields.Merchant = upi.PayeeName
	}
	if fields.Amount == "" {
		fields.Amount = upi.Amount
	}
	if fields.InvoiceNumber == "" {
		fields.InvoiceNumber = upi.Reference
	}
	fields.HasFields = fields.ComputeHasFields()
	return fields
}
