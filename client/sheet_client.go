package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/receipt-capture/config"
	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
)

// SheetClient posts confirmed receipts to a spreadsheet web-app endpoint as a
// URL-encoded form, one row per submission.
type SheetClient struct {
	endpoint   string
	fields     config.SheetFieldNames
	httpClient *http.Client
}

func NewSheetClient(cfg config.SheetConfig) *SheetClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SheetClient{
		endpoint:   cfg.Endpoint,
		fields:     cfg.Fields,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a submission endpoint is configured.
func (s *SheetClient) Enabled() bool {
	return s.endpoint != ""
}

// Submit sends the receipt to the spreadsheet endpoint.
func (s *SheetClient) Submit(ctx context.Context, r dto.ReceiptFields) error {
	if !s.Enabled() {
		return dto.ErrSubmissionDisabled
	}

	form := s.FormValues(r)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", dto.ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: endpoint returned status %d", dto.ErrSubmissionFailed, resp.StatusCode)
	}

	logger.Log.Info().
		Str("category", r.Category).
		Str("method", string(r.PaymentMethod)).
		Str("invoice", logger.MaskReference(r.InvoiceNumber)).
		Msg("Receipt submitted to spreadsheet")
	return nil
}

// FormValues maps receipt fields onto the endpoint's form field names.
func (s *SheetClient) FormValues(r dto.ReceiptFields) url.Values {
	form := url.Values{}
	form.Set(s.fields.Amount, r.Amount)
	form.Set(s.fields.Category, r.Category)
	form.Set(s.fields.Method, string(r.PaymentMethod))
	form.Set(s.fields.Date, r.Date)
	form.Set(s.fields.Merchant, r.Merchant)
	form.Set(s.fields.InvoiceNumber, r.InvoiceNumber)
	return form
}

// ValidateSubmission checks a user-edited receipt before it leaves the service.
func ValidateSubmission(r dto.ReceiptFields, accepted func(dto.PaymentMethod) bool) error {
	var errs []string

	if _, err := time.Parse(dto.DateLayout, r.Date); err != nil {
		errs = append(errs, "date must be YYYY-MM-DD")
	}
	if r.Amount != "" {
		if amount, err := decimal.NewFromString(r.Amount); err != nil || amount.IsNegative() {
			errs = append(errs, "amount must be a non-negative decimal")
		}
	}
	if !accepted(r.PaymentMethod) {
		errs = append(errs, fmt.Sprintf("payment_method %q is not accepted", r.PaymentMethod))
	}
	if strings.TrimSpace(r.Category) == "" {
		errs = append(errs, "category is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", dto.ErrInvalidArgument, strings.Join(errs, "; "))
	}
	return nil
}
