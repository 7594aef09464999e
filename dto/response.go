package dto

import "errors"

// Custom errors
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnsupportedFileType = errors.New("invalid file type. Supported: PDF, PNG, JPG")
	ErrNoTextDetected      = errors.New("no text detected in receipt")
	ErrEmptyDocument       = errors.New("document has no readable first page")
	ErrSubmissionFailed    = errors.New("receipt submission failed")
	ErrSubmissionDisabled  = errors.New("receipt submission endpoint not configured")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ScanSource tells where the text behind a scan came from.
type ScanSource string

const (
	SourceOCR     ScanSource = "ocr"
	SourcePDFText ScanSource = "pdf-text"
	SourceText    ScanSource = "text"
)

// UPIPayment holds the fields read from a UPI payment QR code printed on a receipt.
type UPIPayment struct {
	PayeeAddress string `json:"payee_address"`
	PayeeName    string `json:"payee_name,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Reference    string `json:"reference,omitempty"`
	Note         string `json:"note,omitempty"`
}

// ScanResponse is the result of the capture pipeline for one upload.
type ScanResponse struct {
	Fields        ReceiptFields `json:"fields"`
	Source        ScanSource    `json:"source"`
	Fragments     int           `json:"fragments"`
	OCRConfidence float64       `json:"ocr_confidence"`
	UPI           *UPIPayment   `json:"upi,omitempty"`
	ProcessedAt   string        `json:"processed_at"`
}

// SubmitResponse acknowledges a receipt forwarded to the spreadsheet endpoint.
type SubmitResponse struct {
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
}
