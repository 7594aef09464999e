package dto

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// ParseTextRequest carries raw OCR text from a client that ran OCR itself.
// Text is a pointer so that a missing field can be told apart from "".
type ParseTextRequest struct {
	Text *string `json:"text"`
}

// ScanRequest represents an uploaded receipt image or PDF.
type ScanRequest struct {
	File     *multipart.FileHeader
	MimeType string
}

// Validate checks the upload is one of the supported receipt formats.
func (r *ScanRequest) Validate() error {
	if r.File == nil {
		return fmt.Errorf("%w: file is required", ErrInvalidArgument)
	}
	if r.MimeType == "" {
		r.MimeType = InferMimeType(r.File.Filename)
	}
	if !IsSupportedMimeType(r.MimeType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, r.File.Filename)
	}
	return nil
}

// ExportRequest is the body of the XLSX export endpoint.
type ExportRequest struct {
	Receipts []ReceiptFields `json:"receipts" binding:"required"`
}

var supportedMimeTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/jpg",
}

// IsSupportedMimeType checks if the MIME type is a receipt format we can read.
func IsSupportedMimeType(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	for _, valid := range supportedMimeTypes {
		if strings.Contains(mimeType, valid) {
			return true
		}
	}
	return false
}

// IsPDF reports whether the MIME type denotes a PDF document.
func IsPDF(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "pdf")
}

// InferMimeType infers MIME type from file extension
func InferMimeType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	}
	return ""
}
