package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
	"github.com/Aashish23092/receipt-capture/service"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartOverhead = 1 << 20
)

type ReceiptHandler struct {
	receiptService *service.ReceiptService
	exportService  *service.ExportService
	maxFileSize    int64
}

func NewReceiptHandler(receiptService *service.ReceiptService, exportService *service.ExportService, maxFileSize int64) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		exportService:  exportService,
		maxFileSize:    maxFileSize,
	}
}

// Scan handles POST /receipts/scan with a multipart "file" field.
func (h *ReceiptHandler) Scan(c *gin.Context) {
	if h.maxFileSize > 0 {
		// Multipart framing gets a megabyte on top of the file itself.
		limit := h.maxFileSize + multipartOverhead
		if c.Request.ContentLength > limit {
			h.fileTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fileTooLarge(c)
			return
		}
		h.sendError(c, fmt.Errorf("%w: file is required", dto.ErrInvalidArgument))
		return
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		h.fileTooLarge(c)
		return
	}

	req := &dto.ScanRequest{File: header, MimeType: header.Header.Get("Content-Type")}
	if !dto.IsSupportedMimeType(req.MimeType) {
		// Some clients send application/octet-stream; fall back to the extension.
		req.MimeType = ""
	}
	if err := req.Validate(); err != nil {
		h.sendError(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		h.sendError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.sendError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	resp, err := h.receiptService.Scan(c.Request.Context(), data, req.MimeType)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Parse handles POST /receipts/parse for clients that ran OCR themselves.
func (h *ReceiptHandler) Parse(c *gin.Context) {
	var req dto.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, fmt.Errorf("%w: %v", dto.ErrInvalidArgument, err))
		return
	}

	fields, err := h.receiptService.ParseText(req.Text)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

// Submit handles POST /receipts/submit with the user-confirmed fields.
func (h *ReceiptHandler) Submit(c *gin.Context) {
	var fields dto.ReceiptFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.sendError(c, fmt.Errorf("%w: %v", dto.ErrInvalidArgument, err))
		return
	}

	resp, err := h.receiptService.Submit(c.Request.Context(), fields)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles POST /receipts/export and replies with an XLSX attachment.
func (h *ReceiptHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, fmt.Errorf("%w: %v", dto.ErrInvalidArgument, err))
		return
	}

	data, err := h.exportService.ExportXLSX(req.Receipts)
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// sendError maps service errors onto a structured error response
func (h *ReceiptHandler) sendError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "PROCESSING_FAILED"
	switch {
	case errors.Is(err, dto.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, dto.ErrUnsupportedFileType):
		status, code = http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE"
	case errors.Is(err, dto.ErrNoTextDetected):
		status, code = http.StatusUnprocessableEntity, "NO_TEXT_DETECTED"
	case errors.Is(err, dto.ErrEmptyDocument):
		status, code = http.StatusUnprocessableEntity, "EMPTY_DOCUMENT"
	case errors.Is(err, dto.ErrSubmissionDisabled):
		status, code = http.StatusServiceUnavailable, "SUBMISSION_DISABLED"
	case errors.Is(err, dto.ErrSubmissionFailed):
		status, code = http.StatusBadGateway, "SUBMISSION_FAILED"
	}

	if status >= http.StatusInternalServerError {
		logger.Log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("Request failed")
	}
	_ = c.Error(err)

	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

func (h *ReceiptHandler) fileTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
		Error:   "FILE_TOO_LARGE",
		Message: fmt.Sprintf("file exceeds %d bytes", h.maxFileSize),
		Code:    http.StatusRequestEntityTooLarge,
	})
}
