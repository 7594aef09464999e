package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Aashish23092/receipt-capture/client"
	"github.com/Aashish23092/receipt-capture/config"
	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
	"github.com/Aashish23092/receipt-capture/utils"
)

// TextDetector turns an encoded image into OCR text fragments.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) ([]dto.TextFragment, error)
}

// Submitter forwards a confirmed receipt to its destination.
type Submitter interface {
	Submit(ctx context.Context, r dto.ReceiptFields) error
}

type ReceiptService struct {
	detector     TextDetector
	pdfProcessor PDFProcessor
	parser       atomic.Pointer[parserState]
	submitter    Submitter
	blankPolicy  string
	now          func() time.Time
}

type parserState struct {
	parser     *utils.ReceiptParser
	acceptsPay func(dto.PaymentMethod) bool
}

func NewReceiptService(
	detector TextDetector,
	pdfProcessor PDFProcessor,
	parser *utils.ReceiptParser,
	submitter Submitter,
	parserCfg config.ParserConfig,
	blankPolicy string,
) *ReceiptService {
	if blankPolicy == "" {
		blankPolicy = config.BlankScanForm
	}
	s := &ReceiptService{
		detector:     detector,
		pdfProcessor: pdfProcessor,
		submitter:    submitter,
		blankPolicy:  blankPolicy,
		now:          time.Now,
	}
	s.SetParser(parser, parserCfg)
	return s
}

// SetParser swaps the parser and the payment methods accepted on submit.
// Requests already running keep the parser they started with.
func (s *ReceiptService) SetParser(parser *utils.ReceiptParser, parserCfg config.ParserConfig) {
	s.parser.Store(&parserState{parser: parser, acceptsPay: parserCfg.AcceptsPaymentMethod})
}

// Scan runs one uploaded receipt through the capture pipeline. PDFs are read
// from their text layer when they have one, otherwise page 1 is rasterised
// from its largest embedded image and sent to OCR.
func (s *ReceiptService) Scan(ctx context.Context, data []byte, mimeType string) (*dto.ScanResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", dto.ErrInvalidArgument)
	}
	if !dto.IsSupportedMimeType(mimeType) {
		return nil, fmt.Errorf("%w: %s", dto.ErrUnsupportedFileType, mimeType)
	}

	parser := s.parser.Load().parser

	imageData := data
	if dto.IsPDF(mimeType) {
		text, err := s.pdfProcessor.ExtractFirstPageText(data)
		switch {
		case err != nil:
			logger.Log.Warn().Err(err).Msg("PDF text layer unreadable, falling back to OCR")
		case strings.TrimSpace(text) != "":
			fields := parser.Parse(text)
			logger.Log.Info().
				Str("source", string(dto.SourcePDFText)).
				Str("text", logger.SanitizeText(text)).
				Bool("has_fields", fields.HasFields).
				Msg("Receipt parsed")
			return &dto.ScanResponse{
				Fields:      fields,
				Source:      dto.SourcePDFText,
				ProcessedAt: s.now().UTC().Format(time.RFC3339),
			}, nil
		}

		imageData, err = s.pdfProcessor.ExtractFirstPageImage(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read first page image: %w", err)
		}
	}

	ocrInput := imageData
	if processed, err := PreprocessForOCR(imageData); err != nil {
		logger.Log.Debug().Err(err).Msg("Image preprocessing skipped")
	} else {
		ocrInput = processed
	}

	frags, err := s.detector.DetectText(ctx, ocrInput)
	if err != nil {
		return nil, fmt.Errorf("failed to detect text: %w", err)
	}

	fields := parser.ParseFragments(frags)
	upi := detectUPI(imageData)
	fields = EnrichWithUPI(fields, upi)

	if strings.TrimSpace(fields.Text) == "" && upi == nil {
		logger.Log.Info().Str("policy", s.blankPolicy).Msg("No text detected in receipt")
		if s.blankPolicy == config.BlankScanError {
			return nil, dto.ErrNoTextDetected
		}
	}

	logger.Log.Info().
		Str("source", string(dto.SourceOCR)).
		Int("fragments", len(frags)).
		Str("text", logger.SanitizeText(fields.Text)).
		Bool("upi", upi != nil).
		Bool("has_fields", fields.HasFields).
		Msg("Receipt parsed")

	return &dto.ScanResponse{
		Fields:        fields,
		Source:        dto.SourceOCR,
		Fragments:     len(frags),
		OCRConfidence: averageConfidence(frags),
		UPI:           upi,
		ProcessedAt:   s.now().UTC().Format(time.RFC3339),
	}, nil
}

// ParseText parses OCR text produced by the caller. A nil text is rejected.
func (s *ReceiptService) ParseText(text *string) (dto.ReceiptFields, error) {
	fields, err := s.parser.Load().parser.ParseOptional(text)
	if err != nil {
		return dto.ReceiptFields{}, err
	}
	logger.Log.Info().
		Str("source", string(dto.SourceText)).
		Str("text", logger.SanitizeText(fields.Text)).
		Bool("has_fields", fields.HasFields).
		Msg("Receipt parsed")
	return fields, nil
}

// Submit validates a user-confirmed receipt and forwards it.
func (s *ReceiptService) Submit(ctx context.Context, fields dto.ReceiptFields) (*dto.SubmitResponse, error) {
	if s.submitter == nil {
		return nil, dto.ErrSubmissionDisabled
	}
	if err := client.ValidateSubmission(fields, s.parser.Load().acceptsPay); err != nil {
		return nil, err
	}
	if err := s.submitter.Submit(ctx, fields); err != nil {
		return nil, err
	}
	return &dto.SubmitResponse{
		Status:      "submitted",
		SubmittedAt: s.now().UTC().Format(time.RFC3339),
	}, nil
}

func detectUPI(data []byte) *dto.UPIPayment {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Log.Debug().Err(err).Msg("Image not decodable for QR scan")
		return nil
	}
	upi, err := DecodeUPIQR(img)
	if err != nil {
		if errors.Is(err, dto.ErrInvalidArgument) {
			logger.Log.Debug().Err(err).Msg("QR code is not a UPI payment link")
		}
		return nil
	}
	return upi
}

func averageConfidence(frags []dto.TextFragment) float64 {
	if len(frags) == 0 {
		return 0
	}
	var sum float64
	for _, f := range frags {
		sum += f.Confidence
	}
	return sum / float64(len(frags))
}
