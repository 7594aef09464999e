package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
)

// PDFProcessor reads the first page of a receipt PDF. Later pages are ignored.
type PDFProcessor interface {
	ExtractFirstPageText(pdfData []byte) (string, error)
	ExtractFirstPageImage(pdfData []byte) ([]byte, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractFirstPageText returns the text layer of page 1, one line per row.
// Scanned PDFs without a text layer yield an empty string.
func (p *pdfProcessor) ExtractFirstPageText(pdfData []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	if r.NumPage() < 1 {
		return "", dto.ErrEmptyDocument
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", dto.ErrEmptyDocument
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}

	var sb strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			sb.WriteString(word.S)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// ExtractFirstPageImage pulls the embedded images of page 1 and returns the
// largest one re-encoded as PNG.
func (p *pdfProcessor) ExtractFirstPageImage(pdfData []byte) ([]byte, error) {
	tempDir, err := os.MkdirTemp("", "receipt_pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	inFile := filepath.Join(tempDir, "receipt.pdf")
	if err := os.WriteFile(inFile, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}

	outDir := filepath.Join(tempDir, "images")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(inFile, outDir, []string{"1"}, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image dir: %w", err)
	}

	var best image.Image
	bestArea := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		img, err := decodeImageFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			logger.Log.Debug().Err(err).Str("file", file.Name()).Msg("Skipping undecodable pdf image")
			continue
		}
		b := img.Bounds()
		if area := b.Dx() * b.Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}
	if best == nil {
		return nil, dto.ErrEmptyDocument
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, best); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
