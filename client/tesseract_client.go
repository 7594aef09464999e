package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
)

type TesseractClient struct {
	dataPath  string
	languages []string
}

func NewTesseractClient(dataPath string, languages ...string) *TesseractClient {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
	}
}

// DetectText runs Tesseract over an encoded image and returns one fragment per
// detected text line, in reading order.
func (tc *TesseractClient) DetectText(ctx context.Context, image []byte) ([]dto.TextFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		if err := client.SetTessdataPrefix(tc.dataPath); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}

	if err := client.SetLanguage(tc.languages...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	// Line boxes carry per-line confidence (0-100); fall back to plain text lines without it.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Tesseract bounding boxes unavailable, using plain text lines")
		return linesToFragments(text), nil
	}

	frags := make([]dto.TextFragment, 0, len(boxes))
	for _, box := range boxes {
		line := strings.TrimSpace(box.Word)
		if line == "" {
			continue
		}
		frags = append(frags, dto.TextFragment{Text: line, Confidence: box.Confidence / 100})
	}
	return frags, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	logger.Log.Info().Msg("Tesseract client closed")
}

func linesToFragments(text string) []dto.TextFragment {
	var frags []dto.TextFragment
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		frags = append(frags, dto.TextFragment{Text: line})
	}
	return frags
}
