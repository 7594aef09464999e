package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
)

// PaddleClient talks to a PaddleOCR serving endpoint (ocr_system module).
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewPaddleClient creates a new PaddleOCR client for the given predict URL.
func NewPaddleClient(apiURL string, timeout time.Duration) *PaddleClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// DetectText sends the image to PaddleOCR and returns the detected lines in order.
// An image with no text yields an empty slice, not an error.
func (p *PaddleClient) DetectText(ctx context.Context, image []byte) ([]dto.TextFragment, error) {
	payloadBytes, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(image)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var frags []dto.TextFragment
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			text := strings.TrimSpace(line.Text)
			if text == "" {
				continue
			}
			frags = append(frags, dto.TextFragment{Text: text, Confidence: line.Confidence})
		}
	}

	logger.Log.Debug().Int("fragments", len(frags)).Msg("PaddleOCR detection finished")
	return frags, nil
}
