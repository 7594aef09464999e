package service

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Receipt photos shorter than minOCRHeight are upscaled to targetOCRHeight.
const (
	minOCRHeight    = 800
	targetOCRHeight = 1200
)

// PreprocessForOCR straightens a phone photo using its EXIF orientation,
// converts it to grayscale and upscales small captures. The result is PNG.
func PreprocessForOCR(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minOCRHeight {
		gray = imaging.Resize(gray, 0, targetOCRHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
