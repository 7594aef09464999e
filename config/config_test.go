package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "OCR_ENGINE", "OCR_LANGUAGES", "BLANK_SCAN_POLICY",
		"MAX_UPLOAD_BYTES", "SHEET_ENDPOINT", "SHEET_TIMEOUT", "SHEET_FIELD_AMOUNT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, EngineTesseract, cfg.OCREngine)
	assert.Equal(t, []string{"eng"}, cfg.OCRLanguages)
	assert.Equal(t, BlankScanForm, cfg.BlankScanPolicy)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, 15*time.Second, cfg.Sheet.Timeout)
	assert.Equal(t, DefaultSheetFieldNames(), cfg.Sheet.Fields)
	assert.Empty(t, cfg.Sheet.Endpoint)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OCR_ENGINE", "PADDLE")
	t.Setenv("OCR_LANGUAGES", "eng, hin ,")
	t.Setenv("BLANK_SCAN_POLICY", "error")
	t.Setenv("SHEET_ENDPOINT", "https://script.example.com/exec")
	t.Setenv("SHEET_TIMEOUT", "3s")
	t.Setenv("SHEET_FIELD_AMOUNT", "entry.1001")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, EnginePaddle, cfg.OCREngine)
	assert.Equal(t, []string{"eng", "hin"}, cfg.OCRLanguages)
	assert.Equal(t, BlankScanError, cfg.BlankScanPolicy)
	assert.Equal(t, "https://script.example.com/exec", cfg.Sheet.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Sheet.Timeout)
	assert.Equal(t, "entry.1001", cfg.Sheet.Fields.Amount)
	assert.Equal(t, "category", cfg.Sheet.Fields.Category)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		ServerPort:      "http",
		OCREngine:       "abbyy",
		BlankScanPolicy: "maybe",
		MaxFileSize:     0,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT must be numeric")
	assert.Contains(t, err.Error(), "OCR_ENGINE")
	assert.Contains(t, err.Error(), "BLANK_SCAN_POLICY")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")
	assert.Contains(t, err.Error(), "SHEET_TIMEOUT")
}
