package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/receipt-capture/dto"
)

func TestDefaultParserConfigIsValid(t *testing.T) {
	cfg := DefaultParserConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Other", cfg.DefaultCategory)
	assert.Equal(t, dto.PaymentUPI, cfg.DefaultPaymentMethod)
	assert.Equal(t, "FOOD", cfg.Categories[0].Label)
	assert.True(t, cfg.AcceptsPaymentMethod(dto.PaymentCard))
	assert.False(t, cfg.AcceptsPaymentMethod("CHEQUE"))
}

func TestLoadParserConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parser.yaml")
	yamlData := `
categories:
  - label: TRAVEL
    keywords: [uber, ola]
  - label: FOOD
    keywords: [zomato]
default_category: Misc
default_payment_method: CASH
merchant_scan_lines: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	cfg, err := LoadParserConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, "TRAVEL", cfg.Categories[0].Label)
	assert.Equal(t, []string{"uber", "ola"}, cfg.Categories[0].Keywords)
	assert.Equal(t, "Misc", cfg.DefaultCategory)
	assert.Equal(t, dto.PaymentCash, cfg.DefaultPaymentMethod)
	assert.Equal(t, 3, cfg.MerchantScanLines)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, DefaultParserConfig().MerchantKeywords, cfg.MerchantKeywords)
	assert.Equal(t, DefaultParserConfig().IgnoreLines, cfg.IgnoreLines)
}

func TestLoadParserConfigEmptyPath(t *testing.T) {
	cfg, err := LoadParserConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultParserConfig(), cfg)
}

func TestExampleParserConfig(t *testing.T) {
	cfg, err := LoadParserConfig(filepath.Join("..", "configs", "parser.example.yaml"))
	require.NoError(t, err)

	require.Len(t, cfg.Categories, 5)
	assert.Equal(t, "FUEL", cfg.Categories[4].Label)
	assert.Equal(t, DefaultParserConfig().IgnoreLines, cfg.IgnoreLines)
	assert.Equal(t, DefaultParserConfig().MerchantKeywords, cfg.MerchantKeywords)
}

func TestLoadParserConfigErrors(t *testing.T) {
	_, err := LoadParserConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_payment_method: CHEQUE\n"), 0o600))
	_, err = LoadParserConfig(path)
	require.ErrorIs(t, err, dto.ErrInvalidArgument)
}

func TestParserConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ParserConfig)
		want   string
	}{
		{"blank default category", func(c *ParserConfig) { c.DefaultCategory = " " }, "default_category"},
		{"blank label", func(c *ParserConfig) { c.Categories[0].Label = "" }, "label is required"},
		{"duplicate label", func(c *ParserConfig) { c.Categories[1].Label = "food" }, "duplicate label"},
		{"blank keyword", func(c *ParserConfig) { c.Categories[0].Keywords = append(c.Categories[0].Keywords, "") }, "must not be blank"},
		{"blank merchant keyword", func(c *ParserConfig) { c.MerchantKeywords = []string{"  "} }, "merchant_keywords"},
		{"no accepted methods", func(c *ParserConfig) { c.AcceptedPaymentMethods = nil }, "accepted_payment_methods"},
		{"unaccepted rule", func(c *ParserConfig) {
			c.AcceptedPaymentMethods = []dto.PaymentMethod{dto.PaymentUPI}
		}, `payment rule "CASH"`},
		{"scan lines out of range", func(c *ParserConfig) { c.MerchantScanLines = 0 }, "merchant_scan_lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultParserConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, dto.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
