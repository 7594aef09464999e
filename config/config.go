package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// OCR engines the scan pipeline can be wired to.
const (
	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
)

// Blank scan policies: what to do when OCR finds no text at all.
const (
	BlankScanForm  = "form"
	BlankScanError = "error"
)

type Config struct {
	ServerPort        string
	GinMode           string
	LogLevel          string
	LogFormat         string
	TesseractDataPath string
	OCREngine         string
	OCRLanguages      []string
	PaddleAPIURL      string
	MaxFileSize       int64
	ParserConfigPath  string
	BlankScanPolicy   string
	Sheet             SheetConfig
}

// SheetConfig describes the remote spreadsheet form receipts are submitted to.
type SheetConfig struct {
	Endpoint string
	Timeout  time.Duration
	Fields   SheetFieldNames
}

// SheetFieldNames maps receipt fields onto the form field names the endpoint expects.
type SheetFieldNames struct {
	Amount        string
	Category      string
	Method        string
	Date          string
	Merchant      string
	InvoiceNumber string
}

// DefaultSheetFieldNames returns the field names used by the stock spreadsheet script.
func DefaultSheetFieldNames() SheetFieldNames {
	return SheetFieldNames{
		Amount:        "amount",
		Category:      "category",
		Method:        "method",
		Date:          "date",
		Merchant:      "merchant",
		InvoiceNumber: "invoice_number",
	}
}

// LoadConfig reads configuration from the environment, after an optional .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	defaults := DefaultSheetFieldNames()
	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "release"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		OCREngine:         strings.ToLower(getEnv("OCR_ENGINE", EngineTesseract)),
		OCRLanguages:      splitList(getEnv("OCR_LANGUAGES", "eng")),
		PaddleAPIURL:      getEnv("PADDLEOCR_API_URL", "http://paddleocr:8866/predict/ocr_system"),
		MaxFileSize:       getEnvAsInt64("MAX_UPLOAD_BYTES", 10*1024*1024), // 10 MB
		ParserConfigPath:  os.Getenv("PARSER_CONFIG_PATH"),
		BlankScanPolicy:   strings.ToLower(getEnv("BLANK_SCAN_POLICY", BlankScanForm)),
		Sheet: SheetConfig{
			Endpoint: os.Getenv("SHEET_ENDPOINT"),
			Timeout:  getEnvAsDuration("SHEET_TIMEOUT", 15*time.Second),
			Fields: SheetFieldNames{
				Amount:        getEnv("SHEET_FIELD_AMOUNT", defaults.Amount),
				Category:      getEnv("SHEET_FIELD_CATEGORY", defaults.Category),
				Method:        getEnv("SHEET_FIELD_METHOD", defaults.Method),
				Date:          getEnv("SHEET_FIELD_DATE", defaults.Date),
				Merchant:      getEnv("SHEET_FIELD_MERCHANT", defaults.Merchant),
				InvoiceNumber: getEnv("SHEET_FIELD_INVOICE_NUMBER", defaults.InvoiceNumber),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.ServerPort == "" {
		errs = append(errs, "SERVER_PORT is required")
	} else if _, err := strconv.Atoi(c.ServerPort); err != nil {
		errs = append(errs, "SERVER_PORT must be numeric")
	}

	switch c.OCREngine {
	case EngineTesseract:
		if len(c.OCRLanguages) == 0 {
			errs = append(errs, "OCR_LANGUAGES must name at least one language")
		}
	case EnginePaddle:
		if c.PaddleAPIURL == "" {
			errs = append(errs, "PADDLEOCR_API_URL is required when OCR_ENGINE=paddle")
		}
	default:
		errs = append(errs, fmt.Sprintf("OCR_ENGINE must be %q or %q", EngineTesseract, EnginePaddle))
	}

	if c.BlankScanPolicy != BlankScanForm && c.BlankScanPolicy != BlankScanError {
		errs = append(errs, fmt.Sprintf("BLANK_SCAN_POLICY must be %q or %q", BlankScanForm, BlankScanError))
	}

	if c.MaxFileSize <= 0 {
		errs = append(errs, "MAX_UPLOAD_BYTES must be positive")
	}

	if c.Sheet.Timeout <= 0 {
		errs = append(errs, "SHEET_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
