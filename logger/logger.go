// Package logger holds the service-wide zerolog logger and helpers that keep
// receipt contents out of log lines.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats accepted by New and Configure.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Log is the global logger instance.
var Log = New(os.Stdout, FormatConsole)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// New builds a logger writing to w. Any format other than FormatJSON gets the
// human-readable console writer.
func New(w io.Writer, format string) zerolog.Logger {
	if !strings.EqualFold(format, FormatJSON) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", "receipt-capture").
		Logger()
}

// Configure replaces Log and applies the level, typically from LOG_LEVEL and LOG_FORMAT.
func Configure(w io.Writer, level, format string) {
	SetLevel(level)
	Log = New(w, format)
}

// SetLevel sets the global log level. Unknown or empty levels mean info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// SanitizeText describes OCR or user text without exposing it.
// Receipts carry names, phone numbers and UPI handles.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}
	lines := strings.Count(text, "\n") + 1
	return fmt.Sprintf("<redacted: %d lines, %d chars>", lines, len(text))
}

// MaskReference keeps only the last four characters of an invoice or UPI reference.
func MaskReference(ref string) string {
	if len(ref) <= 4 {
		return strings.Repeat("*", len(ref))
	}
	return strings.Repeat("*", len(ref)-4) + ref[len(ref)-4:]
}
