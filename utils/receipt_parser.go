package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/receipt-capture/config"
	"github.com/Aashish23092/receipt-capture/dto"
)

// Price shapes, tried in this order: Indian lakh grouping ("1,25,000.00"),
// thousands grouping ("1,250.00", "2.500,75"), then a plain price ("45.00").
const (
	lakhPricePattern    = `\d{1,2}(?:,\d{2})+,\d{3}\.\d{2}`
	groupedPricePattern = `\d{1,3}(?:[.,]\d{3})+[.,]\d{2}`
	barePricePattern    = `\d{1,5}[.,]\d{2}`
)

var (
	// A currency or total label followed by a price such as "TOTAL: 1,250.00" or "Rs.45.00".
	cuedAmountRegex = regexp.MustCompile(`(?i)(?:RS|INR|₹|TOTAL|AMOUNT|AMT)\.?\s*[:=]?\s*(` +
		lakhPricePattern + `|\d{1,3}(?:[.,]\d{3})*[.,]\d{2})`)

	priceRegex        = regexp.MustCompile(lakhPricePattern + `|` + groupedPricePattern + `|` + barePricePattern)
	leadingPriceRegex = regexp.MustCompile(`^(?:` + lakhPricePattern + `|` + groupedPricePattern + `|` + barePricePattern + `)`)

	// dd/mm/yy[yy] or yyyy-mm-dd; whichever starts first in the text wins.
	dateRegex = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})|(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)

	invoiceRegex = regexp.MustCompile(`(?i:\b(?:INVOICE|INV|BILL|TXN|TRANSACTION|RECEIPT|REF))\.?[ \t]*(?i:NUMBER|NO|ID)?\.?[ \t]*[:#=]?[ \t]*([A-Z0-9/\-]{4,})`)

	phoneRegex = regexp.MustCompile(`\d{10}`)
)

type keywordRule struct {
	label    string
	keywords []string
}

// ReceiptParser turns raw receipt OCR text into a ReceiptFields draft.
// It holds only read-only tables and is safe for concurrent use.
type ReceiptParser struct {
	categories        []keywordRule
	payments          []keywordRule
	merchantKeywords  []string
	ignoreLines       map[string]struct{}
	merchantScanLines int
	defaultCategory   string
	defaultPayment    dto.PaymentMethod
	now               func() time.Time
}

// ParserOption customises a ReceiptParser.
type ParserOption func(*ReceiptParser)

// WithClock sets the source of "today" used when a receipt carries no date.
func WithClock(now func() time.Time) ParserOption {
	return func(p *ReceiptParser) {
		if now != nil {
			p.now = now
		}
	}
}

// NewReceiptParser validates cfg and builds a parser from a private copy of its tables.
func NewReceiptParser(cfg config.ParserConfig, opts ...ParserOption) (*ReceiptParser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &ReceiptParser{
		merchantKeywords:  lowerAll(cfg.MerchantKeywords),
		ignoreLines:       make(map[string]struct{}, len(cfg.IgnoreLines)),
		merchantScanLines: cfg.MerchantScanLines,
		defaultCategory:   strings.TrimSpace(cfg.DefaultCategory),
		defaultPayment:    cfg.DefaultPaymentMethod,
		now:               time.Now,
	}
	for _, rule := range cfg.Categories {
		p.categories = append(p.categories, keywordRule{
			label:    strings.TrimSpace(rule.Label),
			keywords: lowerAll(rule.Keywords),
		})
	}
	for _, rule := range cfg.PaymentRules {
		p.payments = append(p.payments, keywordRule{
			label:    string(rule.Method),
			keywords: lowerAll(rule.Keywords),
		})
	}
	for _, line := range cfg.IgnoreLines {
		p.ignoreLines[headerKey(line)] = struct{}{}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

var defaultParser = sync.OnceValue(func() *ReceiptParser {
	p, err := NewReceiptParser(config.DefaultParserConfig())
	if err != nil {
		panic(fmt.Sprintf("default parser config is invalid: %v", err))
	}
	return p
})

// ParseReceipt parses OCR text with the built-in parser configuration.
func ParseReceipt(rawText string) dto.ReceiptFields {
	return defaultParser().Parse(rawText)
}

// Parse extracts receipt fields from raw OCR text. It never fails: anything it
// cannot find is left empty or set to its default so the user can fill it in.
func (p *ReceiptParser) Parse(rawText string) dto.ReceiptFields {
	fields := dto.ReceiptFields{
		Text:          rawText,
		Date:          p.today(),
		Category:      p.defaultCategory,
		PaymentMethod: p.defaultPayment,
	}
	if strings.TrimSpace(rawText) == "" {
		return fields
	}

	fields.Amount = extractAmount(rawText)
	fields.Merchant = p.extractMerchant(rawText)
	if date, ok := extractDate(rawText); ok {
		fields.Date = date
	}
	fields.Category = p.extractCategory(rawText)
	fields.InvoiceNumber = extractInvoiceNumber(rawText)
	fields.PaymentMethod = p.extractPaymentMethod(rawText)
	fields.HasFields = fields.ComputeHasFields()

	return fields
}

// ParseOptional is Parse for callers holding an optional text value.
// A nil text is rejected with dto.ErrInvalidArgument; "" is a valid blank receipt.
func (p *ReceiptParser) ParseOptional(rawText *string) (dto.ReceiptFields, error) {
	if rawText == nil {
		return dto.ReceiptFields{}, fmt.Errorf("%w: text is required", dto.ErrInvalidArgument)
	}
	return p.Parse(*rawText), nil
}

// ParseFragments joins OCR fragments in order, one per line, and parses the result.
func (p *ReceiptParser) ParseFragments(frags []dto.TextFragment) dto.ReceiptFields {
	return p.Parse(dto.JoinFragments(frags))
}

func (p *ReceiptParser) today() string {
	return p.now().Format(dto.DateLayout)
}

// extractAmount returns the last cued amount, or failing that the largest bare price.
func extractAmount(text string) string {
	if amount := lastCuedAmount(text); amount != "" {
		return amount
	}
	return largestBarePrice(text)
}

func lastCuedAmount(text string) string {
	var last string
	for _, m := range cuedAmountRegex.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if !isWholePrice(text, start, end) {
			continue
		}
		last = normalizeAmount(text[start:end])
	}
	return last
}

// isWholePrice reports whether text[start:end] is a complete price rather than a
// slice of a longer number. A price glued to the next one by a separator, as OCR
// does with "45.00,120.50", still counts.
func isWholePrice(text string, start, end int) bool {
	if start > 0 && isDigit(text[start-1]) {
		return false
	}
	if end >= len(text) {
		return true
	}
	if isDigit(text[end]) {
		return false
	}
	if (text[end] == '.' || text[end] == ',') && end+1 < len(text) && isDigit(text[end+1]) {
		return leadingPriceRegex.MatchString(text[end+1:])
	}
	return true
}

func largestBarePrice(text string) string {
	var best string
	var bestValue decimal.Decimal

	for _, m := range priceRegex.FindAllStringIndex(text, -1) {
		if !isWholePrice(text, m[0], m[1]) {
			continue
		}
		normalized := normalizeAmount(text[m[0]:m[1]])
		value, err := decimal.NewFromString(normalized)
		if err != nil {
			continue
		}
		if best == "" || value.GreaterThan(bestValue) {
			best, bestValue = normalized, value
		}
	}
	return best
}

// normalizeAmount drops thousands separators and emits '.' as the decimal separator:
// "1,200.00" -> "1200.00", "1.200,50" -> "1200.50".
func normalizeAmount(s string) string {
	idx := strings.LastIndexAny(s, ".,")
	if idx < 0 {
		return s
	}
	whole := strings.NewReplacer(".", "", ",", "").Replace(s[:idx])
	return whole + "." + s[idx+1:]
}

// extractDate returns the first real calendar date in the text as YYYY-MM-DD.
func extractDate(text string) (string, bool) {
	for _, m := range dateRegex.FindAllStringSubmatch(text, -1) {
		var year, month, day string
		if m[1] != "" {
			day, month, year = m[1], m[2], m[3]
			if len(year) == 2 {
				year = "20" + year
			}
		} else {
			year, month, day = m[4], m[5], m[6]
		}
		if date, ok := buildDate(year, month, day); ok {
			return date, true
		}
	}
	return "", false
}

func buildDate(year, month, day string) (string, bool) {
	if len(year) != 4 {
		return "", false
	}
	y, errY := strconv.Atoi(year)
	mo, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil || y < 1900 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return "", false
	}
	return t.Format(dto.DateLayout), true
}

func (p *ReceiptParser) extractCategory(text string) string {
	if label := firstMatchingRule(strings.ToLower(text), p.categories); label != "" {
		return label
	}
	return p.defaultCategory
}

func (p *ReceiptParser) extractPaymentMethod(text string) dto.PaymentMethod {
	if method := firstMatchingRule(strings.ToLower(text), p.payments); method != "" {
		return dto.PaymentMethod(method)
	}
	return p.defaultPayment
}

// firstMatchingRule walks rules in order; slice order is the tie-break.
func firstMatchingRule(lower string, rules []keywordRule) string {
	for _, rule := range rules {
		if containsAny(lower, rule.keywords) {
			return rule.label
		}
	}
	return ""
}

// extractMerchant prefers a known merchant near the top of the receipt and
// otherwise takes the first meaningful line.
func (p *ReceiptParser) extractMerchant(text string) string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) < 3 {
			continue
		}
		if _, ignored := p.ignoreLines[headerKey(line)]; ignored {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ""
	}

	scan := lines
	if len(scan) > p.merchantScanLines {
		scan = scan[:p.merchantScanLines]
	}
	for _, line := range scan {
		if phoneRegex.MatchString(line) {
			continue
		}
		if containsAny(strings.ToLower(line), p.merchantKeywords) {
			return line
		}
	}
	return lines[0]
}

func extractInvoiceNumber(text string) string {
	for _, m := range invoiceRegex.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimLeft(m[1], "/-")
		// All-letter captures are the next word on the line ("BILL DATE", "INV AMOUNT").
		if len(candidate) < 4 || !strings.ContainsAny(candidate, "0123456789") {
			continue
		}
		if dateRegex.FindString(candidate) == candidate {
			continue
		}
		return candidate
	}
	return ""
}

// headerKey reduces a line to lower-case words so "** TAX INVOICE **" matches "tax invoice".
func headerKey(line string) string {
	words := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
