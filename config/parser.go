package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aashish23092/receipt-capture/dto"
)

// CategoryRule maps a spending category to the keywords that identify it.
// Rules are evaluated in slice order; earlier rules win ties.
type CategoryRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// PaymentRule maps a payment method to the keywords that identify it.
type PaymentRule struct {
	Method   dto.PaymentMethod `yaml:"method"`
	Keywords []string          `yaml:"keywords"`
}

// ParserConfig is the tunable vocabulary of the receipt parser.
type ParserConfig struct {
	Categories             []CategoryRule      `yaml:"categories"`
	MerchantKeywords       []string            `yaml:"merchant_keywords"`
	DefaultCategory        string              `yaml:"default_category"`
	DefaultPaymentMethod   dto.PaymentMethod   `yaml:"default_payment_method"`
	AcceptedPaymentMethods []dto.PaymentMethod `yaml:"accepted_payment_methods"`
	PaymentRules           []PaymentRule       `yaml:"payment_rules"`
	// IgnoreLines are receipt header lines that never name the merchant.
	IgnoreLines []string `yaml:"ignore_lines"`
	// MerchantScanLines is how many leading lines are searched for a known merchant.
	MerchantScanLines int `yaml:"merchant_scan_lines"`
}

// DefaultParserConfig returns the built-in tables tuned for Indian retail and UPI receipts.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Categories: []CategoryRule{
			{Label: "FOOD", Keywords: []string{"food", "restaurant", "cafe", "swiggy", "zomato", "dining", "pizza", "burger", "biryani", "bakery", "kitchen", "dhaba"}},
			{Label: "GROCERY", Keywords: []string{"grocery", "supermarket", "mart", "bigbasket", "blinkit", "zepto", "kirana", "vegetables", "provision"}},
			{Label: "TRAVEL", Keywords: []string{"uber", "ola", "taxi", "rapido", "irctc", "railway", "airline", "flight", "metro", "redbus"}},
			{Label: "HOTEL", Keywords: []string{"hotel", "resort", "lodge"}},
			{Label: "ROOM STAY", Keywords: []string{"oyo", "airbnb", "room", "stay", "hostel", "guest house"}},
			{Label: "FUEL", Keywords: []string{"petrol", "diesel", "fuel", "indian oil", "hpcl", "bpcl"}},
			{Label: "MEDICAL", Keywords: []string{"pharmacy", "medical", "chemist", "hospital", "clinic", "apollo", "medplus", "diagnostic"}},
			{Label: "SHOPPING", Keywords: []string{"amazon", "flipkart", "myntra", "ajio", "fashion", "store", "retail"}},
			{Label: "UTILITIES", Keywords: []string{"electricity", "recharge", "broadband", "airtel", "jio", "water bill", "gas bill"}},
		},
		MerchantKeywords: []string{
			"gpay", "google pay", "phonepe", "paytm", "bhim", "amazon", "flipkart", "swiggy",
			"zomato", "uber", "rapido", "d-mart", "dmart", "reliance", "big bazaar",
			"spencer", "apollo", "medplus", "irctc",
		},
		DefaultCategory:        "Other",
		DefaultPaymentMethod:   dto.PaymentUPI,
		AcceptedPaymentMethods: []dto.PaymentMethod{dto.PaymentUPI, dto.PaymentCash, dto.PaymentCard},
		PaymentRules: []PaymentRule{
			{Method: dto.PaymentUPI, Keywords: []string{"upi", "gpay", "google pay", "phonepe", "paytm", "bhim"}},
			{Method: dto.PaymentCash, Keywords: []string{"cash"}},
			{Method: dto.PaymentCard, Keywords: []string{"card", "visa", "mastercard", "rupay", "swipe"}},
		},
		IgnoreLines: []string{
			"receipt", "tax invoice", "invoice", "retail invoice", "bill", "cash memo",
			"cash bill", "original", "duplicate", "welcome", "customer copy", "merchant copy",
		},
		MerchantScanLines: 5,
	}
}

// LoadParserConfig reads a YAML parser configuration. Keys absent from the file keep
// their DefaultParserConfig values; present lists replace the default list entirely.
func LoadParserConfig(path string) (ParserConfig, error) {
	cfg := DefaultParserConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ParserConfig{}, fmt.Errorf("failed to read parser config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ParserConfig{}, fmt.Errorf("failed to decode parser config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return ParserConfig{}, err
	}
	return cfg, nil
}

// Validate checks the tables are usable by the parser.
func (c ParserConfig) Validate() error {
	var errs []string

	if strings.TrimSpace(c.DefaultCategory) == "" {
		errs = append(errs, "default_category is required")
	}

	seen := make(map[string]bool, len(c.Categories))
	for i, rule := range c.Categories {
		label := strings.TrimSpace(rule.Label)
		if label == "" {
			errs = append(errs, fmt.Sprintf("categories[%d]: label is required", i))
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			errs = append(errs, fmt.Sprintf("categories[%d]: duplicate label %q", i, label))
		}
		seen[key] = true
		if blankKeyword(rule.Keywords) {
			errs = append(errs, fmt.Sprintf("category %q: keywords must not be blank", label))
		}
	}

	if blankKeyword(c.MerchantKeywords) {
		errs = append(errs, "merchant_keywords must not contain blank entries")
	}

	if len(c.AcceptedPaymentMethods) == 0 {
		errs = append(errs, "accepted_payment_methods must not be empty")
	}
	if !slices.Contains(c.AcceptedPaymentMethods, c.DefaultPaymentMethod) {
		errs = append(errs, fmt.Sprintf("default_payment_method %q is not an accepted payment method", c.DefaultPaymentMethod))
	}
	for _, rule := range c.PaymentRules {
		if !slices.Contains(c.AcceptedPaymentMethods, rule.Method) {
			errs = append(errs, fmt.Sprintf("payment rule %q is not an accepted payment method", rule.Method))
		}
		if blankKeyword(rule.Keywords) {
			errs = append(errs, fmt.Sprintf("payment rule %q: keywords must not be blank", rule.Method))
		}
	}

	if c.MerchantScanLines < 1 || c.MerchantScanLines > 20 {
		errs = append(errs, "merchant_scan_lines must be between 1 and 20")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: parser config:\n  - %s", dto.ErrInvalidArgument, strings.Join(errs, "\n  - "))
	}
	return nil
}

// AcceptsPaymentMethod reports whether m is one of the configured payment methods.
func (c ParserConfig) AcceptsPaymentMethod(m dto.PaymentMethod) bool {
	return slices.Contains(c.AcceptedPaymentMethods, m)
}

func blankKeyword(keywords []string) bool {
	for _, k := range keywords {
		if strings.TrimSpace(k) == "" {
			return true
		}
	}
	return false
}
