package cartex

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultPriceCeiling is the largest amount accepted as a real product price.
var DefaultPriceCeiling = decimal.NewFromInt(20000)

// NormalizedPrice is a price in canonical form. Currency is a symbol
// ("$", "€") or an ISO code ("CAD") when no canonical symbol exists.
type NormalizedPrice struct {
	Currency  string
	Amount    decimal.Decimal
	Corrected bool
}

// Key returns the identity used to compare prices: currency plus the amount
// rounded to two decimal places.
func (p NormalizedPrice) Key() string {
	return p.Currency + " " + p.Amount.StringFixed(2)
}

// Equal reports whether p and other represent the same price.
func (p NormalizedPrice) Equal(other NormalizedPrice) bool {
	return p.Key() == other.Key()
}

// String renders the price for display, e.g. "$19.99" or "CAD 19.99".
func (p NormalizedPrice) String() string {
	amount := p.Amount.StringFixed(2)
	if isCurrencyCode(p.Currency) {
		return p.Currency + " " + amount
	}
	return p.Currency + amount
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

const unavailable = "unavailable"

// Price is the outcome of price extraction: a NormalizedPrice or unavailable.
type Price struct {
	value NormalizedPrice
	ok    bool
}

// PriceOf returns an available Price.
func PriceOf(p NormalizedPrice) Price {
	return Price{value: p, ok: true}
}

// Unavailable returns the Price reported when no trustworthy value exists.
func Unavailable() Price {
	return Price{}
}

// Value returns the normalized price and whether one is available.
func (p Price) Value() (NormalizedPrice, bool) {
	return p.value, p.ok
}

// Available reports whether a price was found.
func (p Price) Available() bool { return p.ok }

// String renders the price, or "unavailable".
func (p Price) String() string {
	if !p.ok {
		return unavailable
	}
	return p.value.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Price) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Price) UnmarshalText(text []byte) error {
	*p = ParsePrice(string(text))
	return nil
}

// MarshalJSON encodes the price as its display string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a display string produced by MarshalJSON.
func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParsePrice(s)
	return nil
}

// ParsePrice parses a display string as rendered by Price.String.
// Anything that does not parse, including "N/A" and "unavailable",
// yields an unavailable Price.
func ParsePrice(s string) Price {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return unicode.IsDigit(r) })
	if i < 0 {
		return Unavailable()
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(s[i:], ",", ""))
	if err != nil || amount.IsNegative() {
		return Unavailable()
	}
	currency := strings.TrimSpace(s[:i])
	if currency == "" {
		currency = "$"
	}
	return PriceOf(NormalizedPrice{Currency: currency, Amount: amount})
}
