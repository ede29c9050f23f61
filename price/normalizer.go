// Package price turns raw price candidates into normalized amounts and
// reconciles them into a single price by vote.
package price

import (
	"regexp"
	"strings"

	"github.com/fwojciec/cartex"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the symbol assumed when a raw price names none.
const DefaultCurrency = "$"

// symbols are checked longest first so "US$" wins over "$".
var symbols = []string{"US$", "CA$", "AU$", "NZ$", "HK$", "C$", "A$", "R$", "$", "£", "€", "¥", "₹", "₩", "₽"}

// canonical maps ISO codes to the symbol they are displayed with.
var canonical = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"KRW": "₩",
	"RUB": "₽",
}

const codes = `USD|EUR|GBP|JPY|INR|KRW|RUB|CAD|AUD|NZD|HKD|CHF|CNY|SEK|NOK|DKK|PLN|MXN|BRL|ZAR|SGD`

var (
	currencyPattern = `US\$|CA\$|AU\$|NZ\$|HK\$|C\$|A\$|R\$|[$£€¥₹₩₽]|\b(?:` + codes + `)\b`
	amountRe        = regexp.MustCompile(`(` + currencyPattern + `)?\s*(\d+(?:[.,]\d+|[ \x{00A0}\x{202F}]\d{3}\b)*)\s*(` + currencyPattern + `)?`)
	alternateRe     = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d{2}$`)
	decimalCommaRe  = regexp.MustCompile(`^\d+,\d{2}$`)
)

// Hint carries per-site context into normalization.
type Hint struct {
	HighPriceTolerant bool
}

// HintFor derives a Hint from a site profile. A nil profile yields the zero Hint.
func HintFor(profile *cartex.SiteProfile) Hint {
	if profile == nil {
		return Hint{}
	}
	return Hint{HighPriceTolerant: profile.HighPriceTolerant}
}

// Normalizer converts raw candidates into NormalizedPrice values.
type Normalizer struct {
	// DefaultCurrency is used when neither the text nor the raw value's
	// hint names a currency.
	DefaultCurrency string

	// Policy decides whether an amount is a misparsed cents value.
	Policy Policy
}

// NewNormalizer returns a Normalizer with the default currency and policy.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		DefaultCurrency: DefaultCurrency,
		Policy:          DefaultPolicy(),
	}
}

// Normalize converts raw into canonical form. It reports false when raw is
// absent, unparseable, negative or zero.
func (n *Normalizer) Normalize(raw cartex.Raw, hint Hint) (cartex.NormalizedPrice, bool) {
	var (
		amount   decimal.Decimal
		currency string
		number   string
		integer  bool
	)
	switch raw.Kind() {
	case cartex.RawText:
		m := amountRe.FindStringSubmatch(raw.String())
		if m == nil {
			return cartex.NormalizedPrice{}, false
		}
		number = m[2]
		parsed, fraction, ok := parseNumber(number)
		if !ok {
			return cartex.NormalizedPrice{}, false
		}
		amount = parsed
		integer = !fraction
		currency = m[1]
		if currency == "" {
			currency = m[3]
		}
	case cartex.RawNumber:
		amount, _ = raw.Number()
		number = amount.String()
		integer = amount.IsInteger()
	default:
		return cartex.NormalizedPrice{}, false
	}

	if currency == "" {
		currency = raw.Currency()
	}
	if currency == "" {
		currency = n.defaultCurrency()
	}
	currency = canonicalCurrency(currency)

	if !amount.IsPositive() {
		return cartex.NormalizedPrice{}, false
	}

	corrected := false
	obs := Observation{
		Text:              raw.String(),
		Number:            number,
		Amount:            amount,
		Integer:           integer,
		HighPriceTolerant: hint.HighPriceTolerant,
	}
	if n.Policy.Misparsed(obs) {
		amount = amount.Div(decimal.NewFromInt(100))
		corrected = true
	}

	return cartex.NormalizedPrice{
		Currency:  currency,
		Amount:    amount.Round(2),
		Corrected: corrected,
	}, true
}

func (n *Normalizer) defaultCurrency() string {
	if n.DefaultCurrency == "" {
		return DefaultCurrency
	}
	return n.DefaultCurrency
}

// canonicalCurrency maps ISO codes with a well-known symbol onto that symbol.
func canonicalCurrency(c string) string {
	c = strings.TrimSpace(c)
	if sym, ok := canonical[strings.ToUpper(c)]; ok {
		return sym
	}
	for _, s := range symbols {
		if c == s {
			return s
		}
	}
	return strings.ToUpper(c)
}

// parseNumber interprets grouping and decimal separators and reports
// whether the number had a fractional part. Alternate grouping ("1.234,56")
// applies only when both separators are present and the string ends in a
// three-digit group followed by two decimals. A lone comma followed by
// exactly two digits ("19,99") is a decimal comma.
func parseNumber(s string) (decimal.Decimal, bool, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)

	switch {
	case alternateRe.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case decimalCommaRe.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false, false
	}
	return d, strings.Contains(s, "."), true
}
