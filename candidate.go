package cartex

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the product attribute a strategy extracts.
type Kind string

// Attribute kinds.
const (
	KindTitle Kind = "title"
	KindPrice Kind = "price"
	KindImage Kind = "image"
)

// RawKind tags the form of a Raw value.
type RawKind int

const (
	RawNone RawKind = iota
	RawText
	RawNumber
)

// Raw is a value as a strategy found it: either page text or a number that
// was already numeric in the source (for example a JSON-LD price). Both forms
// may carry a currency hint. The zero Raw means no value was found.
type Raw struct {
	kind     RawKind
	text     string
	number   decimal.Decimal
	currency string
}

// Text returns a textual Raw. Blank input yields the zero Raw.
func Text(s string) Raw {
	s = strings.TrimSpace(s)
	if s == "" {
		return Raw{}
	}
	return Raw{kind: RawText, text: s}
}

// Number returns a numeric Raw with an optional currency hint.
func Number(d decimal.Decimal, currency string) Raw {
	return Raw{kind: RawNumber, number: d, currency: strings.TrimSpace(currency)}
}

// WithCurrency returns a copy of r carrying the given currency hint.
func (r Raw) WithCurrency(currency string) Raw {
	if r.kind == RawNone {
		return r
	}
	r.currency = strings.TrimSpace(currency)
	return r
}

// Kind reports the form of the value.
func (r Raw) Kind() RawKind { return r.kind }

// IsZero reports whether no value is present.
func (r Raw) IsZero() bool { return r.kind == RawNone }

// Number returns the numeric value, if r is numeric.
func (r Raw) Number() (decimal.Decimal, bool) {
	return r.number, r.kind == RawNumber
}

// Currency returns the currency hint, if any.
func (r Raw) Currency() string { return r.currency }

// String returns the text form of the value.
func (r Raw) String() string {
	switch r.kind {
	case RawText:
		return r.text
	case RawNumber:
		return r.number.String()
	}
	return ""
}

// Candidate is one strategy's proposal for an attribute.
type Candidate struct {
	Value  Raw
	Source string
}
