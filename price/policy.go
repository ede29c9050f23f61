package price

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Observation is what a misparse rule sees about one parsed price.
type Observation struct {
	// Text is the raw candidate text.
	Text string

	// Number is the numeric substring the amount was parsed from.
	Number string

	// Amount is the parsed amount before correction.
	Amount decimal.Decimal

	// Integer is set when the source had no fractional digits.
	Integer bool

	// HighPriceTolerant is set for sites where large prices are routine.
	HighPriceTolerant bool
}

// Rule is a named predicate over an Observation.
type Rule struct {
	Name  string
	Check func(Observation) bool
}

// Policy detects amounts that were read in cents instead of currency
// units. An amount is corrected when at least one flag fires and no guard
// fires.
type Policy struct {
	Guards []Rule
	Flags  []Rule
}

// Misparsed reports whether obs should be divided by 100.
func (p Policy) Misparsed(obs Observation) bool {
	for _, g := range p.Guards {
		if g.Check(obs) {
			return false
		}
	}
	for _, f := range p.Flags {
		if f.Check(obs) {
			return true
		}
	}
	return false
}

// Fired returns the names of the flags that fire for obs, or nil when a
// guard fires first.
func (p Policy) Fired(obs Observation) []string {
	for _, g := range p.Guards {
		if g.Check(obs) {
			return nil
		}
	}
	var names []string
	for _, f := range p.Flags {
		if f.Check(obs) {
			names = append(names, f.Name)
		}
	}
	return names
}

var (
	highAmount = decimal.NewFromInt(10000)
	hundred    = decimal.NewFromInt(100)
)

// DefaultPolicy returns the standard misparse rules.
func DefaultPolicy() Policy {
	return Policy{
		Guards: []Rule{
			{Name: "explicit-cents", Check: explicitCents},
		},
		Flags: []Rule{
			{Name: "high-amount", Check: highAmountFlag},
			{Name: "integer-cents", Check: integerCents},
			{Name: "cents-mention", Check: centsMention},
		},
	}
}

func explicitCents(o Observation) bool {
	return strings.HasSuffix(o.Number, ".00") || strings.HasSuffix(strings.TrimSpace(o.Text), ".00")
}

func highAmountFlag(o Observation) bool {
	return !o.HighPriceTolerant && o.Amount.GreaterThanOrEqual(highAmount)
}

func integerCents(o Observation) bool {
	if !o.Integer {
		return false
	}
	digits := len(o.Amount.Truncate(0).String())
	return digits >= 5 && o.Amount.Mod(hundred).IsZero()
}

func centsMention(o Observation) bool {
	lower := strings.ToLower(o.Text)
	return strings.Contains(lower, "cents") || strings.Contains(lower, "¢")
}
