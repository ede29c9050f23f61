package price

import (
	"github.com/fwojciec/cartex"
	"github.com/shopspring/decimal"
)

// Voter reconciles normalized candidates into one price.
type Voter struct {
	// Ceiling is the largest amount accepted. Amounts above it are
	// reported as unavailable regardless of agreement.
	Ceiling decimal.Decimal
}

// NewVoter returns a Voter using cartex.DefaultPriceCeiling.
func NewVoter() *Voter {
	return &Voter{Ceiling: cartex.DefaultPriceCeiling}
}

// Ballot describes how a vote was decided.
type Ballot struct {
	Price cartex.Price

	// Support is the number of candidates agreeing with the chosen value.
	Support int

	// Candidates is the number of candidates considered.
	Candidates int

	// Rejected is set when the sanity gate discarded the chosen value.
	Rejected bool
}

// Vote returns the agreed price, or unavailable.
func (v *Voter) Vote(candidates []cartex.NormalizedPrice) cartex.Price {
	return v.Tally(candidates).Price
}

// Tally groups candidates by value. The largest group with at least two
// members wins, earlier groups winning ties. Without agreement the first
// candidate wins. The chosen amount is then checked against the ceiling.
func (v *Voter) Tally(candidates []cartex.NormalizedPrice) Ballot {
	b := Ballot{Price: cartex.Unavailable(), Candidates: len(candidates)}
	if len(candidates) == 0 {
		return b
	}

	type group struct {
		value cartex.NormalizedPrice
		count int
	}
	var groups []*group
	index := make(map[string]*group)
	for _, c := range candidates {
		g, ok := index[c.Key()]
		if !ok {
			g = &group{value: c}
			index[c.Key()] = g
			groups = append(groups, g)
		}
		g.count++
	}

	winner := groups[0]
	for _, g := range groups[1:] {
		if g.count > winner.count {
			winner = g
		}
	}
	if winner.count < 2 {
		winner = groups[0]
	}

	b.Support = winner.count
	if winner.value.Amount.GreaterThan(v.ceiling()) {
		b.Rejected = true
		return b
	}
	b.Price = cartex.PriceOf(winner.value)
	return b
}

func (v *Voter) ceiling() decimal.Decimal {
	if v.Ceiling.IsZero() {
		return cartex.DefaultPriceCeiling
	}
	return v.Ceiling
}
