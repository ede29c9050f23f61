package goquery

import (
	"context"
	"regexp"
	"strings"

	"github.com/fwojciec/cartex"
	"github.com/shopspring/decimal"
)

var (
	currencyPriceRe = regexp.MustCompile(`(\$|£|€|¥|CAD|USD)\s*([\d,]+\.?\d{0,2})`)
	decimalTokenRe  = regexp.MustCompile(`\d{1,3}(?:,\d{3})+\.\d{2}\b|\d+\.\d{2}\b`)
)

// NewClassPriceStrategy scans elements whose class mentions "price" for a
// currency-prefixed amount. It runs in the fallback tier.
func NewClassPriceStrategy() cartex.Strategy {
	return cartex.NewFallbackStrategy("text-class-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, el := range page.FindAll(`[class*="price"]`) {
			text, ok := priceText(el)
			if !ok {
				continue
			}
			if m := currencyPriceRe.FindString(text); m != "" {
				return cartex.Text(m), nil
			}
		}
		return cartex.Raw{}, nil
	})
}

// NewCurrencyTextPriceStrategy returns the first currency-prefixed amount
// in the page text. It runs in the fallback tier.
func NewCurrencyTextPriceStrategy() cartex.Strategy {
	return cartex.NewFallbackStrategy("text-currency-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		m := currencyPriceRe.FindString(page.Text())
		if strings.TrimFunc(m, func(r rune) bool { return r < '0' || r > '9' }) == "" {
			return cartex.Raw{}, nil
		}
		return cartex.Text(m), nil
	})
}

// NewLargestTextPriceStrategy returns the largest two-decimal amount in the
// page text not above ceiling. It runs in the fallback tier.
func NewLargestTextPriceStrategy(ceiling decimal.Decimal) cartex.Strategy {
	return cartex.NewFallbackStrategy("text-largest-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		var best decimal.Decimal
		bestText := ""
		for _, m := range decimalTokenRe.FindAllString(page.Text(), -1) {
			d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
			if err != nil || d.GreaterThan(ceiling) {
				continue
			}
			if bestText == "" || d.GreaterThan(best) {
				best, bestText = d, m
			}
		}
		return cartex.Text(bestText), nil
	})
}
