package goquery

import (
	"github.com/fwojciec/cartex"
	"github.com/shopspring/decimal"
)

// RegisterDefaults registers the built-in strategies in trust order.
// ceiling bounds the largest-amount text fallback.
func RegisterDefaults(r cartex.StrategyRegistry, ceiling decimal.Decimal) {
	RegisterDefaultsWith(r, ceiling, NewDetector())
}

// RegisterDefaultsWith is RegisterDefaults with the platform detector used
// by the storefront strategies supplied by the caller.
func RegisterDefaultsWith(r cartex.StrategyRegistry, ceiling decimal.Decimal, detector cartex.PlatformDetector) {

	// Title
	r.Register(NewAmazonTitleStrategy())
	r.Register(NewEbayTitleStrategy())
	r.Register(NewJSONLDTitleStrategy())
	r.Register(NewMicrodataTitleStrategy())
	r.Register(NewSelectorTitleStrategy())
	r.Register(NewOpenGraphTitleStrategy())
	r.Register(NewTwitterTitleStrategy())
	r.Register(NewDocumentTitleStrategy())

	// Price, primary tier
	r.Register(NewJSONLDPriceStrategy())
	r.Register(NewMicrodataPriceStrategy())
	r.Register(NewSelectorPriceStrategy())
	r.Register(NewContainerPriceStrategy())
	r.Register(NewAttributePriceStrategy())
	r.Register(NewMetaPriceStrategy())
	r.Register(NewAmazonPriceStrategy())
	r.Register(NewEbayPriceStrategy())
	r.Register(NewWalmartPriceStrategy())
	r.Register(NewTargetPriceStrategy())
	r.Register(NewBestBuyPriceStrategy())
	r.Register(NewEtsyPriceStrategy())
	r.Register(NewShopifyPriceStrategy(detector))
	r.Register(NewWooCommercePriceStrategy(detector))
	r.Register(NewMagentoPriceStrategy(detector))
	r.Register(NewBigCommercePriceStrategy(detector))

	// Price, fallback tier
	r.Register(NewClassPriceStrategy())
	r.Register(NewCurrencyTextPriceStrategy())
	r.Register(NewLargestTextPriceStrategy(ceiling))

	// Image
	r.Register(NewAmazonImageStrategy())
	r.Register(NewJSONLDImageStrategy())
	r.Register(NewMicrodataImageStrategy())
	r.Register(NewOpenGraphImageStrategy())
	r.Register(NewTwitterImageStrategy())
	r.Register(NewSelectorImageStrategy())
	r.Register(NewLinkImageStrategy())
}
