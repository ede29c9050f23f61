package goquery

import (
	"context"

	"github.com/fwojciec/cartex"
)

// Retailer host patterns.
var (
	amazonHosts  = []string{"amazon.*"}
	ebayHosts    = []string{"ebay.*"}
	walmartHosts = []string{"walmart.com", "walmart.ca"}
	targetHosts  = []string{"target.com"}
	bestbuyHosts = []string{"bestbuy.com", "bestbuy.ca"}
	etsyHosts    = []string{"etsy.com"}
)

// NewAmazonPriceStrategy reads the buy-box price on Amazon storefronts.
func NewAmazonPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("amazon-price", cartex.KindPrice, onHosts(amazonHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		raw := firstPrice(page,
			"#corePrice_feature_div .a-price:not(.a-text-price) .a-offscreen",
			"#corePriceDisplay_desktop_feature_div .a-price:not(.a-text-price) .a-offscreen",
			"#priceblock_dealprice",
			"#priceblock_ourprice",
			"#price_inside_buybox",
		)
		if !raw.IsZero() {
			return raw, nil
		}
		whole, ok := page.Find(".a-price:not(.a-text-price) .a-price-whole")
		if !ok {
			return cartex.Raw{}, nil
		}
		text := whole.Text()
		if fraction, ok := page.Find(".a-price:not(.a-text-price) .a-price-fraction"); ok {
			text = trimDecimalMark(text) + "." + fraction.Text()
		}
		symbol := ""
		if el, ok := page.Find(".a-price:not(.a-text-price) .a-price-symbol"); ok {
			symbol = el.Text()
		}
		return cartex.Text(symbol + text), nil
	}))
}

// NewAmazonTitleStrategy reads #productTitle on Amazon storefronts.
func NewAmazonTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("amazon-title", cartex.KindTitle, onHosts(amazonHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstText(page, "#productTitle", "#title"), nil
	}))
}

// NewAmazonImageStrategy reads the landing image on Amazon storefronts.
func NewAmazonImageStrategy() cartex.Strategy {
	return cartex.NewStrategy("amazon-image", cartex.KindImage, onHosts(amazonHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, sel := range []string{"#landingImage", "#imgBlkFront", "#main-image"} {
			if el, ok := page.Find(sel); ok {
				if v, ok := imageSource(el); ok {
					return cartex.Text(v), nil
				}
			}
		}
		return cartex.Raw{}, nil
	}))
}

// NewEbayPriceStrategy reads the listing price on eBay.
func NewEbayPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("ebay-price", cartex.KindPrice, onHosts(ebayHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page, ".x-price-primary .ux-textspans", ".x-price-primary", "#prcIsum", "#mm-saleDscPrc"), nil
	}))
}

// NewEbayTitleStrategy reads the listing title on eBay.
func NewEbayTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("ebay-title", cartex.KindTitle, onHosts(ebayHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstText(page, ".x-item-title__mainTitle", "#itemTitle"), nil
	}))
}

// NewWalmartPriceStrategy reads the current price on Walmart.
func NewWalmartPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("walmart-price", cartex.KindPrice, onHosts(walmartHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page,
			`[data-testid="price-wrap"] [itemprop="price"]`,
			`span[data-automation-id="product-price"]`,
			`[itemprop="price"]`,
		), nil
	}))
}

// NewTargetPriceStrategy reads the current price on Target.
func NewTargetPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("target-price", cartex.KindPrice, onHosts(targetHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page, `[data-test="product-price"]`), nil
	}))
}

// NewBestBuyPriceStrategy reads the customer price on Best Buy.
func NewBestBuyPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("bestbuy-price", cartex.KindPrice, onHosts(bestbuyHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page, ".priceView-customer-price span", `[data-testid="customer-price"] span`), nil
	}))
}

// NewEtsyPriceStrategy reads the buy-box price on Etsy.
func NewEtsyPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("etsy-price", cartex.KindPrice, onHosts(etsyHosts, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page,
			`[data-buy-box-region="price"] .wt-text-title-larger`,
			`[data-buy-box-region="price"] .wt-text-title-03`,
			`[data-buy-box-region="price"] p`,
		), nil
	}))
}

func trimDecimalMark(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '.' || s[len(s)-1] == ',') {
		s = s[:len(s)-1]
	}
	return s
}
