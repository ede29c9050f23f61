package goquery

import (
	"context"

	"github.com/fwojciec/cartex"
)

// onPlatform gates fn to pages rendered by platform.
func onPlatform(detector cartex.PlatformDetector, platform cartex.Platform, fn cartex.ExtractFunc) cartex.ExtractFunc {
	return func(ctx context.Context, page cartex.Page) (cartex.Raw, error) {
		if detector.Detect(page) != platform {
			return cartex.Raw{}, nil
		}
		return fn(ctx, page)
	}
}

// NewShopifyPriceStrategy reads the product price of Shopify themes.
func NewShopifyPriceStrategy(detector cartex.PlatformDetector) cartex.Strategy {
	return cartex.NewStrategy("shopify-price", cartex.KindPrice, onPlatform(detector, cartex.PlatformShopify, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page,
			".price__sale .price-item--sale",
			".price-item--regular",
			".product__price",
			"[data-product-price]",
		), nil
	}))
}

// NewWooCommercePriceStrategy reads the summary price of WooCommerce
// products. Sale prices are rendered as <ins> next to a <del> list price.
func NewWooCommercePriceStrategy(detector cartex.PlatformDetector) cartex.Strategy {
	return cartex.NewStrategy("woocommerce-price", cartex.KindPrice, onPlatform(detector, cartex.PlatformWooCommerce, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page,
			".summary .price ins .woocommerce-Price-amount",
			".summary .price .woocommerce-Price-amount",
			".woocommerce-Price-amount",
		), nil
	}))
}

// NewMagentoPriceStrategy reads Magento's final price amount attribute.
func NewMagentoPriceStrategy(detector cartex.PlatformDetector) cartex.Strategy {
	return cartex.NewStrategy("magento-price", cartex.KindPrice, onPlatform(detector, cartex.PlatformMagento, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, el := range page.FindAll(`[data-price-type="finalPrice"]`) {
			if isStruck(el) {
				continue
			}
			if v, ok := attrValue(el, "data-price-amount"); ok {
				return cartex.Text(v), nil
			}
		}
		return cartex.Raw{}, nil
	}))
}

// NewBigCommercePriceStrategy reads BigCommerce's displayed price.
func NewBigCommercePriceStrategy(detector cartex.PlatformDetector) cartex.Strategy {
	return cartex.NewStrategy("bigcommerce-price", cartex.KindPrice, onPlatform(detector, cartex.PlatformBigCommerce, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page, "[data-product-price-without-tax]", "[data-product-price-with-tax]"), nil
	}))
}
