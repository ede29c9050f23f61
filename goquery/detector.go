package goquery

import (
	"strings"

	"github.com/fwojciec/cartex"
)

var _ cartex.PlatformDetector = (*Detector)(nil)

// Detector identifies storefront platforms from page markup.
// It checks for platform-specific globals, CSS classes, data attributes
// and meta generator tags.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the platform that rendered page.
// Returns PlatformUnknown if the platform cannot be determined.
func (d *Detector) Detect(page cartex.Page) cartex.Platform {
	// Check meta generator tags first - most reliable when present
	if platform := d.detectFromMetaGenerator(page); platform != cartex.PlatformUnknown {
		return platform
	}

	// Shopify themes load assets from cdn.shopify.com and expose Shopify.shop
	if d.hasSelector(page, `link[href*="cdn.shopify.com"], script[src*="cdn.shopify.com"]`) ||
		d.hasSelector(page, "#shopify-section-header, [id^='shopify-section']") {
		return cartex.PlatformShopify
	}

	if d.hasSelector(page, "body.woocommerce, body.woocommerce-page, .woocommerce-Price-amount") {
		return cartex.PlatformWooCommerce
	}

	// data-price-type is emitted by Magento's price renderer
	if d.hasSelector(page, "[data-price-type='finalPrice'], .catalog-product-view") {
		return cartex.PlatformMagento
	}

	if d.hasSelector(page, "[data-product-price-without-tax], [data-product-price-with-tax]") {
		return cartex.PlatformBigCommerce
	}

	return cartex.PlatformUnknown
}

// detectFromMetaGenerator checks the meta generator tag for platform identification.
func (d *Detector) detectFromMetaGenerator(page cartex.Page) cartex.Platform {
	generator := ""
	for _, el := range page.FindAll("meta[name='generator']") {
		if content, ok := el.Attr("content"); ok {
			generator = strings.ToLower(content)
		}
	}

	switch {
	case generator == "":
		return cartex.PlatformUnknown
	case strings.Contains(generator, "woocommerce"):
		return cartex.PlatformWooCommerce
	case strings.Contains(generator, "shopify"):
		return cartex.PlatformShopify
	case strings.Contains(generator, "magento"):
		return cartex.PlatformMagento
	case strings.Contains(generator, "bigcommerce"):
		return cartex.PlatformBigCommerce
	}

	return cartex.PlatformUnknown
}

// hasSelector checks if the page contains at least one element matching the selector.
func (d *Detector) hasSelector(page cartex.Page, selector string) bool {
	_, ok := page.Find(selector)
	return ok
}
