package cartex

// Platform identifies the storefront software that rendered a page.
type Platform string

// Platform constants.
const (
	PlatformUnknown     Platform = ""
	PlatformShopify     Platform = "shopify"
	PlatformWooCommerce Platform = "woocommerce"
	PlatformMagento     Platform = "magento"
	PlatformBigCommerce Platform = "bigcommerce"
)

// PlatformDetector identifies storefront platforms from page markup.
type PlatformDetector interface {
	// Detect returns PlatformUnknown when no platform matches.
	Detect(page Page) Platform
}
