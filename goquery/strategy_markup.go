package goquery

import (
	"context"

	"github.com/fwojciec/cartex"
)

// PriceSelectors lists common price selectors, sale prices first.
var PriceSelectors = []string{
	".sale-price",
	".price--sale",
	".product-price--sale",
	".special-price",
	`[itemprop="price"]`,
	".price",
	".product-price",
	".price__amount",
	".price-value",
	".current-price",
	".price-final",
	".final-price",
}

// PriceContainers lists elements that group list and sale prices.
var PriceContainers = []string{
	".product-price-info",
	".price-box",
	".product-details",
	".product-info-main",
	".product__price",
	".product-pricing",
	".price-container",
}

// saleSelector matches explicitly marked sale prices inside a container.
const saleSelector = `.sale-price, .price--on-sale, .product-price--sale, .special-price, ins`

// NewSelectorPriceStrategy returns the first non-struck price among
// PriceSelectors.
func NewSelectorPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("selector-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstPrice(page, PriceSelectors...), nil
	})
}

// NewContainerPriceStrategy resolves sale versus list prices inside a
// price container: an explicit sale element wins, then any non-struck
// price element, then a struck one, then the container text.
func NewContainerPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("container-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, sel := range PriceContainers {
			for _, container := range page.FindAll(sel) {
				if raw := containerPrice(container); !raw.IsZero() {
					return raw, nil
				}
			}
		}
		return cartex.Raw{}, nil
	})
}

func containerPrice(container cartex.Element) cartex.Raw {
	for _, el := range container.FindAll(saleSelector) {
		if text, ok := priceText(el); ok {
			return cartex.Text(text)
		}
	}
	var struck cartex.Element
	for _, el := range container.FindAll(`[class*="price"]`) {
		if isStruck(el) {
			if struck == nil && digitRe.MatchString(el.Text()) {
				struck = el
			}
			continue
		}
		if text, ok := priceText(el); ok {
			return cartex.Text(text)
		}
	}
	if struck != nil {
		return cartex.Text(struck.Text())
	}
	if text, ok := priceText(container); ok {
		return cartex.Text(text)
	}
	return cartex.Raw{}
}

// NewAttributePriceStrategy reads prices stored in element attributes.
func NewAttributePriceStrategy() cartex.Strategy {
	type source struct{ selector, attr string }
	sources := []source{
		{`[data-price]`, "data-price"},
		{`[data-product-price]`, "data-product-price"},
		{`[data-amount]`, "data-amount"},
		{`[data-price-amount]`, "data-price-amount"},
		{`[itemprop="price"][content]`, "content"},
	}
	return cartex.NewStrategy("attribute-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		currency := metaContent(page, `[itemprop="priceCurrency"]`)
		for _, src := range sources {
			for _, el := range page.FindAll(src.selector) {
				if isStruck(el) {
					continue
				}
				if v, ok := attrValue(el, src.attr); ok && digitRe.MatchString(v) {
					return cartex.Text(v).WithCurrency(currency), nil
				}
			}
		}
		return cartex.Raw{}, nil
	})
}

// NewMetaPriceStrategy reads Open Graph product price tags.
func NewMetaPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("meta-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		amount := metaContent(page, `meta[property="product:price:amount"]`, `meta[property="og:price:amount"]`)
		if amount == "" {
			return cartex.Raw{}, nil
		}
		currency := metaContent(page, `meta[property="product:price:currency"]`, `meta[property="og:price:currency"]`)
		return cartex.Text(amount).WithCurrency(currency), nil
	})
}

// TitleSelectors lists elements that usually hold the product name.
var TitleSelectors = []string{`h1, [itemprop="name"], .product-title`, ".product_title", ".product-name"}

// NewSelectorTitleStrategy returns the first heading-like product name.
func NewSelectorTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("selector-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstText(page, TitleSelectors...), nil
	})
}

// NewOpenGraphTitleStrategy reads og:title.
func NewOpenGraphTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("og-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return cartex.Text(metaContent(page, `meta[property="og:title"]`)), nil
	})
}

// NewTwitterTitleStrategy reads twitter:title.
func NewTwitterTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("twitter-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return cartex.Text(metaContent(page, `meta[name="twitter:title"]`, `meta[property="twitter:title"]`)), nil
	})
}

// NewDocumentTitleStrategy reads the <title> element.
func NewDocumentTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("document-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return firstText(page, "title"), nil
	})
}

// ImageSelectors lists product gallery image selectors.
var ImageSelectors = []string{
	".product-image img",
	".product__media img",
	".product-gallery img",
	".woocommerce-product-gallery__image img",
	"#main-image",
	".main-image img",
}

// NewSelectorImageStrategy returns the first gallery image source.
func NewSelectorImageStrategy() cartex.Strategy {
	return cartex.NewStrategy("selector-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, sel := range ImageSelectors {
			for _, el := range page.FindAll(sel) {
				if v, ok := imageSource(el); ok {
					return cartex.Text(v), nil
				}
			}
		}
		return cartex.Raw{}, nil
	})
}

// NewOpenGraphImageStrategy reads og:image.
func NewOpenGraphImageStrategy() cartex.Strategy {
	return cartex.NewStrategy("og-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return cartex.Text(metaContent(page,
			`meta[property="og:image:secure_url"]`,
			`meta[property="og:image"]`,
		)), nil
	})
}

// NewTwitterImageStrategy reads twitter:image.
func NewTwitterImageStrategy() cartex.Strategy {
	return cartex.NewStrategy("twitter-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		return cartex.Text(metaContent(page, `meta[name="twitter:image"]`, `meta[property="twitter:image"]`)), nil
	})
}

// NewLinkImageStrategy reads <link rel="image_src">.
func NewLinkImageStrategy() cartex.Strategy {
	return cartex.NewStrategy("link-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		if el, ok := page.Find(`link[rel="image_src"]`); ok {
			if v, ok := attrValue(el, "href"); ok {
				return cartex.Text(v), nil
			}
		}
		return cartex.Raw{}, nil
	})
}
