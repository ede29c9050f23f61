package goquery

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/cartex"
	"github.com/shopspring/decimal"
)

// NewJSONLDPriceStrategy reads the offer price of a schema.org Product
// embedded as JSON-LD. Offers may be single, arrays, AggregateOffer or
// nested price specifications.
func NewJSONLDPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("jsonld-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		nodes := jsonLDNodes(page)
		for _, n := range nodes {
			if !hasType(n, "Product", "ProductGroup", "IndividualProduct") {
				continue
			}
			if raw := offerRaw(n["offers"]); !raw.IsZero() {
				return raw, nil
			}
			if raw := scalarRaw(n["price"], stringField(n, "priceCurrency")); !raw.IsZero() {
				return raw, nil
			}
		}
		for _, n := range nodes {
			if hasType(n, "Offer", "AggregateOffer") {
				if raw := offerRaw(n); !raw.IsZero() {
					return raw, nil
				}
			}
		}
		return cartex.Raw{}, nil
	})
}

// NewJSONLDTitleStrategy reads the name of a JSON-LD Product.
func NewJSONLDTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("jsonld-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, n := range jsonLDNodes(page) {
			if hasType(n, "Product", "ProductGroup", "IndividualProduct") {
				if name := stringField(n, "name"); name != "" {
					return cartex.Text(name), nil
				}
			}
		}
		return cartex.Raw{}, nil
	})
}

// NewJSONLDImageStrategy reads the image of a JSON-LD Product.
func NewJSONLDImageStrategy() cartex.Strategy {
	return cartex.NewStrategy("jsonld-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, n := range jsonLDNodes(page) {
			if hasType(n, "Product", "ProductGroup", "IndividualProduct") {
				if img := imageField(n["image"]); img != "" {
					return cartex.Text(img), nil
				}
			}
		}
		return cartex.Raw{}, nil
	})
}

const productScope = `[itemtype*="schema.org/Product"]`

// NewMicrodataPriceStrategy reads itemprop="price" inside a Product scope.
func NewMicrodataPriceStrategy() cartex.Strategy {
	return cartex.NewStrategy("microdata-price", cartex.KindPrice, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		currency := ""
		if el, ok := page.Find(productScope + ` [itemprop="priceCurrency"]`); ok {
			currency, _ = attrValue(el, "content")
			if currency == "" {
				currency = el.Text()
			}
		}
		for _, el := range page.FindAll(productScope + ` [itemprop="price"]`) {
			if isStruck(el) {
				continue
			}
			if v, ok := attrValue(el, "content"); ok {
				return cartex.Text(v).WithCurrency(currency), nil
			}
			if text, ok := priceText(el); ok {
				return cartex.Text(text).WithCurrency(currency), nil
			}
		}
		return cartex.Raw{}, nil
	})
}

// NewMicrodataTitleStrategy reads itemprop="name" inside a Product scope.
func NewMicrodataTitleStrategy() cartex.Strategy {
	return cartex.NewStrategy("microdata-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, el := range page.FindAll(productScope + ` [itemprop="name"]`) {
			if v, ok := attrValue(el, "content"); ok {
				return cartex.Text(v), nil
			}
			if text := el.Text(); text != "" {
				return cartex.Text(text), nil
			}
		}
		return cartex.Raw{}, nil
	})
}

// NewMicrodataImageStrategy reads itemprop="image" anywhere in the page.
func NewMicrodataImageStrategy() cartex.Strategy {
	return cartex.NewStrategy("microdata-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		for _, el := range page.FindAll(`[itemprop="image"]`) {
			if v, ok := imageSource(el); ok {
				return cartex.Text(v), nil
			}
		}
		return cartex.Raw{}, nil
	})
}

// jsonLDNodes decodes every JSON-LD block and flattens arrays and @graph
// containers into a list of objects. Malformed blocks are skipped.
func jsonLDNodes(page cartex.Page) []map[string]any {
	var nodes []map[string]any
	for _, el := range page.FindAll(`script[type="application/ld+json"]`) {
		dec := json.NewDecoder(strings.NewReader(el.Text()))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		collectNodes(v, &nodes)
	}
	return nodes
}

func collectNodes(v any, out *[]map[string]any) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collectNodes(item, out)
		}
	case map[string]any:
		*out = append(*out, t)
		if g, ok := t["@graph"]; ok {
			collectNodes(g, out)
		}
	}
}

func hasType(n map[string]any, types ...string) bool {
	match := func(s string) bool {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "http://schema.org/"), "https://schema.org/")
		for _, t := range types {
			if strings.EqualFold(s, t) {
				return true
			}
		}
		return false
	}
	switch t := n["@type"].(type) {
	case string:
		return match(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && match(s) {
				return true
			}
		}
	}
	return false
}

func stringField(n map[string]any, key string) string {
	s, _ := n[key].(string)
	return strings.TrimSpace(s)
}

// offerRaw extracts a price from an offer value of any supported shape.
func offerRaw(v any) cartex.Raw {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if raw := offerRaw(item); !raw.IsZero() {
				return raw
			}
		}
	case map[string]any:
		currency := stringField(t, "priceCurrency")
		for _, key := range []string{"price", "lowPrice"} {
			if raw := scalarRaw(t[key], currency); !raw.IsZero() {
				return raw
			}
		}
		if raw := offerRaw(t["priceSpecification"]); !raw.IsZero() {
			return raw
		}
		return offerRaw(t["offers"])
	}
	return cartex.Raw{}
}

// scalarRaw converts a JSON scalar into a Raw, keeping numbers numeric.
func scalarRaw(v any, currency string) cartex.Raw {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return cartex.Raw{}
		}
		return cartex.Number(d, currency)
	case string:
		return cartex.Text(t).WithCurrency(currency)
	}
	return cartex.Raw{}
}

// imageField reads a schema.org image value: a URL, an ImageObject, or a
// list of either.
func imageField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := imageField(item); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, key := range []string{"url", "contentUrl"} {
			if s := stringField(t, key); s != "" {
				return s
			}
		}
	}
	return ""
}
