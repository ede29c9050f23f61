package goquery

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/cartex"
)

// struckSelector matches markup used for crossed-out "was" prices.
const struckSelector = `s, del, strike, .was, .was-price, .price-was, .old-price, .price-old, ` +
	`.price--compare, .compare-at-price, .compare-price, .price-compare, .original-price, ` +
	`.regular-price, .price--regular, .list-price, .price-list, .strike, .strikethrough, .crossed, .a-text-price`

var digitRe = regexp.MustCompile(`\d`)

// isStruck reports whether el is presented as a superseded price.
func isStruck(el cartex.Element) bool {
	if strings.Contains(el.Style("text-decoration"), "line-through") {
		return true
	}
	_, ok := el.Closest(struckSelector)
	return ok
}

// priceText returns the price text of el, preferring a non-struck
// descendant when el mixes list and sale prices.
func priceText(el cartex.Element) (string, bool) {
	if isStruck(el) {
		return "", false
	}
	if len(el.FindAll(struckSelector)) == 0 {
		text := el.Text()
		return text, digitRe.MatchString(text)
	}
	for _, d := range el.FindAll("*") {
		if isStruck(d) || len(d.FindAll(struckSelector)) > 0 {
			continue
		}
		if text := d.Text(); digitRe.MatchString(text) {
			return text, true
		}
	}
	return "", false
}

// attrValue returns the first non-empty attribute among names.
func attrValue(el cartex.Element, names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := el.Attr(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// metaContent returns the content of the first matching meta tag.
func metaContent(page cartex.Page, selectors ...string) string {
	for _, sel := range selectors {
		if el, ok := page.Find(sel); ok {
			if v, ok := el.Attr("content"); ok && v != "" {
				return v
			}
		}
	}
	return ""
}

// onHosts gates fn to pages whose host matches one of patterns.
func onHosts(patterns []string, fn cartex.ExtractFunc) cartex.ExtractFunc {
	profile := &cartex.SiteProfile{Name: "gate", Hosts: patterns}
	return func(ctx context.Context, page cartex.Page) (cartex.Raw, error) {
		if page.URL() == nil || !profile.Matches(page.URL().Host) {
			return cartex.Raw{}, nil
		}
		return fn(ctx, page)
	}
}

// firstPrice returns the first non-struck price among selectors, in
// selector order.
func firstPrice(page cartex.Page, selectors ...string) cartex.Raw {
	for _, sel := range selectors {
		for _, el := range page.FindAll(sel) {
			if text, ok := priceText(el); ok {
				return cartex.Text(text)
			}
		}
	}
	return cartex.Raw{}
}

// firstText returns the text of the first non-empty match among selectors.
func firstText(page cartex.Page, selectors ...string) cartex.Raw {
	for _, sel := range selectors {
		for _, el := range page.FindAll(sel) {
			if text := el.Text(); text != "" {
				return cartex.Text(text)
			}
		}
	}
	return cartex.Raw{}
}

// imageSource picks the highest resolution source of an image element.
func imageSource(el cartex.Element) (string, bool) {
	if v, ok := attrValue(el, "data-old-hires", "data-zoom-image", "data-large_image", "data-src"); ok {
		return v, true
	}
	if srcset, ok := el.Attr("srcset"); ok {
		if v := largestSrcset(srcset); v != "" {
			return v, true
		}
	}
	return attrValue(el, "src", "content", "href")
}

// largestSrcset returns the widest candidate of a srcset attribute.
func largestSrcset(srcset string) string {
	best, bestWidth := "", -1.0
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		width := 0.0
		if len(fields) > 1 {
			width = descriptorWidth(fields[1])
		}
		if width > bestWidth {
			best, bestWidth = fields[0], width
		}
	}
	return best
}

func descriptorWidth(d string) float64 {
	if d == "" {
		return 0
	}
	n, err := strconv.ParseFloat(d[:len(d)-1], 64)
	if err != nil {
		return 0
	}
	if d[len(d)-1] == 'x' {
		return n * 1000
	}
	return n
}
