// Package imageurl validates and resolves product image URLs.
package imageurl

import (
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/fwojciec/cartex"
)

// Rules configures which image URLs are acceptable.
type Rules struct {
	Name string

	// Substrings reject a URL whose host, path or query contains any of them.
	Substrings []string

	// Tokens reject a URL when a path segment word equals one of them.
	// Short words such as "ad" go here to avoid matching inside other words.
	Tokens []string

	// Extensions lists accepted image formats without the leading dot.
	Extensions []string
}

// DefaultRules is the rule set used unless configured otherwise.
var DefaultRules = Rules{
	Name: "default",
	Substrings: []string{
		"placeholder", "no-image", "noimage", "no_image", "default-image",
		"spacer", "blank.gif", "loading", "logo", "avatar", "banner",
		"sprite", "favicon",
	},
	Tokens:     []string{"icon", "icons", "ad", "ads", "social", "pixel", "badge"},
	Extensions: []string{"jpg", "jpeg", "png", "webp", "gif", "avif"},
}

// AlternateRules excludes a narrower keyword set than DefaultRules, matches
// "icon" anywhere and accepts SVG.
// TODO(product): reconcile with DefaultRules once the owner picks one set.
var AlternateRules = Rules{
	Name:       "alternate",
	Substrings: []string{"placeholder", "logo", "icon", "avatar", "banner", "social", "default"},
	Tokens:     []string{"ad"},
	Extensions: []string{"jpg", "jpeg", "png", "webp", "gif", "svg"},
}

// RulesByName returns DefaultRules or AlternateRules by name.
func RulesByName(name string) (Rules, error) {
	switch name {
	case "", DefaultRules.Name:
		return DefaultRules, nil
	case AlternateRules.Name:
		return AlternateRules, nil
	}
	return Rules{}, cartex.Errorf(cartex.EINVALID, "unknown image rule set %q", name)
}

// Validator decides whether a URL plausibly points at a product image.
type Validator struct {
	Rules Rules
}

// NewValidator returns a Validator using rules.
func NewValidator(rules Rules) *Validator {
	return &Validator{Rules: rules}
}

// Acceptable reports whether raw is an absolute http(s) or inline image URL
// with a recognized format that matches no excluded keyword.
func (v *Validator) Acceptable(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	if strings.HasPrefix(strings.ToLower(raw), "data:") {
		return v.acceptableData(raw)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	target := strings.ToLower(u.Host + u.Path + "?" + u.RawQuery)
	for _, s := range v.Rules.Substrings {
		if strings.Contains(target, s) {
			return false
		}
	}
	words := strings.FieldsFunc(strings.ToLower(u.Path), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, w := range words {
		if slices.Contains(v.Rules.Tokens, w) {
			return false
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if slices.Contains(v.Rules.Extensions, ext) {
		return true
	}
	q := u.Query()
	for _, key := range []string{"format", "fm", "ext"} {
		if slices.Contains(v.Rules.Extensions, strings.ToLower(q.Get(key))) {
			return true
		}
	}
	return false
}

func (v *Validator) acceptableData(raw string) bool {
	mime, _, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return false
	}
	mime, _, _ = strings.Cut(strings.ToLower(mime), ";")
	subtype, ok := strings.CutPrefix(mime, "image/")
	if !ok {
		return false
	}
	subtype = strings.TrimSuffix(subtype, "+xml")
	return slices.Contains(v.Rules.Extensions, subtype)
}

// MakeAbsolute resolves protocol-relative, root-relative and path-relative
// references against base. Data URLs are returned unchanged.
func MakeAbsolute(raw string, base *url.URL) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", cartex.Errorf(cartex.EINVALID, "empty image URL")
	}
	if strings.HasPrefix(strings.ToLower(raw), "data:") {
		return raw, nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", cartex.Errorf(cartex.EINVALID, "invalid image URL %q", raw)
	}
	if base == nil {
		if !ref.IsAbs() {
			return "", cartex.Errorf(cartex.EINVALID, "relative image URL %q without base", raw)
		}
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}
