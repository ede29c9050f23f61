package cartex

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Title length bounds.
const (
	DefaultTitleMaxLength = 100
	MaxTitleMaxLength     = 200
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	groupRes     = []*regexp.Regexp{
		regexp.MustCompile(`\([^()]*\)`),
		regexp.MustCompile(`\[[^\[\]]*\]`),
		regexp.MustCompile(`\{[^{}]*\}`),
	}
	groupMarkRe    = regexp.MustCompile(`[()\[\]{}]`)
	boilerplateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^amazon(\.[a-z]{2,3}){1,2}\s*:\s*`),
		regexp.MustCompile(`(?i)\bvisit the .{1,60}? store\b`),
		regexp.MustCompile(`(?i)\s+[-|:–]\s*(walmart\.com|walmart|target|amazon(\.[a-z.]+)?|ebay|best buy|bestbuy|etsy|newegg(\.com)?)\s*$`),
		regexp.MustCompile(`(?i)\b(refurbished|renewed|pre-owned|open box)\b`),
	}
)

const titleSeparators = " -|:,;·•–—/"

// CleanTitle normalizes a raw product title: whitespace is collapsed,
// bracketed asides and retailer boilerplate are removed, and the result is
// truncated to max runes. CleanTitle(CleanTitle(s)) == CleanTitle(s).
// A max outside [DefaultTitleMaxLength, MaxTitleMaxLength] is clamped.
//
// When stripping asides leaves nothing, the bracket contents are kept.
// When cleanup leaves nothing at all, the whitespace-collapsed input is
// returned, truncated. An empty return means the input had no text.
func CleanTitle(raw string, max int) string {
	max = clampTitleLength(max)
	raw = norm.NFKC.String(raw)
	if s := clean(raw, max); s != "" {
		return s
	}
	s := strings.TrimSpace(truncateRunes(strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " ")), max))
	if c := clean(s, max); c != "" {
		return c
	}
	return s
}

func clean(s string, max int) string {
	if c := fixedPoint(s, max, true); c != "" {
		return c
	}
	return fixedPoint(s, max, false)
}

// HostnameTitle is the title reported when a page yields none.
func HostnameTitle(u *url.URL, max int) string {
	host := ""
	if u != nil {
		host = strings.TrimPrefix(u.Hostname(), "www.")
	}
	return truncateRunes("Product from "+host, clampTitleLength(max))
}

func clampTitleLength(max int) int {
	switch {
	case max <= 0:
		return DefaultTitleMaxLength
	case max < DefaultTitleMaxLength:
		return DefaultTitleMaxLength
	case max > MaxTitleMaxLength:
		return MaxTitleMaxLength
	}
	return max
}

func fixedPoint(s string, max int, stripGroups bool) string {
	for range 16 {
		next := cleanOnce(s, max, stripGroups)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanOnce(s string, max int, stripGroups bool) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	for _, re := range groupRes {
		if stripGroups {
			s = re.ReplaceAllString(s, " ")
		} else {
			s = re.ReplaceAllStringFunc(s, func(m string) string { return " " + m[1:len(m)-1] + " " })
		}
	}
	if !stripGroups {
		s = groupMarkRe.ReplaceAllString(s, " ")
	}
	for _, re := range boilerplateRes {
		s = re.ReplaceAllString(s, " ")
	}
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.Trim(s, titleSeparators)
	s = truncateRunes(s, max)
	return strings.Trim(s, titleSeparators)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
