package cartex

import "net/url"

// Page is a read-only view of a parsed product document.
// Strategies query the page concurrently, so implementations must be safe
// for concurrent reads.
type Page interface {
	// URL returns the absolute address the document was loaded from.
	URL() *url.URL

	// Find returns the first element matching the CSS selector.
	Find(selector string) (Element, bool)

	// FindAll returns every element matching the CSS selector in document order.
	FindAll(selector string) []Element

	// Text returns the visible text of the document body with whitespace
	// collapsed. Script and style contents are excluded.
	Text() string

	// HTML returns the serialized document.
	HTML() string
}

// Element is a single node of a Page.
type Element interface {
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)

	// Text returns the element's text with whitespace collapsed.
	Text() string

	// Style returns the effective value of an inline style property.
	// For "text-decoration" it also reports "line-through" for elements
	// inside <s>, <del> or <strike>.
	Style(property string) string

	// Find returns the first descendant matching the CSS selector.
	Find(selector string) (Element, bool)

	// FindAll returns every descendant matching the CSS selector.
	FindAll(selector string) []Element

	// Closest returns the element itself or its nearest ancestor matching
	// the CSS selector.
	Closest(selector string) (Element, bool)
}
