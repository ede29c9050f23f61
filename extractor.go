package cartex

import "context"

// Result is the outcome of extracting one product page. It holds no
// reference to the document it came from.
type Result struct {
	Title string `json:"title"`
	Price Price  `json:"price"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

// Extractor turns a parsed page into a Result.
type Extractor interface {
	// Extract never fails because of page content: missing attributes
	// fall back to defaults. It returns EINVALID when the page URL is not
	// an absolute http(s) URL.
	Extract(ctx context.Context, page Page) (*Result, error)
}

// Capturer fetches a URL and extracts it.
type Capturer interface {
	// Capture returns EINVALID for malformed URLs and ETIMEOUT when the
	// deadline passes before the page is fetched. Other fetch failures are
	// returned wrapped.
	Capture(ctx context.Context, rawURL string) (*Result, error)
}
