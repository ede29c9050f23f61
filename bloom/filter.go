// Package bloom deduplicates product URLs using Bloom filters.
package bloom

import (
	"net/url"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter remembers product URLs already handled in a batch.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a product URL.
func (f *Filter) Add(rawURL string) {
	f.f.AddString(Key(rawURL))
}

// Test returns true if the product URL might have been recorded.
// False positives are possible; false negatives are not.
func (f *Filter) Test(rawURL string) bool {
	return f.f.TestString(Key(rawURL))
}

// Seen records the product URL and reports whether it might have been
// recorded before.
func (f *Filter) Seen(rawURL string) bool {
	return f.f.TestAndAddString(Key(rawURL))
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Key returns the form of a product URL used for deduplication: the host
// is lowercased and the fragment and utm_* tracking parameters are dropped.
// Unparseable input is used as is.
func Key(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return rawURL
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	q := u.Query()
	for name := range q {
		if strings.HasPrefix(strings.ToLower(name), "utm_") {
			q.Del(name)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
