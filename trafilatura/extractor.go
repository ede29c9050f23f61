// Package trafilatura provides metadata strategies backed by go-trafilatura.
package trafilatura

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/cartex"
	"github.com/markusmobius/go-trafilatura"
)

// MetadataReader extracts document metadata with go-trafilatura.
// The last page read is cached so the title and image strategies of one
// extraction share a single parse.
type MetadataReader struct {
	mu   sync.Mutex
	page cartex.Page
	meta trafilatura.Metadata
	ok   bool
}

// NewMetadataReader creates a new MetadataReader.
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Read returns the metadata of page.
// Returns false if the document could not be processed.
func (r *MetadataReader) Read(page cartex.Page) (trafilatura.Metadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.page != nil && r.page == page {
		return r.meta, r.ok
	}

	r.page = page
	r.meta, r.ok = trafilatura.Metadata{}, false

	rawHTML := page.HTML()
	if rawHTML == "" {
		return r.meta, false
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u := page.URL(); u != nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result == nil {
		return r.meta, false
	}
	r.meta, r.ok = result.Metadata, true
	return r.meta, true
}

// NewTitleStrategy returns the metadata-title strategy.
func NewTitleStrategy(r *MetadataReader) cartex.Strategy {
	return cartex.NewStrategy("metadata-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		meta, ok := r.Read(page)
		if !ok {
			return cartex.Raw{}, nil
		}
		return cartex.Text(meta.Title), nil
	})
}

// NewImageStrategy returns the metadata-image strategy.
func NewImageStrategy(r *MetadataReader) cartex.Strategy {
	return cartex.NewStrategy("metadata-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		meta, ok := r.Read(page)
		if !ok {
			return cartex.Raw{}, nil
		}
		return cartex.Text(meta.Image), nil
	})
}
