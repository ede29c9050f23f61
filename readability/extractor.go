// Package readability provides last-resort title and image strategies
// backed by go-readability's article extraction.
package readability

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/cartex"
	"github.com/go-shiori/go-readability"
)

// ArticleReader runs readability over a page, remembering the last page so
// the title and image strategies parse it once.
type ArticleReader struct {
	mu      sync.Mutex
	page    cartex.Page
	article readability.Article
	err     error
}

// NewArticleReader creates a new ArticleReader.
func NewArticleReader() *ArticleReader {
	return &ArticleReader{}
}

// Read returns the article readability finds in page.
func (r *ArticleReader) Read(page cartex.Page) (readability.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.page == nil || r.page != page {
		r.page = page
		r.article, r.err = parse(page)
	}
	return r.article, r.err
}

func parse(page cartex.Page) (readability.Article, error) {
	rawHTML := page.HTML()
	if rawHTML == "" {
		return readability.Article{}, cartex.Errorf(cartex.EINVALID, "empty HTML input")
	}
	return readability.FromReader(strings.NewReader(rawHTML), page.URL())
}

// NewTitleStrategy returns the article-title strategy.
func NewTitleStrategy(r *ArticleReader) cartex.Strategy {
	return cartex.NewStrategy("article-title", cartex.KindTitle, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		article, err := r.Read(page)
		if err != nil {
			return cartex.Raw{}, err
		}
		return cartex.Text(article.Title), nil
	})
}

// NewImageStrategy returns the article-image strategy.
func NewImageStrategy(r *ArticleReader) cartex.Strategy {
	return cartex.NewStrategy("article-image", cartex.KindImage, func(_ context.Context, page cartex.Page) (cartex.Raw, error) {
		article, err := r.Read(page)
		if err != nil {
			return cartex.Raw{}, err
		}
		return cartex.Text(article.Image), nil
	})
}
