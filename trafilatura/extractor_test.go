package trafilatura_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/goquery"
	"github.com/fwojciec/cartex/mock"
	"github.com/fwojciec/cartex/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<!DOCTYPE html>
<html>
<head>
<title>Brass Desk Lamp | Lamp Shop</title>
<meta property="og:title" content="Brass Desk Lamp">
<meta property="og:image" content="https://cdn.example.com/lamp.jpg">
</head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Brass Desk Lamp</h1>
<p>A solid brass lamp with a weighted base and an adjustable arm for reading.</p>
<p>Ships in two business days.</p>
</article>
</body>
</html>`

func TestMetadataStrategies(t *testing.T) {
	t.Parallel()

	t.Run("reads title and image from metadata", func(t *testing.T) {
		t.Parallel()

		page, err := goquery.NewPage(productHTML, "https://lamps.example.com/p/brass")
		require.NoError(t, err)
		r := trafilatura.NewMetadataReader()

		title, err := trafilatura.NewTitleStrategy(r).Extract(context.Background(), page)
		require.NoError(t, err)
		image, err := trafilatura.NewImageStrategy(r).Extract(context.Background(), page)
		require.NoError(t, err)

		assert.Contains(t, title.String(), "Brass Desk Lamp")
		assert.Equal(t, "https://cdn.example.com/lamp.jpg", image.String())
	})

	t.Run("parses each page once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		page := &mock.Page{
			HTMLFn: func() string {
				calls++
				return productHTML
			},
			URLFn: func() *url.URL { return nil },
		}
		r := trafilatura.NewMetadataReader()

		_, _ = r.Read(page)
		_, _ = r.Read(page)

		assert.Equal(t, 1, calls)
	})

	t.Run("returns nothing for empty documents", func(t *testing.T) {
		t.Parallel()

		page := &mock.Page{
			HTMLFn: func() string { return "" },
			URLFn:  func() *url.URL { return nil },
		}

		raw, err := trafilatura.NewTitleStrategy(trafilatura.NewMetadataReader()).Extract(context.Background(), page)

		require.NoError(t, err)
		assert.True(t, raw.IsZero())
	})

	t.Run("strategies have expected identity", func(t *testing.T) {
		t.Parallel()

		r := trafilatura.NewMetadataReader()

		assert.Equal(t, "metadata-title", trafilatura.NewTitleStrategy(r).Name())
		assert.Equal(t, cartex.KindTitle, trafilatura.NewTitleStrategy(r).Kind())
		assert.Equal(t, "metadata-image", trafilatura.NewImageStrategy(r).Name())
		assert.Equal(t, cartex.KindImage, trafilatura.NewImageStrategy(r).Kind())
	})
}
