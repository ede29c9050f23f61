package cartex_test

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/cartex"
	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	t.Run("collapses whitespace", func(t *testing.T) {
		t.Parallel()

		got := cartex.CleanTitle("  Wireless \n\t Mouse  ", 0)
		assert.Equal(t, "Wireless Mouse", got)
	})

	t.Run("removes bracketed asides", func(t *testing.T) {
		t.Parallel()

		got := cartex.CleanTitle("Running Shoe (Men's) [2024 Model] {Blue}", 0)
		assert.Equal(t, "Running Shoe", got)
	})

	t.Run("removes retailer boilerplate", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Echo Dot", cartex.CleanTitle("Amazon.com: Echo Dot", 0))
		assert.Equal(t, "Stand Mixer", cartex.CleanTitle("Stand Mixer - Walmart.com", 0))
		assert.Equal(t, "Desk Lamp", cartex.CleanTitle("Desk Lamp | Target", 0))
		assert.Equal(t, "iPhone 13", cartex.CleanTitle("iPhone 13 Renewed", 0))
		assert.Equal(t, "Blender", cartex.CleanTitle("Visit the Ninja Store Blender", 0))
	})

	t.Run("truncates to max runes", func(t *testing.T) {
		t.Parallel()

		got := cartex.CleanTitle(strings.Repeat("é", 150), 100)
		assert.Equal(t, 100, utf8.RuneCountInString(got))
	})

	t.Run("keeps bracket contents when nothing else remains", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Gift Card", cartex.CleanTitle("(Gift Card)", 0))
	})

	t.Run("keeps the raw title when cleanup removes everything", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Refurbished", cartex.CleanTitle("Refurbished", 100))
		assert.Equal(t, "Visit the Apple Store", cartex.CleanTitle("  Visit the\n Apple   Store ", 100))
	})

	t.Run("returns empty for blank input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, cartex.CleanTitle(" \n ", 0))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			"Amazon.com : Kindle (8GB) - Black | Amazon",
			"  Chair  -  ",
			"[" + strings.Repeat("x", 250) + "]",
			strings.Repeat("word ", 40) + "(tail)",
			"Sofa ( Grey",
			"Refurbished (Renewed)",
			"Visit the Apple Store",
			strings.Repeat("renewed ", 30),
			"ＦＵＬＬＷＩＤＴＨ Title",
		}
		for _, in := range inputs {
			once := cartex.CleanTitle(in, 100)
			assert.Equal(t, once, cartex.CleanTitle(once, 100), "input %q", in)
			assert.LessOrEqual(t, utf8.RuneCountInString(once), 100)
		}
	})
}

func TestHostnameTitle(t *testing.T) {
	t.Parallel()

	u, _ := url.Parse("https://www.shop.example.com/p/1")
	assert.Equal(t, "Product from shop.example.com", cartex.HostnameTitle(u, 0))
}
