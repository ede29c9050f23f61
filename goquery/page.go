// Package goquery implements cartex.Page on top of goquery and provides the
// built-in extraction strategies and strategy registry.
package goquery

import (
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/cartex"
	"golang.org/x/net/html"
)

// Compile-time interface verification.
var (
	_ cartex.Page    = (*Page)(nil)
	_ cartex.Element = (*element)(nil)
)

// Page is a parsed HTML document. It is safe for concurrent reads.
type Page struct {
	doc *goquery.Document
	url *url.URL

	textOnce sync.Once
	text     string

	htmlOnce sync.Once
	html     string
}

// NewPage parses rawHTML loaded from rawURL.
func NewPage(rawHTML string, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, cartex.Errorf(cartex.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, cartex.Errorf(cartex.EINVALID, "failed to parse HTML: %v", err)
	}
	return NewPageFromDocument(doc, u), nil
}

// Parse parses html fetched from u. It matches extract.ParseFunc.
func Parse(html string, u *url.URL) (cartex.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, cartex.Errorf(cartex.EINVALID, "failed to parse HTML: %v", err)
	}
	return NewPageFromDocument(doc, u), nil
}

// NewPageFromDocument wraps an already parsed document.
func NewPageFromDocument(doc *goquery.Document, u *url.URL) *Page {
	return &Page{doc: doc, url: u}
}

// URL returns the document address.
func (p *Page) URL() *url.URL {
	return p.url
}

// Find returns the first element matching selector.
func (p *Page) Find(selector string) (cartex.Element, bool) {
	return first(p.doc.Selection, selector)
}

// FindAll returns all elements matching selector.
func (p *Page) FindAll(selector string) []cartex.Element {
	return all(p.doc.Selection, selector)
}

// Text returns the visible body text. Computed once.
func (p *Page) Text() string {
	p.textOnce.Do(func() {
		var b strings.Builder
		for _, n := range p.doc.Find("body").Nodes {
			visibleText(&b, n)
		}
		p.text = collapse(b.String())
	})
	return p.text
}

// HTML returns the serialized document. Computed once.
func (p *Page) HTML() string {
	p.htmlOnce.Do(func() {
		p.html, _ = goquery.OuterHtml(p.doc.Selection)
	})
	return p.html
}

// element adapts a single-node goquery selection.
type element struct {
	sel *goquery.Selection
}

func (e *element) Attr(name string) (string, bool) {
	v, ok := e.sel.Attr(name)
	return strings.TrimSpace(v), ok
}

func (e *element) Text() string {
	return collapse(e.sel.Text())
}

func (e *element) Find(selector string) (cartex.Element, bool) {
	return first(e.sel, selector)
}

func (e *element) FindAll(selector string) []cartex.Element {
	return all(e.sel, selector)
}

func (e *element) Closest(selector string) (cartex.Element, bool) {
	c := e.sel.Closest(selector)
	if c.Length() == 0 {
		return nil, false
	}
	return &element{sel: c.First()}, true
}

// Style reads inline style declarations. Text decoration is resolved
// through ancestors since a line-through on a wrapper strikes its content.
func (e *element) Style(property string) string {
	property = strings.ToLower(property)
	if property != "text-decoration" && property != "text-decoration-line" {
		return inlineStyle(e.sel, property)
	}
	for s := e.sel; s.Length() > 0; s = s.Parent() {
		switch goquery.NodeName(s) {
		case "s", "del", "strike":
			return "line-through"
		}
		for _, prop := range []string{"text-decoration", "text-decoration-line"} {
			if v := inlineStyle(s, prop); strings.Contains(v, "line-through") {
				return v
			}
		}
	}
	return inlineStyle(e.sel, property)
}

func inlineStyle(sel *goquery.Selection, property string) string {
	style, ok := sel.Attr("style")
	if !ok {
		return ""
	}
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), property) {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func first(sel *goquery.Selection, selector string) (cartex.Element, bool) {
	found := sel.Find(selector)
	if found.Length() == 0 {
		return nil, false
	}
	return &element{sel: found.First()}, true
}

func all(sel *goquery.Selection, selector string) []cartex.Element {
	found := sel.Find(selector)
	elements := make([]cartex.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &element{sel: s})
	})
	return elements
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "section": true, "table": true, "td": true,
	"th": true, "tr": true, "ul": true,
}

// visibleText writes the text of n, skipping non-rendered elements.
// Block elements are separated by a space; inline runs are joined.
func visibleText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template", "svg":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(b, c)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteByte(' ')
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
