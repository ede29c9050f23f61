package mock

import (
	"net/url"

	"github.com/fwojciec/cartex"
)

// Compile-time interface verification.
var (
	_ cartex.Page    = (*Page)(nil)
	_ cartex.Element = (*Element)(nil)
)

// Page is a mock implementation of cartex.Page.
type Page struct {
	URLFn     func() *url.URL
	FindFn    func(selector string) (cartex.Element, bool)
	FindAllFn func(selector string) []cartex.Element
	TextFn    func() string
	HTMLFn    func() string
}

func (p *Page) URL() *url.URL {
	return p.URLFn()
}

func (p *Page) Find(selector string) (cartex.Element, bool) {
	return p.FindFn(selector)
}

func (p *Page) FindAll(selector string) []cartex.Element {
	return p.FindAllFn(selector)
}

func (p *Page) Text() string {
	return p.TextFn()
}

func (p *Page) HTML() string {
	return p.HTMLFn()
}

// Element is a mock implementation of cartex.Element.
type Element struct {
	AttrFn    func(name string) (string, bool)
	TextFn    func() string
	StyleFn   func(property string) string
	FindFn    func(selector string) (cartex.Element, bool)
	FindAllFn func(selector string) []cartex.Element
	ClosestFn func(selector string) (cartex.Element, bool)
}

func (e *Element) Attr(name string) (string, bool) {
	return e.AttrFn(name)
}

func (e *Element) Text() string {
	return e.TextFn()
}

func (e *Element) Style(property string) string {
	return e.StyleFn(property)
}

func (e *Element) Find(selector string) (cartex.Element, bool) {
	return e.FindFn(selector)
}

func (e *Element) FindAll(selector string) []cartex.Element {
	return e.FindAllFn(selector)
}

func (e *Element) Closest(selector string) (cartex.Element, bool) {
	return e.ClosestFn(selector)
}
