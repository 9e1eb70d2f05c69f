package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a static snapshot of the revealed story page.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// NewDocument parses html; pageURL resolves relative resource URLs.
func NewDocument(html, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	return &Document{doc: doc, base: base}, nil
}

// resolve mirrors how the browser exposes a reflected URL attribute.
func (d *Document) resolve(ref string) string {
	if ref == "" || d.base == nil || d.base.Scheme == "" {
		return ref
	}
	u, err := d.base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
