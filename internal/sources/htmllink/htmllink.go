// Package htmllink parses document links out of HTML listing pages.
// Shared by the listing and paginated source adapters.
package htmllink

import (
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is one anchor found on a listing page.
type Link struct {
	// URL is the absolute link target with any fragment removed.
	URL string

	// Text is the anchor text, whitespace-collapsed.
	Text string
}

// Parse extracts anchors from an HTML page, resolving relative targets
// against base. Anchors without an href, javascript: and mailto:
// pseudo-links, and links pointing off the base host are dropped.
func Parse(base *url.URL, r io.Reader) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var links []Link
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		target, err := base.Parse(href)
		if err != nil {
			return
		}
		target.Fragment = ""
		if target.Host != base.Host {
			return
		}

		links = append(links, Link{
			URL:  target.String(),
			Text: strings.Join(strings.Fields(sel.Text()), " "),
		})
	})
	return links, nil
}

// Extension returns the lowercase path extension of a URL, empty when
// the path has none.
func Extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}

// FileName returns the last path element of a URL.
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}
