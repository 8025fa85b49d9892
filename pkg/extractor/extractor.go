// Package extractor locates SEO-relevant tags and text in raw HTML.
package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// PageContent holds everything pulled out of one HTML document.
type PageContent struct {
	Title       string
	Description string
	Canonical   string
	Headings    map[string][]string
	OGTags      map[string]string
	Anchors     []models.Anchor
	Images      []models.Image
	Text        string
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Extract parses body and returns the page's tags, links, images and text.
// Anchor and image URLs are resolved against pageURL. A parse failure
// returns the error alongside whatever was recovered.
func Extract(body []byte, pageURL string) (*PageContent, error) {
	content := &PageContent{
		Headings: make(map[string][]string),
		OGTags:   make(map[string]string),
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return content, err
	}

	base, _ := url.Parse(pageURL)
	var foundTitle bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "title":
				if !foundTitle && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					content.Title = strings.TrimSpace(n.FirstChild.Data)
					foundTitle = true
				}
			case n.Data == "meta":
				extractMeta(n, content)
			case n.Data == "link":
				if attr(n, "rel") == "canonical" {
					content.Canonical = attr(n, "href")
				}
			case n.Data == "a":
				if href := attr(n, "href"); href != "" {
					content.Anchors = append(content.Anchors, models.Anchor{
						Href: resolveRef(base, href),
						Text: strings.ToLower(strings.TrimSpace(nodeText(n))),
					})
				}
			case n.Data == "img":
				src := attr(n, "src")
				if src == "" {
					src = attr(n, "data-src")
				}
				if src != "" {
					content.Images = append(content.Images, models.Image{
						Src: resolveRef(base, src),
						Alt: attr(n, "alt"),
					})
				}
			case headingTags[n.Data]:
				content.Headings[n.Data] = append(content.Headings[n.Data], strings.TrimSpace(nodeText(n)))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	content.Text = extractText(body, doc)
	return content, nil
}

func extractMeta(n *html.Node, content *PageContent) {
	name := strings.ToLower(attr(n, "name"))
	property := strings.ToLower(attr(n, "property"))
	value := strings.TrimSpace(attr(n, "content"))

	switch {
	case name == "description" && value != "":
		content.Description = value
	case strings.HasPrefix(property, "og:") && value != "":
		content.OGTags[property] = value
	}
}

// extractText prefers trafilatura main-content extraction and falls back to
// a plain text-node walk when nothing usable comes back.
func extractText(body []byte, doc *html.Node) string {
	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{})
	if err == nil && result != nil && strings.TrimSpace(result.ContentText) != "" {
		return result.ContentText
	}
	return textWalk(doc)
}

func textWalk(doc *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

func resolveRef(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	refURL, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(refURL).String()
}
