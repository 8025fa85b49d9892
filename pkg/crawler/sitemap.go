package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

type sitemapURLSet struct {
	Locations []string `xml:"url>loc"`
}

// fetchSitemap retrieves a sitemap and returns its URL entries. Supported
// formats are XML urlset documents and newline-delimited plain text;
// unknown extensions try XML first and fall back to lines.
func (c *Crawler) fetchSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	result, fetchErr := c.fetcher.Fetch(ctx, models.CrawlTask{URL: sitemapURL})
	if fetchErr != nil {
		return nil, fmt.Errorf("sitemap fetch: %s", fetchErr.Message)
	}
	if result == nil {
		return nil, ctx.Err()
	}

	switch {
	case strings.HasSuffix(sitemapURL, ".xml"):
		return parseXMLSitemap(result.Body)
	case strings.HasSuffix(sitemapURL, ".txt"):
		return parseTextSitemap(result.Body), nil
	default:
		if urls, err := parseXMLSitemap(result.Body); err == nil && len(urls) > 0 {
			return urls, nil
		}
		return parseTextSitemap(result.Body), nil
	}
}

func parseXMLSitemap(body []byte) ([]string, error) {
	var urlset sitemapURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, fmt.Errorf("sitemap xml parse: %w", err)
	}
	urls := make([]string, 0, len(urlset.Locations))
	for _, loc := range urlset.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

func parseTextSitemap(body []byte) []string {
	var urls []string
	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}
