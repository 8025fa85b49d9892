// Package analyzer turns fetched documents into page records and aggregates
// them into a site-level report.
package analyzer

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/extractor"
	"github.com/amosWeiskopf/seosmith/pkg/utils"
)

const (
	minTitleLen        = 10
	maxTitleLen        = 70
	minDescriptionLen  = 140
	maxDescriptionLen  = 255
	topKeywordsPerPage = 5
)

var genericAnchorText = map[string]bool{
	"click here": true,
	"page":       true,
	"article":    true,
}

// AnalyzePage extracts SEO signals from a fetched document. It always
// produces a record; malformed HTML degrades to best-effort fields plus a
// warning rather than an error.
func AnalyzePage(fr *models.FetchResult) *models.PageRecord {
	start := time.Now()

	page := &models.PageRecord{
		URL:      fr.URL,
		Warnings: []string{},
	}

	content, err := extractor.Extract(fr.Body, fr.URL)
	if err != nil {
		page.Warnings = append(page.Warnings, fmt.Sprintf("malformed html: %v", err))
	}

	page.Title = content.Title
	page.Description = content.Description
	page.Headings = content.Headings
	page.OGTags = content.OGTags
	page.Anchors = content.Anchors
	page.Images = content.Images

	tokens := utils.Tokenize(content.Text)
	page.WordCount = len(tokens)
	page.WordFreq = countTokens(utils.FilterStopWords(tokens))
	page.Ngrams = models.NgramCounts{
		Bigrams:  countNgrams(tokens, 2),
		Trigrams: countNgrams(tokens, 3),
	}
	page.Keywords = topKeywords(page.WordFreq, topKeywordsPerPage)
	page.ContentHash = hashContent(content.Text)
	page.Warnings = append(page.Warnings, collectWarnings(content)...)
	page.FetchDuration = fr.FetchDuration
	page.ParseDuration = time.Since(start)
	return page
}

// hashContent hashes whitespace-normalized extracted text. Pages rendering
// identical text hash identically regardless of markup differences. Not a
// security primitive.
func hashContent(text string) string {
	sum := sha1.Sum([]byte(utils.CleanText(text)))
	return hex.EncodeToString(sum[:])
}

func countTokens(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

// countNgrams slides a fixed-size window over the token sequence and counts
// each joined n-gram.
func countNgrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

func topKeywords(freq map[string]int, limit int) []models.Keyword {
	keywords := make([]models.Keyword, 0, len(freq))
	for term, count := range freq {
		keywords = append(keywords, models.Keyword{Term: term, Count: count})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Term < keywords[j].Term
	})
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

func collectWarnings(content *extractor.PageContent) []string {
	var warnings []string

	switch {
	case content.Title == "":
		warnings = append(warnings, "missing title tag")
	case len(content.Title) < minTitleLen:
		warnings = append(warnings, fmt.Sprintf("title tag is too short (less than %d characters): %s", minTitleLen, content.Title))
	case len(content.Title) > maxTitleLen:
		warnings = append(warnings, fmt.Sprintf("title tag is too long (more than %d characters): %s", maxTitleLen, content.Title))
	}

	switch {
	case content.Description == "":
		warnings = append(warnings, "missing description")
	case len(content.Description) < minDescriptionLen:
		warnings = append(warnings, fmt.Sprintf("description is too short (less than %d characters): %s", minDescriptionLen, content.Description))
	case len(content.Description) > maxDescriptionLen:
		warnings = append(warnings, fmt.Sprintf("description is too long (more than %d characters): %s", maxDescriptionLen, content.Description))
	}

	for _, og := range []string{"og:title", "og:description", "og:image"} {
		if content.OGTags[og] == "" {
			warnings = append(warnings, "missing "+og)
		}
	}

	if len(content.Headings["h1"]) == 0 {
		warnings = append(warnings, "missing h1")
	}

	for _, img := range content.Images {
		if img.Alt == "" {
			warnings = append(warnings, "image missing alt attribute: "+img.Src)
		}
	}
	for _, a := range content.Anchors {
		if genericAnchorText[a.Text] {
			warnings = append(warnings, "anchor with generic text: "+a.Text)
		}
	}
	return warnings
}
