package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

func fetchResult(url, body string) *models.FetchResult {
	return &models.FetchResult{
		URL:         url,
		Body:        []byte(body),
		StatusCode:  200,
		ContentType: "text/html",
	}
}

func TestAnalyzePageFields(t *testing.T) {
	body := `<html>
<head>
	<title>A Title Long Enough To Pass</title>
	<meta name="description" content="` + strings.Repeat("very descriptive ", 10) + `">
	<meta property="og:title" content="t"><meta property="og:description" content="d">
	<meta property="og:image" content="i.png">
</head>
<body>
	<h1>Heading</h1>
	<p>crawler crawler crawler pipeline pipeline analysis</p>
	<a href="/next">next page</a>
</body></html>`

	page := AnalyzePage(fetchResult("https://example.com/a", body))

	assert.Equal(t, "https://example.com/a", page.URL)
	assert.Equal(t, "A Title Long Enough To Pass", page.Title)
	assert.NotEmpty(t, page.Description)
	assert.Equal(t, []string{"Heading"}, page.Headings["h1"])
	assert.NotEmpty(t, page.Anchors)
	assert.Greater(t, page.WordCount, 0)
	assert.NotEmpty(t, page.ContentHash)
	assert.GreaterOrEqual(t, page.ParseDuration.Nanoseconds(), int64(0))
}

func TestAnalyzePageWarnings(t *testing.T) {
	page := AnalyzePage(fetchResult("https://example.com/bare", `<html><body><p>hello world</p></body></html>`))

	assert.Contains(t, page.Warnings, "missing title tag")
	assert.Contains(t, page.Warnings, "missing description")
	assert.Contains(t, page.Warnings, "missing og:title")
	assert.Contains(t, page.Warnings, "missing og:description")
	assert.Contains(t, page.Warnings, "missing og:image")
	assert.Contains(t, page.Warnings, "missing h1")
}

func TestAnalyzePageTitleLengthWarnings(t *testing.T) {
	short := AnalyzePage(fetchResult("https://example.com/s", `<html><head><title>tiny</title></head><body></body></html>`))
	assert.Contains(t, strings.Join(short.Warnings, "\n"), "title tag is too short")

	long := AnalyzePage(fetchResult("https://example.com/l",
		fmt.Sprintf(`<html><head><title>%s</title></head><body></body></html>`, strings.Repeat("word ", 20))))
	assert.Contains(t, strings.Join(long.Warnings, "\n"), "title tag is too long")
}

func TestAnalyzePageImageAndAnchorWarnings(t *testing.T) {
	body := `<html><body>
		<img src="/no-alt.png">
		<a href="/x">click here</a>
	</body></html>`
	page := AnalyzePage(fetchResult("https://example.com/w", body))

	joined := strings.Join(page.Warnings, "\n")
	assert.Contains(t, joined, "image missing alt attribute")
	assert.Contains(t, joined, "anchor with generic text: click here")
}

func TestContentHashIgnoresWhitespace(t *testing.T) {
	assert.Equal(t, hashContent("hello   world"), hashContent("  hello\nworld "))
	assert.NotEqual(t, hashContent("hello world"), hashContent("goodbye world"))
}

func TestIdenticalTextHashesIdentically(t *testing.T) {
	body := `<html><head><title>Same</title></head><body><p>identical page text here</p></body></html>`
	a := AnalyzePage(fetchResult("https://example.com/one", body))
	b := AnalyzePage(fetchResult("https://example.com/two", body))
	require.NotEmpty(t, a.ContentHash)
	assert.Equal(t, a.ContentHash, b.ContentHash)
}

func TestCountNgrams(t *testing.T) {
	tokens := []string{"fast", "site", "crawler", "fast", "site"}

	bigrams := countNgrams(tokens, 2)
	assert.Equal(t, 2, bigrams["fast site"])
	assert.Equal(t, 1, bigrams["site crawler"])
	assert.Equal(t, 1, bigrams["crawler fast"])

	trigrams := countNgrams(tokens, 3)
	assert.Equal(t, 1, trigrams["fast site crawler"])
	assert.Equal(t, 1, trigrams["site crawler fast"])
	assert.Equal(t, 1, trigrams["crawler fast site"])
}

func TestCountNgramsShortInput(t *testing.T) {
	assert.Empty(t, countNgrams([]string{"only"}, 2))
	assert.Empty(t, countNgrams(nil, 3))
}

func TestTopKeywords(t *testing.T) {
	freq := map[string]int{"alpha": 3, "beta": 5, "gamma": 5, "delta": 1, "epsilon": 2, "zeta": 4}
	keywords := topKeywords(freq, 5)

	require.Len(t, keywords, 5)
	assert.Equal(t, models.Keyword{Term: "beta", Count: 5}, keywords[0])
	assert.Equal(t, models.Keyword{Term: "gamma", Count: 5}, keywords[1])
	assert.Equal(t, models.Keyword{Term: "zeta", Count: 4}, keywords[2])
}
