package models

import "time"

// CrawlTask is a single unit of work for the fetch pool. Tasks are created
// by the controller (seeds) or by the analyze pool (discovered links) and
// consumed exactly once.
type CrawlTask struct {
	URL    string
	Depth  int
	Parent string
}

// FetchResult carries a fetched HTML document from the fetch pool to the
// analyze pool. It is consumed by exactly one analyze worker.
type FetchResult struct {
	URL           string
	Depth         int
	StatusCode    int
	Body          []byte
	ContentType   string
	FetchDuration time.Duration
}

// Anchor is a hyperlink extracted from a page.
type Anchor struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Image is an <img> reference extracted from a page.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Keyword is a term (word, bigram or trigram) with its occurrence count.
type Keyword struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// NgramCounts holds per-page sliding-window n-gram counts.
type NgramCounts struct {
	Bigrams  map[string]int `json:"bigrams"`
	Trigrams map[string]int `json:"trigrams"`
}

// PageRecord is the analysis result for a single unique URL. It is created
// once per URL and never mutated after the analyze worker hands it to the
// aggregation store.
type PageRecord struct {
	URL         string              `json:"url"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Headings    map[string][]string `json:"headings,omitempty"`
	OGTags      map[string]string   `json:"og_tags,omitempty"`
	Anchors     []Anchor            `json:"anchors,omitempty"`
	Images      []Image             `json:"images,omitempty"`
	WordCount   int                 `json:"wordcount"`
	Ngrams      NgramCounts         `json:"ngrams"`
	ContentHash string              `json:"content_hash"`
	Warnings    []string            `json:"warnings"`
	Keywords    []Keyword           `json:"keywords,omitempty"`

	// WordFreq holds stop-word-filtered unigram counts. It feeds site-level
	// keyword aggregation and is not part of the output contract.
	WordFreq map[string]int `json:"-"`

	FetchDuration time.Duration `json:"-"`
	ParseDuration time.Duration `json:"-"`
}

// DuplicateGroup lists URLs whose pages share one content hash. Groups are
// only emitted with two or more members.
type DuplicateGroup struct {
	ContentHash string   `json:"content_hash"`
	URLs        []string `json:"urls"`
}

// Error kinds recorded in CrawlResult.Errors.
const (
	ErrKindNetwork    = "network"
	ErrKindTimeout    = "timeout"
	ErrKindHTTPStatus = "http_status"
)

// CrawlError is a non-fatal per-URL fetch failure.
type CrawlError struct {
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// CrawlMetrics are monotonically accumulated crawl counters.
type CrawlMetrics struct {
	FetchMSTotal   int64 `json:"fetch_ms_total"`
	ParseMSTotal   int64 `json:"parse_ms_total"`
	Pages          int   `json:"pages"`
	SkippedNonHTML int   `json:"skipped_non_html"`
}

// CrawlResult is the final aggregated site report.
type CrawlResult struct {
	Pages          []PageRecord     `json:"pages"`
	DuplicatePages []DuplicateGroup `json:"duplicate_pages"`
	Keywords       []Keyword        `json:"keywords"`
	Errors         []CrawlError     `json:"errors"`
	TotalTime      float64          `json:"total_time"`
	Cancelled      bool             `json:"cancelled"`
	CrawlMetrics   CrawlMetrics     `json:"crawl_metrics"`
}
