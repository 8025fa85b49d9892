package analyzer

import (
	"sort"
	"sync"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Site-level keywords must occur more than this many times across all pages.
const keywordThreshold = 4

// Store accumulates page records during a crawl and produces the final
// deduplicated site aggregate. All mutation goes through one lock, so the
// store behaves as a single logical writer no matter how many analyze
// workers contribute.
type Store struct {
	mu             sync.Mutex
	pages          map[string]*models.PageRecord
	skippedNonHTML int
}

// NewStore creates an empty aggregation store.
func NewStore() *Store {
	return &Store{pages: make(map[string]*models.PageRecord)}
}

// Record stores a completed page keyed by URL. Frontier dedup guarantees
// each URL is written at most once.
func (s *Store) Record(page *models.PageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.URL] = page
}

// NoteSkippedNonHTML counts a fetch that returned a non-HTML content type.
func (s *Store) NoteSkippedNonHTML() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skippedNonHTML++
}

// Aggregate is the deterministic output of Finalize.
type Aggregate struct {
	Pages          []models.PageRecord
	DuplicatePages []models.DuplicateGroup
	Keywords       []models.Keyword
	Metrics        models.CrawlMetrics
}

// Finalize groups pages by content hash, merges keyword counts and sums
// durations. It is a pure function of the stored state: calling it again on
// an unchanged store yields an identical aggregate. Only call it after the
// controller confirms drain.
func (s *Store) Finalize() *Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := &Aggregate{
		Pages:          make([]models.PageRecord, 0, len(s.pages)),
		DuplicatePages: []models.DuplicateGroup{},
		Metrics: models.CrawlMetrics{
			Pages:          len(s.pages),
			SkippedNonHTML: s.skippedNonHTML,
		},
	}

	hashGroups := make(map[string][]string)
	unigrams := make(map[string]int)
	bigrams := make(map[string]int)
	trigrams := make(map[string]int)

	for _, page := range s.pages {
		agg.Pages = append(agg.Pages, *page)
		if page.ContentHash != "" {
			hashGroups[page.ContentHash] = append(hashGroups[page.ContentHash], page.URL)
		}
		for term, count := range page.WordFreq {
			unigrams[term] += count
		}
		for term, count := range page.Ngrams.Bigrams {
			bigrams[term] += count
		}
		for term, count := range page.Ngrams.Trigrams {
			trigrams[term] += count
		}
		agg.Metrics.FetchMSTotal += page.FetchDuration.Milliseconds()
		agg.Metrics.ParseMSTotal += page.ParseDuration.Milliseconds()
	}

	sort.Slice(agg.Pages, func(i, j int) bool { return agg.Pages[i].URL < agg.Pages[j].URL })

	for hash, urls := range hashGroups {
		if len(urls) < 2 {
			continue
		}
		sort.Strings(urls)
		agg.DuplicatePages = append(agg.DuplicatePages, models.DuplicateGroup{
			ContentHash: hash,
			URLs:        urls,
		})
	}
	sort.Slice(agg.DuplicatePages, func(i, j int) bool {
		return agg.DuplicatePages[i].ContentHash < agg.DuplicatePages[j].ContentHash
	})

	// Words and n-grams pass the same threshold independently, then merge
	// into one list.
	agg.Keywords = []models.Keyword{}
	for _, counts := range []map[string]int{unigrams, bigrams, trigrams} {
		for term, count := range counts {
			if count > keywordThreshold {
				agg.Keywords = append(agg.Keywords, models.Keyword{Term: term, Count: count})
			}
		}
	}
	sort.Slice(agg.Keywords, func(i, j int) bool {
		if agg.Keywords[i].Count != agg.Keywords[j].Count {
			return agg.Keywords[i].Count > agg.Keywords[j].Count
		}
		return agg.Keywords[i].Term < agg.Keywords[j].Term
	})

	return agg
}
