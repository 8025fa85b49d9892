package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

func storedPage(url, hash string, words map[string]int) *models.PageRecord {
	return &models.PageRecord{
		URL:         url,
		ContentHash: hash,
		WordFreq:    words,
		Ngrams: models.NgramCounts{
			Bigrams:  map[string]int{},
			Trigrams: map[string]int{},
		},
	}
}

func TestFinalizeEmptyStore(t *testing.T) {
	agg := NewStore().Finalize()

	assert.Empty(t, agg.Pages)
	assert.Empty(t, agg.DuplicatePages)
	assert.Empty(t, agg.Keywords)
	assert.Equal(t, 0, agg.Metrics.Pages)
}

func TestFinalizeDuplicateGroups(t *testing.T) {
	store := NewStore()
	store.Record(storedPage("https://example.com/b", "hash1", nil))
	store.Record(storedPage("https://example.com/a", "hash1", nil))
	store.Record(storedPage("https://example.com/c", "hash2", nil))

	agg := store.Finalize()

	require.Len(t, agg.DuplicatePages, 1)
	assert.Equal(t, "hash1", agg.DuplicatePages[0].ContentHash)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, agg.DuplicatePages[0].URLs)
}

func TestFinalizeNeverEmitsSingletonGroups(t *testing.T) {
	store := NewStore()
	store.Record(storedPage("https://example.com/a", "h1", nil))
	store.Record(storedPage("https://example.com/b", "h2", nil))

	assert.Empty(t, store.Finalize().DuplicatePages)
}

func TestFinalizeKeywordThreshold(t *testing.T) {
	store := NewStore()
	store.Record(storedPage("https://example.com/a", "h1", map[string]int{"widget": 3, "rare": 2}))
	store.Record(storedPage("https://example.com/b", "h2", map[string]int{"widget": 2, "rare": 2}))

	agg := store.Finalize()

	require.Len(t, agg.Keywords, 1)
	assert.Equal(t, models.Keyword{Term: "widget", Count: 5}, agg.Keywords[0])
	// rare totals exactly 4, which does not pass "count > 4"
	for _, kw := range agg.Keywords {
		assert.Greater(t, kw.Count, 4)
	}
}

func TestFinalizeNgramsFilteredIndependently(t *testing.T) {
	store := NewStore()
	page := storedPage("https://example.com/a", "h1", map[string]int{"solo": 1})
	page.Ngrams.Bigrams = map[string]int{"fast crawler": 6}
	page.Ngrams.Trigrams = map[string]int{"very fast crawler": 7}
	store.Record(page)

	agg := store.Finalize()

	require.Len(t, agg.Keywords, 2)
	assert.Equal(t, models.Keyword{Term: "very fast crawler", Count: 7}, agg.Keywords[0])
	assert.Equal(t, models.Keyword{Term: "fast crawler", Count: 6}, agg.Keywords[1])
}

func TestFinalizeKeywordOrderingDeterministic(t *testing.T) {
	store := NewStore()
	store.Record(storedPage("https://example.com/a", "h1", map[string]int{"zeta": 5, "alpha": 5, "mid": 6}))

	agg := store.Finalize()

	require.Len(t, agg.Keywords, 3)
	assert.Equal(t, "mid", agg.Keywords[0].Term)
	assert.Equal(t, "alpha", agg.Keywords[1].Term)
	assert.Equal(t, "zeta", agg.Keywords[2].Term)
}

func TestFinalizeMetrics(t *testing.T) {
	store := NewStore()
	a := storedPage("https://example.com/a", "h1", nil)
	a.FetchDuration = 120 * time.Millisecond
	a.ParseDuration = 30 * time.Millisecond
	b := storedPage("https://example.com/b", "h2", nil)
	b.FetchDuration = 80 * time.Millisecond
	b.ParseDuration = 20 * time.Millisecond
	store.Record(a)
	store.Record(b)
	store.NoteSkippedNonHTML()
	store.NoteSkippedNonHTML()

	metrics := store.Finalize().Metrics

	assert.Equal(t, int64(200), metrics.FetchMSTotal)
	assert.Equal(t, int64(50), metrics.ParseMSTotal)
	assert.Equal(t, 2, metrics.Pages)
	assert.Equal(t, 2, metrics.SkippedNonHTML)
}

func TestFinalizeIdempotent(t *testing.T) {
	store := NewStore()
	store.Record(storedPage("https://example.com/b", "h1", map[string]int{"term": 9}))
	store.Record(storedPage("https://example.com/a", "h1", map[string]int{"term": 3}))
	store.NoteSkippedNonHTML()

	first := store.Finalize()
	second := store.Finalize()

	assert.Equal(t, first, second)
}

func TestPagesSortedByURL(t *testing.T) {
	store := NewStore()
	store.Record(storedPage("https://example.com/c", "h1", nil))
	store.Record(storedPage("https://example.com/a", "h2", nil))
	store.Record(storedPage("https://example.com/b", "h3", nil))

	agg := store.Finalize()

	require.Len(t, agg.Pages, 3)
	assert.Equal(t, "https://example.com/a", agg.Pages[0].URL)
	assert.Equal(t, "https://example.com/b", agg.Pages[1].URL)
	assert.Equal(t, "https://example.com/c", agg.Pages[2].URL)
}
