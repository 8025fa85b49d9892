// Package crawler implements the concurrent crawl scheduler: frontier,
// robots policy cache, fetch pool and the controller that drives a crawl
// from seeding to the final aggregated result.
package crawler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	"github.com/amosWeiskopf/seosmith/internal/config"
	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/analyzer"
)

// Crawler orchestrates a single site crawl. Create one per run with New;
// it is not reusable after Crawl returns.
type Crawler struct {
	cfg      *config.Config
	startURL string
	scope    *siteScope

	frontier *Frontier
	robots   *RobotsCache
	fetcher  *Fetcher
	store    *analyzer.Store
	logger   zerolog.Logger

	errMu  sync.Mutex
	errors []models.CrawlError
}

// New validates configuration and builds a crawler for startURL. A non-nil
// error is fatal and means no fetch was attempted.
func New(startURL string, cfg *config.Config, logger zerolog.Logger) (*Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := config.ValidateStartURL(startURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(startURL)
	if err != nil {
		return nil, &config.ConfigError{Option: "start_url", Reason: err.Error()}
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.Concurrency * 2,
		MaxIdleConnsPerHost: cfg.Concurrency,
		IdleConnTimeout:     30 * time.Second,
	}
	client := &http.Client{Transport: transport}

	return &Crawler{
		cfg:      cfg,
		startURL: startURL,
		scope:    newSiteScope(u),
		frontier: NewFrontier(cfg.MaxDepth),
		robots:   NewRobotsCache(client, cfg.UserAgent, logger),
		fetcher:  NewFetcher(client, cfg.UserAgent, cfg.RequestTimeout),
		store:    analyzer.NewStore(),
		logger:   logger,
	}, nil
}

// Crawl runs the full pipeline and returns the aggregated site report.
// Cancellation via ctx is not an error: the result carries partial data
// with Cancelled set.
func (c *Crawler) Crawl(ctx context.Context) (*models.CrawlResult, error) {
	start := time.Now()

	c.seed(ctx)

	// Unblock frontier waiters when the context is cancelled.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.frontier.Close()
		case <-watchDone:
		}
	}()

	// Analyze submissions block once the buffer is full, so a slow parse
	// backpressures the fetch pool instead of queueing unboundedly.
	parseCh := make(chan *models.FetchResult, c.cfg.Workers)

	var fetchers errgroup.Group
	for i := 0; i < c.cfg.Concurrency; i++ {
		fetchers.Go(func() error {
			c.fetchLoop(ctx, parseCh)
			return nil
		})
	}

	var parsers errgroup.Group
	for i := 0; i < c.cfg.Workers; i++ {
		parsers.Go(func() error {
			c.parseLoop(ctx, parseCh)
			return nil
		})
	}

	fetchers.Wait()
	close(parseCh)
	parsers.Wait()
	close(watchDone)

	agg := c.store.Finalize()

	c.errMu.Lock()
	errs := make([]models.CrawlError, len(c.errors))
	copy(errs, c.errors)
	c.errMu.Unlock()

	result := &models.CrawlResult{
		Pages:          agg.Pages,
		DuplicatePages: agg.DuplicatePages,
		Keywords:       agg.Keywords,
		Errors:         errs,
		TotalTime:      time.Since(start).Seconds(),
		Cancelled:      ctx.Err() != nil,
		CrawlMetrics:   agg.Metrics,
	}
	c.logger.Info().
		Int("pages", result.CrawlMetrics.Pages).
		Int("errors", len(result.Errors)).
		Bool("cancelled", result.Cancelled).
		Float64("total_time", result.TotalTime).
		Msg("crawl finished")
	return result, nil
}

// seed enqueues the start URL and, when configured, every sitemap entry at
// depth 0. Sitemap failures fall back to start-URL-only seeding.
func (c *Crawler) seed(ctx context.Context) {
	c.frontier.Enqueue(c.startURL, 0, "")

	if c.cfg.Sitemap == "" {
		return
	}
	urls, err := c.fetchSitemap(ctx, c.cfg.Sitemap)
	if err != nil {
		c.logger.Warn().Str("sitemap", c.cfg.Sitemap).Err(err).Msg("sitemap seeding failed")
		return
	}
	for _, u := range urls {
		c.frontier.Enqueue(u, 0, c.cfg.Sitemap)
	}
	c.logger.Info().Int("urls", len(urls)).Msg("sitemap seeded")
}

// fetchLoop is one slot of the fetch pool: dequeue, robots check, politeness
// wait, fetch, hand off to analysis.
func (c *Crawler) fetchLoop(ctx context.Context, parseCh chan<- *models.FetchResult) {
	for {
		task, ok := c.frontier.Dequeue()
		if !ok {
			return
		}

		target, err := url.Parse(task.URL)
		if err != nil {
			c.frontier.Done()
			continue
		}

		// Robots filtering happens here, not at enqueue time: a disallowed
		// URL stays in the visited set so it is never re-discovered.
		if !c.robots.Allowed(ctx, target) {
			c.logger.Debug().Str("url", task.URL).Msg("skipped, disallowed by robots.txt")
			c.frontier.Done()
			continue
		}

		if err := c.robots.Wait(ctx, target); err != nil {
			c.frontier.Done()
			continue
		}

		result, fetchErr := c.fetcher.Fetch(ctx, task)
		switch {
		case fetchErr != nil:
			c.recordError(*fetchErr)
			c.logger.Debug().Str("url", task.URL).Str("kind", fetchErr.Kind).Msg("fetch failed")
			c.frontier.Done()
		case result == nil:
			// Cancelled mid-fetch; nothing to record.
			c.frontier.Done()
		case !IsHTML(result.ContentType):
			c.store.NoteSkippedNonHTML()
			c.logger.Debug().Str("url", task.URL).Str("content_type", result.ContentType).Msg("skipped non-html")
			c.frontier.Done()
		default:
			select {
			case parseCh <- result:
				// The analyze worker balances this task's Done.
			case <-ctx.Done():
				c.frontier.Done()
			}
		}
	}
}

// parseLoop is one slot of the analyze pool: build the page record, enqueue
// in-scope child links, hand the record to the aggregation store.
func (c *Crawler) parseLoop(ctx context.Context, parseCh <-chan *models.FetchResult) {
	for result := range parseCh {
		page := analyzer.AnalyzePage(result)

		if c.cfg.FollowLinks && result.Depth < c.cfg.MaxDepth && ctx.Err() == nil {
			for _, anchor := range page.Anchors {
				child, err := url.Parse(anchor.Href)
				if err != nil || !c.scope.Contains(child) {
					continue
				}
				c.frontier.Enqueue(anchor.Href, result.Depth+1, result.URL)
			}
		}

		c.store.Record(page)
		c.logger.Debug().
			Str("url", page.URL).
			Int("depth", result.Depth).
			Int("wordcount", page.WordCount).
			Msg("page analyzed")
		c.frontier.Done()
	}
}

func (c *Crawler) recordError(e models.CrawlError) {
	c.errMu.Lock()
	c.errors = append(c.errors, e)
	c.errMu.Unlock()
}

// siteScope decides whether a discovered link is same-site. Registrable
// domains compare by eTLD+1 so subdomains stay in scope; IPs and other
// hosts without a registrable domain compare literally.
type siteScope struct {
	host        string
	registrable string
}

func newSiteScope(u *url.URL) *siteScope {
	s := &siteScope{host: strings.ToLower(u.Host)}
	if reg, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname()); err == nil {
		s.registrable = reg
	}
	return s
}

func (s *siteScope) Contains(u *url.URL) bool {
	if u == nil || u.Host == "" {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if s.registrable != "" {
		reg, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
		return err == nil && reg == s.registrable
	}
	return strings.ToLower(u.Host) == s.host
}
