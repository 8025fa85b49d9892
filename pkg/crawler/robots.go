package crawler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// RobotsCache fetches, parses and caches one robots.txt policy per host.
// Only User-agent, Disallow and Crawl-delay are honored. Fetch or parse
// failure resolves to allow-all with zero delay.
type RobotsCache struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger

	flight singleflight.Group
	mu     sync.Mutex
	hosts  map[string]*hostPolicy
}

type hostPolicy struct {
	group   *robotstxt.Group // nil means allow everything
	limiter *rate.Limiter
}

// NewRobotsCache creates an empty cache using client for robots.txt fetches.
func NewRobotsCache(client *http.Client, userAgent string, logger zerolog.Logger) *RobotsCache {
	return &RobotsCache{
		client:    client,
		userAgent: userAgent,
		logger:    logger,
		hosts:     make(map[string]*hostPolicy),
	}
}

// Allowed reports whether the target URL may be fetched. The first call for
// a host triggers exactly one robots.txt fetch; concurrent callers for the
// same host share the in-flight fetch.
func (r *RobotsCache) Allowed(ctx context.Context, target *url.URL) bool {
	policy := r.policy(ctx, target)
	if policy.group == nil {
		return true
	}
	path := target.Path
	if path == "" {
		path = "/"
	}
	return policy.group.Test(path)
}

// Wait blocks until a fetch to the target's host is permitted under that
// host's crawl-delay. Consecutive fetch starts to one host are spaced at
// least the delay apart, regardless of how many workers target it.
func (r *RobotsCache) Wait(ctx context.Context, target *url.URL) error {
	return r.policy(ctx, target).limiter.Wait(ctx)
}

func (r *RobotsCache) policy(ctx context.Context, target *url.URL) *hostPolicy {
	host := strings.ToLower(target.Host)

	r.mu.Lock()
	if policy, ok := r.hosts[host]; ok {
		r.mu.Unlock()
		return policy
	}
	r.mu.Unlock()

	v, _, _ := r.flight.Do(host, func() (interface{}, error) {
		policy := r.fetch(ctx, target.Scheme, host)
		r.mu.Lock()
		r.hosts[host] = policy
		r.mu.Unlock()
		return policy, nil
	})
	return v.(*hostPolicy)
}

// fetch retrieves and parses robots.txt for one host. All failure modes
// fall back to allow-all.
func (r *RobotsCache) fetch(ctx context.Context, scheme, host string) *hostPolicy {
	allowAll := &hostPolicy{limiter: rate.NewLimiter(rate.Inf, 1)}

	robotsURL := scheme + "://" + host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return allowAll
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug().Str("host", host).Err(err).Msg("robots.txt fetch failed, allowing all")
		return allowAll
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return allowAll
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		r.logger.Debug().Str("host", host).Err(err).Msg("robots.txt parse failed, allowing all")
		return allowAll
	}

	group := data.FindGroup(r.userAgent)
	if group == nil {
		return allowAll
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if group.CrawlDelay > 0 {
		// Burst 1 with one token per delay yields exactly the minimum
		// inter-fetch interval per host.
		limiter = rate.NewLimiter(rate.Every(group.CrawlDelay), 1)
	}
	r.logger.Debug().
		Str("host", host).
		Dur("crawl_delay", group.CrawlDelay).
		Msg("robots.txt policy cached")
	return &hostPolicy{group: group, limiter: limiter}
}

// CrawlDelay returns the cached crawl-delay for a host, zero when no policy
// or delay exists. Exposed for inspection and tests.
func (r *RobotsCache) CrawlDelay(host string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.hosts[strings.ToLower(host)]
	if !ok || policy.group == nil {
		return 0
	}
	return policy.group.CrawlDelay
}
