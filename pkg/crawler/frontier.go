package crawler

import (
	"sync"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/utils"
)

// Frontier is the dedup-aware, depth-bounded task queue feeding the fetch
// pool. A URL enters the visited set the moment it is enqueued, so
// re-discovered links are dropped even before their first fetch completes.
//
// Closure is detected when the queue is empty and no task is outstanding:
// every dequeued task must be balanced by exactly one Done call once both
// fetch and analysis have finished with it.
type Frontier struct {
	mu          sync.Mutex
	cond        *sync.Cond
	queue       []models.CrawlTask
	visited     map[string]struct{}
	outstanding int
	closed      bool
	maxDepth    int
}

// NewFrontier creates an empty frontier bounded at maxDepth link hops.
func NewFrontier(maxDepth int) *Frontier {
	f := &Frontier{
		visited:  make(map[string]struct{}),
		maxDepth: maxDepth,
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Enqueue canonicalizes rawURL and atomically check-and-inserts it into the
// visited set. Duplicates, unparsable URLs and tasks past maxDepth are
// silently dropped. Returns whether a task was queued.
func (f *Frontier) Enqueue(rawURL string, depth int, parent string) bool {
	if depth > f.maxDepth {
		return false
	}
	normalized, err := utils.NormalizeURL(rawURL)
	if err != nil || normalized == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if _, seen := f.visited[normalized]; seen {
		return false
	}
	f.visited[normalized] = struct{}{}
	f.queue = append(f.queue, models.CrawlTask{URL: normalized, Depth: depth, Parent: parent})
	f.outstanding++
	f.cond.Signal()
	return true
}

// Dequeue blocks until a task is available or the frontier closes. The
// second return is false once the frontier is drained (queue empty, nothing
// outstanding) or closed by cancellation.
func (f *Frontier) Dequeue() (models.CrawlTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if f.closed {
			return models.CrawlTask{}, false
		}
		if len(f.queue) > 0 {
			task := f.queue[0]
			f.queue = f.queue[1:]
			return task, true
		}
		if f.outstanding == 0 {
			f.closed = true
			f.cond.Broadcast()
			return models.CrawlTask{}, false
		}
		f.cond.Wait()
	}
}

// Done marks one previously dequeued task as fully processed. The last Done
// on an empty queue triggers closure.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outstanding > 0 {
		f.outstanding--
	}
	if f.outstanding == 0 && len(f.queue) == 0 {
		f.closed = true
	}
	f.cond.Broadcast()
}

// Close stops the frontier immediately. Blocked Dequeue calls return false;
// later Enqueue calls are dropped. Used for cancellation.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}

// Visited reports whether a URL has ever been enqueued, in canonical form.
func (f *Frontier) Visited(rawURL string) bool {
	normalized, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, seen := f.visited[normalized]
	return seen
}
