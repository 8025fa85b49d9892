package crawler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontierDedup(t *testing.T) {
	f := NewFrontier(3)

	assert.True(t, f.Enqueue("https://example.com/page", 0, ""))
	assert.False(t, f.Enqueue("https://example.com/page", 1, "parent"))
	assert.False(t, f.Enqueue("https://example.com/page/", 1, "parent"))
	assert.False(t, f.Enqueue("https://example.com/page#frag", 1, "parent"))
	assert.False(t, f.Enqueue("https://EXAMPLE.com/page", 1, "parent"))

	task, ok := f.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/page", task.URL)

	f.Done()
	_, ok = f.Dequeue()
	assert.False(t, ok)
}

func TestFrontierDepthBound(t *testing.T) {
	f := NewFrontier(2)

	assert.True(t, f.Enqueue("https://example.com/ok", 2, ""))
	assert.False(t, f.Enqueue("https://example.com/deep", 3, ""))
	assert.False(t, f.Visited("https://example.com/deep"))
}

func TestFrontierRejectsInvalidURL(t *testing.T) {
	f := NewFrontier(3)
	assert.False(t, f.Enqueue("://not-a-url", 0, ""))
}

func TestFrontierClosesWhenDrained(t *testing.T) {
	f := NewFrontier(3)
	f.Enqueue("https://example.com/a", 0, "")
	f.Enqueue("https://example.com/b", 0, "")

	_, ok := f.Dequeue()
	require.True(t, ok)
	_, ok = f.Dequeue()
	require.True(t, ok)

	f.Done()
	f.Done()

	_, ok = f.Dequeue()
	assert.False(t, ok)
	// Closure is sticky.
	assert.False(t, f.Enqueue("https://example.com/late", 0, ""))
}

func TestFrontierBlocksWhileWorkOutstanding(t *testing.T) {
	f := NewFrontier(3)
	f.Enqueue("https://example.com/a", 0, "")

	task, ok := f.Dequeue()
	require.True(t, ok)

	// A second consumer must block: the queue is empty but the first task is
	// still outstanding and may enqueue children.
	results := make(chan bool, 1)
	go func() {
		dequeued, ok := f.Dequeue()
		results <- ok && dequeued.URL != ""
	}()

	select {
	case <-results:
		t.Fatal("dequeue returned while work was outstanding")
	case <-time.After(50 * time.Millisecond):
	}

	f.Enqueue("https://example.com/child", task.Depth+1, task.URL)
	f.Done()

	select {
	case got := <-results:
		assert.True(t, got)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not observe the child task")
	}
	f.Done()
}

func TestFrontierCloseUnblocksWaiters(t *testing.T) {
	f := NewFrontier(3)
	f.Enqueue("https://example.com/a", 0, "")
	_, ok := f.Dequeue()
	require.True(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := f.Dequeue()
			assert.False(t, ok)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	f.Close()
	wg.Wait()
}

func TestFrontierConcurrentEnqueueDedups(t *testing.T) {
	f := NewFrontier(3)
	var accepted int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Enqueue("https://example.com/contested", 0, "") {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), accepted)
}
