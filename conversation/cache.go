package conversation

import "sync"

// ============================================================================
// REWRITE CACHE
// ============================================================================

type cacheKey struct {
	context  string
	question string
}

// rewriteCache is a small LRU over (context-prefix, question) pairs.
// It is shared across requests; concurrent writers may occasionally
// overwrite each other, which is acceptable for a cache.
type rewriteCache struct {
	mu    sync.Mutex
	cap   int
	items map[cacheKey]string
	order []cacheKey
}

func newRewriteCache(capacity int) *rewriteCache {
	if capacity <= 0 {
		capacity = 10
	}
	return &rewriteCache{
		cap:   capacity,
		items: make(map[cacheKey]string, capacity),
	}
}

func (c *rewriteCache) get(context, question string) (string, bool) {
	key := cacheKey{context: context, question: question}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.items[key]
	if ok {
		c.touch(key)
	}
	return value, ok
}

func (c *rewriteCache) put(context, question, rewritten string) {
	key := cacheKey{context: context, question: question}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		c.items[key] = rewritten
		c.touch(key)
		return
	}

	if len(c.items) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}

	c.items[key] = rewritten
	c.order = append(c.order, key)
}

func (c *rewriteCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// touch moves key to the most-recently-used end of the order
func (c *rewriteCache) touch(key cacheKey) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
