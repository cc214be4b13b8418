package media

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"connectdj/internal/core"
)

// SearchCache memoizes media lookup results per query. A bloom filter fronts
// the LRU so queries never seen before answer without touching the cache
// proper.
type SearchCache struct {
	bloom *bloom.BloomFilter
	lru   *lru.Cache[string, *core.MediaResult]
	mutex sync.RWMutex
}

func NewSearchCache(size int, falsePositiveRate float64) *SearchCache {
	if size <= 0 {
		size = core.DefaultMediaCacheSize
	}
	if falsePositiveRate <= 0 {
		falsePositiveRate = core.DefaultCacheFalsePositiveRate
	}

	cache, _ := lru.New[string, *core.MediaResult](size)

	return &SearchCache{
		bloom: bloom.NewWithEstimates(uint(size), falsePositiveRate),
		lru:   cache,
	}
}

// Get returns the cached result for a query, if any.
func (sc *SearchCache) Get(query string) (*core.MediaResult, bool) {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if !sc.bloom.TestString(query) {
		return nil, false
	}

	return sc.lru.Get(query)
}

// Add stores a result for a query, evicting the least recently used entry
// when full.
func (sc *SearchCache) Add(query string, result *core.MediaResult) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.bloom.AddString(query)
	sc.lru.Add(query, result)
}

// Len returns the number of cached results.
func (sc *SearchCache) Len() int {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	return sc.lru.Len()
}
