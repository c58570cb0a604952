// Package cache implements a sharded, generic LRU cache, used by the
// augsql package to cache parsed templates keyed on (dialect, template
// text): a fixed number of independently-locked shards selected by a
// hash of the key, so concurrent lookups for different templates rarely
// contend on the same shard's lock.
package cache

import (
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultShardCount is the number of LRU shards used when a Cache is
	// built with zero shardCount.
	DefaultShardCount = 8
	// DefaultShardCapacity is the per-shard entry capacity used when a
	// Cache is built with zero shardCapacity.
	DefaultShardCapacity = 256
)

// Cache is a sharded LRU keyed by string, holding values of type V across
// a fixed number of independently-locked shards.
type Cache[V any] struct {
	shards    []*shard[V]
	numShards uint64
}

type shard[V any] struct {
	mu sync.Mutex
	lr *lru.Cache[string, V]
}

// Disabled returns a Cache where Get always misses and Put is a no-op,
// mirroring a zero-size "no cache" configuration.
func Disabled[V any]() *Cache[V] {
	return &Cache[V]{}
}

// New builds a Cache with shardCount shards of shardCapacity entries
// each. Zero values fall back to DefaultShardCount/DefaultShardCapacity.
// A negative shardCount or shardCapacity is an error.
func New[V any](shardCount, shardCapacity int) (*Cache[V], error) {
	if shardCount == 0 {
		shardCount = DefaultShardCount
	}

	if shardCapacity == 0 {
		shardCapacity = DefaultShardCapacity
	}

	if shardCount < 0 {
		return nil, errors.New("cache shard count must not be negative")
	}

	if shardCapacity < 0 {
		return nil, errors.New("cache shard capacity must not be negative")
	}

	shards := make([]*shard[V], shardCount)

	for i := range shards {
		lr, err := lru.New[string, V](shardCapacity)
		if err != nil {
			return nil, errors.New("building cache shard: " + err.Error())
		}

		shards[i] = &shard[V]{lr: lr}
	}

	return &Cache[V]{shards: shards, numShards: uint64(shardCount)}, nil
}

func (c *Cache[V]) shardFor(k string) *shard[V] {
	h := xxhash.Sum64String(k)

	return c.shards[h%c.numShards]
}

// Get looks up the value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	if len(c.shards) == 0 {
		var zero V

		return zero, false
	}

	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lr.Get(key)
}

// Put stores v under key, evicting the shard's least-recently-used entry
// if it is at capacity. A no-op on a Disabled cache.
func (c *Cache[V]) Put(key string, v V) {
	if len(c.shards) == 0 {
		return
	}

	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lr.Add(key, v)
}

// Len reports the total number of cached entries across all shards.
func (c *Cache[V]) Len() int {
	n := 0

	for _, s := range c.shards {
		s.mu.Lock()
		n += s.lr.Len()
		s.mu.Unlock()
	}

	return n
}
