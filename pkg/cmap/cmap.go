package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the number of shards. It must be a power of two.
const DefaultShardCount = 16

// Option configures a Map.
type Option func(*config)

type config struct {
	shards int
	limit  int
}

// WithLimit bounds the number of entries. Zero or less means unbounded.
// The bound is split evenly between shards and rounded up.
func WithLimit(n int) Option {
	return func(c *config) {
		c.limit = n
	}
}

// Map is a concurrent-safe sharded map from strings to V.
type Map[V any] struct {
	shards   []*shard[V]
	mask     uint32
	perShard int
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New creates a Map.
func New[V any](opts ...Option) *Map[V] {
	cfg := config{shards: DefaultShardCount}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Map[V]{
		shards: make([]*shard[V], cfg.shards),
		mask:   uint32(cfg.shards - 1),
	}
	if cfg.limit > 0 {
		m.perShard = (cfg.limit + cfg.shards - 1) / cfg.shards
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

// shard picks the shard of key with MurmurHash3.
func (m *Map[V]) shard(key string) *shard[V] {
	return m.shards[murmur3.Sum32([]byte(key))&m.mask]
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.items[key]
	return val, ok
}

// GetOrCompute returns the value for key, computing and storing it with
// fn when absent. fn runs without the shard lock held, so concurrent
// callers may compute the same key; the first stored value wins.
func (m *Map[V]) GetOrCompute(key string, fn func() V) V {
	if val, ok := m.Get(key); ok {
		return val
	}

	val := fn()

	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[key]; ok {
		return existing
	}
	m.store(s, key, val)
	return val
}

// store requires s.mu held for writing.
func (m *Map[V]) store(s *shard[V], key string, value V) {
	if _, ok := s.items[key]; !ok && m.perShard > 0 && len(s.items) >= m.perShard {
		for k := range s.items {
			delete(s.items, k)
			break
		}
	}
	s.items[key] = value
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}
