// Package concurrent provides the sharded score accumulator used by the
// parallel query path. Keys are distributed over shards by modulo; each
// shard is guarded by its own mutex and no operation ever holds more
// than one shard lock at a time.
package concurrent

import (
	"sort"
	"sync"
)

// DefaultShardCount is used when a Map is created with a non-positive
// shard count.
const DefaultShardCount = 100

type shard struct {
	mu     sync.Mutex
	values map[int]*float64
}

// Map is a sharded mapping from document id to a running score.
type Map struct {
	shards []shard
}

// NewMap creates a Map with the given number of shards.
func NewMap(shardCount int) *Map {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	m := &Map{shards: make([]shard, shardCount)}
	for i := range m.shards {
		m.shards[i].values = make(map[int]*float64)
	}
	return m
}

// Access is an exclusive handle on one entry. The owning shard stays
// locked until Release is called.
type Access struct {
	// Value points at the entry's score; it is created as zero on
	// first access.
	Value *float64

	mu *sync.Mutex
}

// Release unlocks the shard. The Value pointer must not be used after
// Release returns.
func (a Access) Release() {
	a.mu.Unlock()
}

// At locks the shard owning key and returns exclusive access to its
// entry, inserting a zero value if the key is new.
func (m *Map) At(key int) Access {
	s := &m.shards[key%len(m.shards)]
	s.mu.Lock()
	v, ok := s.values[key]
	if !ok {
		v = new(float64)
		s.values[key] = v
	}
	return Access{Value: v, mu: &s.mu}
}

// Erase removes key from its shard.
func (m *Map) Erase(key int) {
	s := &m.shards[key%len(m.shards)]
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// BuildOrdinary merges all shards into a single plain map. Shard locks
// are taken one at a time in index order; workers must have joined
// before this is called.
func (m *Map) BuildOrdinary() map[int]float64 {
	out := make(map[int]float64)
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.values {
			out[k] = *v
		}
		s.mu.Unlock()
	}
	return out
}

// OrderedKeys returns the keys of a merged map in ascending order.
func OrderedKeys(values map[int]float64) []int {
	keys := make([]int, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
