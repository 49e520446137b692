// Package sync provides keyed locking for operations that must not overlap
// on the same resource.
package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// ShardedMutex serializes callers that share a key. Distinct keys usually
// map to distinct shards, so unrelated work rarely waits.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires key's shard.
func (m *ShardedMutex) Lock(key string) {
	m.shards[shardFor(key)].Lock()
}

// Unlock releases key's shard.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[shardFor(key)].Unlock()
}

// Do runs fn while holding key's shard.
func (m *ShardedMutex) Do(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

func shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}
