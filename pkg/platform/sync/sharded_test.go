package sync

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutexSameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0

	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("COM11")
			counter++
			m.Unlock("COM11")
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestShardedMutexDo(t *testing.T) {
	m := NewShardedMutex()
	boom := errors.New("boom")

	err := m.Do("voter-7", func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// The shard is released after fn returns.
	assert.NoError(t, m.Do("voter-7", func() error { return nil }))
}

func TestShardForIsStable(t *testing.T) {
	assert.Equal(t, 0, shardFor(""))
	assert.Equal(t, shardFor("voter-7"), shardFor("voter-7"))
	for _, k := range []string{"a", "b", "COM11", "voter-12"} {
		assert.Less(t, shardFor(k), shardCount)
	}
}
