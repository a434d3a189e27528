package ledger

import (
	"context"
	"hash/fnv"
)

// keyedMutex serializes work per key over a fixed set of shards.
// Distinct keys may share a shard; the same key always maps to one.
// Each shard is a one-slot channel so a waiter can give up on ctx.
type keyedMutex struct {
	shards []chan struct{}
}

func newKeyedMutex(n int) *keyedMutex {
	if n < 1 {
		n = 1
	}
	shards := make([]chan struct{}, n)
	for i := range shards {
		shards[i] = make(chan struct{}, 1)
	}
	return &keyedMutex{shards: shards}
}

// Lock acquires the shard of key and returns its unlock function.
// It returns ctx.Err() if ctx ends first.
func (k *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	shard := k.shards[h.Sum32()%uint32(len(k.shards))]

	select {
	case shard <- struct{}{}:
		return func() { <-shard }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
