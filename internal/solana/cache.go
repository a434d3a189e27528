package solana

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/HeroDappDev/Claude-Fun/internal/observability"
)

// Default cache settings.
const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 30 * time.Second
)

// DefaultFetchTimeout covers every attempt of a retrying HTTPClient.
const DefaultFetchTimeout = DefaultTimeout * (DefaultMaxRetries + 1)

// CacheOption configures CachedReader.
type CacheOption func(*CachedReader)

// WithFetchTimeout bounds a shared upstream fetch. The fetch outlives the
// caller that started it, so it needs its own deadline.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(r *CachedReader) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// CachedReader wraps an RPCClient with a bounded TTL cache of found
// transactions. Concurrent lookups of one signature share a single RPC call.
// Unknown signatures and errors are never cached. A caller that gives up
// stops waiting without failing the others joined on the same fetch.
//
// Returned transactions are shared between callers and must be treated as read-only.
type CachedReader struct {
	next         RPCClient
	cache        *expirable.LRU[string, *Transaction]
	group        singleflight.Group
	fetchTimeout time.Duration
}

// NewCachedReader creates a cached reader. Non-positive size or ttl fall back to defaults.
func NewCachedReader(next RPCClient, size int, ttl time.Duration, opts ...CacheOption) *CachedReader {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	r := &CachedReader{
		next:         next,
		cache:        expirable.NewLRU[string, *Transaction](size, nil, ttl),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetTransaction returns the cached transaction or fetches it from the wrapped client.
func (r *CachedReader) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	if tx, ok := r.cache.Get(signature); ok {
		observability.RecordCacheLookup(true)
		return tx, nil
	}
	observability.RecordCacheLookup(false)

	ch := r.group.DoChan(signature, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()

		tx, err := r.next.GetTransaction(fetchCtx, signature)
		if err != nil {
			return nil, err
		}
		if tx != nil {
			r.cache.Add(signature, tx)
		}
		return tx, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		tx, _ := res.Val.(*Transaction)
		return tx, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetSlot is not cached.
func (r *CachedReader) GetSlot(ctx context.Context) (int64, error) {
	return r.next.GetSlot(ctx)
}

// Len returns the number of cached transactions.
func (r *CachedReader) Len() int {
	return r.cache.Len()
}

var _ RPCClient = (*CachedReader)(nil)
var _ RPCClient = (*HTTPClient)(nil)
