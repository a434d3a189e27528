package stub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HeroDappDev/Claude-Fun/internal/solana"
)

// ErrUnavailable simulates an RPC outage.
var ErrUnavailable = errors.New("rpc unavailable")

// RPCClient implements solana.RPCClient for testing.
// Unknown signatures return nil, nil like a real node.
type RPCClient struct {
	mu           sync.Mutex
	Transactions map[string]*solana.Transaction
	Errors       map[string]error
	Slot         int64
	Delay        time.Duration // applied to GetTransaction before lookup
	calls        map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions: make(map[string]*solana.Transaction),
		Errors:       make(map[string]error),
		calls:        make(map[string]int),
	}
}

// GetTransaction retrieves a transaction by signature from the stub store.
func (c *RPCClient) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	c.calls[signature]++
	delay := c.Delay
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := c.Errors[signature]; ok {
		return nil, err
	}
	return c.Transactions[signature], nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.Errors["getSlot"]; ok {
		return 0, err
	}
	return c.Slot, ctx.Err()
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// FailWith makes lookups of signature return err.
func (c *RPCClient) FailWith(signature string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[signature] = err
}

// Calls returns how many times GetTransaction was called for signature.
func (c *RPCClient) Calls(signature string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[signature]
}

var _ solana.RPCClient = (*RPCClient)(nil)
