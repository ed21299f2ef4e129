package account

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

// SnapshotState classifies what the cache knows about an account.
type SnapshotState int

const (
	// SnapshotAbsent means the account has never been loaded.
	SnapshotAbsent SnapshotState = iota

	// SnapshotPresent means a snapshot is cached.
	SnapshotPresent

	// SnapshotNotFound means the ledger reported the account does not
	// exist. This is an expected terminal state for an unfunded account,
	// distinct from both "not yet loaded" and a transient fetch error.
	SnapshotNotFound
)

// SnapshotCache holds the latest known on-ledger state per public key.
// Snapshots are replaced wholesale on refresh so the sequence number and
// balances of a snapshot can never be observed mid-update.
type SnapshotCache struct {
	ledger stellarpay.LedgerClient

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	snapshot *stellarpay.AccountSnapshot
	state    SnapshotState
}

type refreshResult struct {
	snapshot *stellarpay.AccountSnapshot
	state    SnapshotState
}

// NewSnapshotCache creates a cache over the given ledger client.
func NewSnapshotCache(ledger stellarpay.LedgerClient) *SnapshotCache {
	return &SnapshotCache{
		ledger:  ledger,
		entries: make(map[string]cacheEntry),
	}
}

// Current returns the last known state for a public key without fetching.
func (c *SnapshotCache) Current(publicKey string) (*stellarpay.AccountSnapshot, SnapshotState) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[publicKey]
	if !ok {
		return nil, SnapshotAbsent
	}
	return entry.snapshot, entry.state
}

// Refresh fetches the current ledger state for a public key and replaces the
// cached entry. Concurrent refreshes for the same key share a single fetch;
// their results cannot race into the cache.
//
// A ledger "account not found" stores the not-found marker and returns
// SnapshotNotFound with a nil error. A transient fetch failure returns the
// error and leaves the previously cached entry untouched.
func (c *SnapshotCache) Refresh(ctx context.Context, publicKey string) (*stellarpay.AccountSnapshot, SnapshotState, error) {
	v, err, _ := c.group.Do(publicKey, func() (any, error) {
		snapshot, loadErr := c.ledger.LoadAccount(ctx, publicKey)
		if loadErr != nil {
			if errors.HasCode(loadErr, errors.ACCOUNT_NOT_FOUND) {
				c.store(publicKey, cacheEntry{state: SnapshotNotFound})
				return refreshResult{state: SnapshotNotFound}, nil
			}
			return nil, loadErr
		}

		c.store(publicKey, cacheEntry{snapshot: snapshot, state: SnapshotPresent})
		return refreshResult{snapshot: snapshot, state: SnapshotPresent}, nil
	})
	if err != nil {
		// Previous entry, if any, survives a transient failure.
		snapshot, state := c.Current(publicKey)
		return snapshot, state, err
	}

	res := v.(refreshResult)
	return res.snapshot, res.state, nil
}

func (c *SnapshotCache) store(publicKey string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[publicKey] = entry
}
