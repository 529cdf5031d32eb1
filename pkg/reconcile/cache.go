package reconcile

import "encoding/json"

// Storage is the persistent key-value store the cache sits on. A miss is
// (nil, nil). Implementations live outside this package (e.g. the sqlite
// client state store).
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

const (
	cachePaymentKey = "cache:payment"
	cacheBalanceKey = "cache:balance"
)

// CacheStore stashes the last known server records keyed by owner so the
// next session can paint instantly. All storage failures are swallowed and
// treated as a cache miss; the cache is never authoritative.
type CacheStore struct {
	storage Storage
}

// NewCacheStore creates a CacheStore over the given storage.
func NewCacheStore(storage Storage) *CacheStore {
	return &CacheStore{storage: storage}
}

type cachedPayment struct {
	OwnerKey string        `json:"owner_key"`
	Record   PaymentRecord `json:"record"`
}

// SavePayment persists the full record keyed by owner. Writers always write
// the whole envelope so readers never observe a half-written entry.
func (c *CacheStore) SavePayment(rec PaymentRecord, ownerKey string) {
	raw, err := json.Marshal(cachedPayment{OwnerKey: ownerKey, Record: rec})
	if err != nil {
		return
	}
	_ = c.storage.Set(cachePaymentKey, raw)
}

// LoadPayment returns the cached record only if it belongs to ownerKey.
// A record cached for a different owner (previous login on the same device)
// is a miss, never a leak.
func (c *CacheStore) LoadPayment(ownerKey string) *PaymentRecord {
	raw, err := c.storage.Get(cachePaymentKey)
	if err != nil || raw == nil {
		return nil
	}
	var entry cachedPayment
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil
	}
	if entry.OwnerKey != ownerKey {
		return nil
	}
	rec := entry.Record
	return &rec
}

type cachedBalance struct {
	OwnerKey string         `json:"owner_key"`
	Snapshot LedgerSnapshot `json:"snapshot"`
}

// SaveBalance persists the ledger snapshot (confirmed value plus pending
// deltas) so an optimistic balance survives a reload even when the write
// retries were exhausted.
func (c *CacheStore) SaveBalance(snap LedgerSnapshot, ownerKey string) {
	raw, err := json.Marshal(cachedBalance{OwnerKey: ownerKey, Snapshot: snap})
	if err != nil {
		return
	}
	_ = c.storage.Set(cacheBalanceKey, raw)
}

// LoadBalance returns the cached ledger snapshot for ownerKey, or nil.
func (c *CacheStore) LoadBalance(ownerKey string) *LedgerSnapshot {
	raw, err := c.storage.Get(cacheBalanceKey)
	if err != nil || raw == nil {
		return nil
	}
	var entry cachedBalance
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil
	}
	if entry.OwnerKey != ownerKey {
		return nil
	}
	snap := entry.Snapshot
	return &snap
}

// Clear drops both cache entries, used on sign-out.
func (c *CacheStore) Clear() {
	_ = c.storage.Delete(cachePaymentKey)
	_ = c.storage.Delete(cacheBalanceKey)
}
