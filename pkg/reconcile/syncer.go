package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWriteAttempts = 3
	defaultBackoffUnit   = time.Second // linear: 1s, 2s between attempts
)

// Backend is the authoritative remote the syncer reads and writes through.
// Implementations wrap the wallet API; they do not retry themselves.
type Backend interface {
	// ReadBalance fetches the current server-confirmed balance.
	ReadBalance(ctx context.Context) (int64, error)
	// WriteClaim applies one idempotency-keyed delta and returns the
	// resulting server balance. Repeating a key must return the balance
	// from the first application.
	WriteClaim(ctx context.Context, mutation Delta) (int64, error)
}

// Syncer reconciles the optimistic local ledger with the authoritative
// backend. Writes are retried a bounded number of times with linearly
// increasing backoff; on exhaustion the optimistic value is kept visible and
// persisted to the cache rather than rolled back, and the discrepancy is
// healed by the next successful read.
type Syncer struct {
	backend  Backend
	cache    *CacheStore
	ledger   *Ledger
	ownerKey string
	log      zerolog.Logger

	attempts    int
	backoffUnit time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewSyncer creates a Syncer for one owner, restoring any cached ledger
// snapshot so an optimistic balance survives restarts.
func NewSyncer(backend Backend, cache *CacheStore, ownerKey string, log zerolog.Logger) *Syncer {
	s := &Syncer{
		backend:     backend,
		cache:       cache,
		ledger:      NewLedger(),
		ownerKey:    ownerKey,
		log:         log,
		attempts:    defaultWriteAttempts,
		backoffUnit: defaultBackoffUnit,
		sleep:       sleepCtx,
	}
	if snap := cache.LoadBalance(ownerKey); snap != nil {
		s.ledger.Restore(*snap)
	}
	return s
}

// Display returns the balance to render right now.
func (s *Syncer) Display() int64 {
	return s.ledger.Display()
}

// PendingDeltas returns how many local deltas await server confirmation.
func (s *Syncer) PendingDeltas() int {
	return s.ledger.Pending()
}

// Apply records an optimistic delta and pushes it to the backend with
// bounded retry. The displayed value includes the delta immediately. On
// retry exhaustion the mutation is absorbed into the cache (no rollback);
// only context cancellation is surfaced to the caller.
func (s *Syncer) Apply(ctx context.Context, key string, amount int64) error {
	s.ledger.Add(key, amount)
	s.cache.SaveBalance(s.ledger.Snapshot(), s.ownerKey)

	mutation := Delta{Key: key, Amount: amount}
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if attempt > 1 {
			if err := s.sleep(ctx, time.Duration(attempt-1)*s.backoffUnit); err != nil {
				return err
			}
		}

		server, err := s.backend.WriteClaim(ctx, mutation)
		if err == nil {
			s.ledger.Confirm(server)
			s.cache.SaveBalance(s.ledger.Snapshot(), s.ownerKey)
			s.log.Debug().
				Str("key", key).
				Int64("server_balance", server).
				Int("attempt", attempt).
				Msg("claim write confirmed")
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn().Err(err).Str("key", key).Int("attempt", attempt).Msg("claim write failed")
	}

	// Exhausted: keep the optimistic value visible and persisted. The next
	// successful Refresh clears the delta once the server reflects it.
	s.cache.SaveBalance(s.ledger.Snapshot(), s.ownerKey)
	s.log.Warn().Err(lastErr).Str("key", key).Msg("claim write retries exhausted, keeping optimistic value")
	return nil
}

// Refresh pulls the authoritative balance and folds it into the ledger.
// Read failures fall back to the current (cached/optimistic) display value
// and are never surfaced as a user-facing error.
func (s *Syncer) Refresh(ctx context.Context) int64 {
	server, err := s.backend.ReadBalance(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("balance read failed, serving last known value")
		return s.ledger.Display()
	}
	s.ledger.Confirm(server)
	s.cache.SaveBalance(s.ledger.Snapshot(), s.ownerKey)
	return s.ledger.Display()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
