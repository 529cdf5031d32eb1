package reconcile

// Delta is a not-yet-confirmed local balance change, tagged with an
// idempotency key so a retried write can never apply twice.
type Delta struct {
	Key    string `json:"key"`
	Amount int64  `json:"amount"`
}

// Ledger models the displayed balance as the last confirmed server value
// plus the sum of unconfirmed local deltas. Confirming a server value
// retires each delta exactly once; a delta the server has not absorbed yet
// is kept so the display never momentarily regresses.
//
// The ledger is not safe for concurrent use; callers serialize access on
// their event loop.
type Ledger struct {
	confirmed int64
	observed  bool // false until a server value has ever been seen
	pending   []Delta
}

// NewLedger creates an empty ledger with no observed server value.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add registers an unconfirmed delta. A key already pending is ignored, so
// the same mutation applied twice counts once.
func (l *Ledger) Add(key string, amount int64) {
	for _, d := range l.pending {
		if d.Key == key {
			return
		}
	}
	l.pending = append(l.pending, Delta{Key: key, Amount: amount})
}

// Display returns the value to show: confirmed + sum of pending deltas.
// Before any server value is observed, pending deltas are provisional
// additions to zero.
func (l *Ledger) Display() int64 {
	v := l.confirmed
	for _, d := range l.pending {
		v += d.Amount
	}
	return v
}

// Pending returns the number of unconfirmed deltas.
func (l *Ledger) Pending() int {
	return len(l.pending)
}

// Observed reports whether a server value has ever been confirmed.
func (l *Ledger) Observed() bool {
	return l.observed
}

// Confirm folds an authoritative server value into the ledger. Deltas the
// server value already covers (server >= previous confirmed + delta, applied
// in order) are retired; the rest are kept. Each delta retires at most once.
func (l *Ledger) Confirm(server int64) {
	prev := l.confirmed
	kept := l.pending[:0]
	for _, d := range l.pending {
		if server >= prev+d.Amount {
			prev += d.Amount
			continue
		}
		kept = append(kept, d)
	}
	l.pending = kept
	l.confirmed = server
	l.observed = true
}

// LedgerSnapshot is the serializable form of a ledger, written whole into
// the cache so readers never see a partial state.
type LedgerSnapshot struct {
	Confirmed int64   `json:"confirmed"`
	Observed  bool    `json:"observed"`
	Pending   []Delta `json:"pending,omitempty"`
}

// Snapshot captures the ledger state.
func (l *Ledger) Snapshot() LedgerSnapshot {
	pending := make([]Delta, len(l.pending))
	copy(pending, l.pending)
	return LedgerSnapshot{Confirmed: l.confirmed, Observed: l.observed, Pending: pending}
}

// Restore replaces the ledger state with a snapshot (e.g. loaded from
// cache on startup).
func (l *Ledger) Restore(snap LedgerSnapshot) {
	l.confirmed = snap.Confirmed
	l.observed = snap.Observed
	l.pending = make([]Delta, len(snap.Pending))
	copy(l.pending, snap.Pending)
}
