package reconcile

import (
	"context"

	"github.com/rs/zerolog"
)

// EventKind is the kind of change-feed delivery.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
)

// Event is one change-feed delivery scoped to a single owner's payment
// records. INSERT carries the full record; UPDATE carries the record id and
// the changed fields only.
type Event struct {
	Kind   EventKind
	ID     string
	Record *PaymentRecord // set on INSERT
	Patch  *PaymentPatch  // set on UPDATE
}

// FeedState is the listener's view of the owner's latest payment.
type FeedState struct {
	Latest     *PaymentRecord
	HasPending bool
	NeedsAck   bool
}

// Transition describes what an event did to the tracked payment.
type Transition struct {
	StatusChanged bool
	From          Status
	To            Status
}

// Reduce applies one feed event to the state and returns the new state and
// the observed transition. It is a pure function: no I/O, no UI framework.
//
// INSERT replaces the tracked record outright. UPDATE merges changed fields
// into the current record; an update referencing a different record id than
// the tracked one is ignored, since it cannot regress a state machine it
// does not own. A pending -> terminal transition flags NeedsAck.
func Reduce(state FeedState, ev Event) (FeedState, Transition) {
	switch ev.Kind {
	case EventInsert:
		if ev.Record == nil {
			return state, Transition{}
		}
		rec := *ev.Record
		state.Latest = &rec
		state.HasPending = rec.Status == StatusPending
		return state, Transition{}

	case EventUpdate:
		if state.Latest == nil || ev.Patch == nil || ev.ID != state.Latest.ID {
			return state, Transition{}
		}
		prev := state.Latest.Status
		merged := ev.Patch.Merge(*state.Latest)
		state.Latest = &merged
		state.HasPending = merged.Status == StatusPending

		if prev == StatusPending && merged.Status.IsTerminal() {
			state.NeedsAck = true
			return state, Transition{StatusChanged: true, From: prev, To: merged.Status}
		}
		return state, Transition{}
	}
	return state, Transition{}
}

// StatusChangeFunc is invoked when the tracked payment reaches a terminal
// status that has not yet been acknowledged.
type StatusChangeFunc func(rec PaymentRecord, transition Transition)

// Listener consumes an owner's change feed and maintains FeedState, keeping
// the cache current and suppressing already-acknowledged terminal records.
// Subscription failures are not retried here; reconnecting is the transport
// layer's responsibility.
type Listener struct {
	state    FeedState
	cache    *CacheStore
	acks     *AckTracker
	ownerKey string
	onChange StatusChangeFunc
	log      zerolog.Logger
}

// NewListener creates a Listener seeded from the cache so the first paint
// needs no network round-trip.
func NewListener(cache *CacheStore, acks *AckTracker, ownerKey string, onChange StatusChangeFunc, log zerolog.Logger) *Listener {
	l := &Listener{
		cache:    cache,
		acks:     acks,
		ownerKey: ownerKey,
		onChange: onChange,
		log:      log,
	}
	if rec := cache.LoadPayment(ownerKey); rec != nil {
		l.state.Latest = rec
		l.state.HasPending = rec.Status == StatusPending
		if rec.Status.IsTerminal() && !acks.Acknowledged(rec.ID) {
			l.state.NeedsAck = true
		}
	}
	return l
}

// State returns the current view.
func (l *Listener) State() FeedState {
	return l.state
}

// Seed replaces the tracked record from an authoritative read (initial load
// or app resume) and refreshes the cache. NeedsAck is recomputed against the
// acknowledgement tracker, not reset, so an unacknowledged terminal payment
// still blocks after a reload.
func (l *Listener) Seed(rec PaymentRecord) {
	r := rec
	l.state.Latest = &r
	l.state.HasPending = rec.Status == StatusPending
	l.state.NeedsAck = rec.Status.IsTerminal() && !l.acks.Acknowledged(rec.ID)
	l.cache.SavePayment(rec, l.ownerKey)
}

// Apply folds one feed event into the state.
func (l *Listener) Apply(ev Event) {
	next, transition := Reduce(l.state, ev)
	l.state = next

	if l.state.Latest != nil {
		l.cache.SavePayment(*l.state.Latest, l.ownerKey)
	}

	if transition.StatusChanged {
		rec := *l.state.Latest
		if l.acks.Acknowledged(rec.ID) {
			l.state.NeedsAck = false
			return
		}
		l.log.Info().
			Str("payment_id", rec.ID).
			Str("from", string(transition.From)).
			Str("to", string(transition.To)).
			Msg("payment status changed")
		if l.onChange != nil {
			l.onChange(rec, transition)
		}
	}
}

// Acknowledge records that the user has seen the current terminal status.
func (l *Listener) Acknowledge() {
	if l.state.Latest == nil {
		return
	}
	l.acks.Acknowledge(l.state.Latest.ID)
	l.state.NeedsAck = false
}

// Run consumes events until the channel closes or the context is cancelled.
// A closed channel means the transport dropped the subscription; the error
// belongs to the transport, so Run simply returns.
func (l *Listener) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				l.log.Debug().Msg("change feed closed")
				return
			}
			l.Apply(ev)
		}
	}
}
