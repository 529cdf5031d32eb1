package reconcile

const ackKey = "ack:payment"

// AckTracker records the last terminal payment the user explicitly
// dismissed, so a terminal status screen is shown exactly once. The marker
// is keyed by payment id: acknowledging one payment never suppresses a
// newer, different one.
type AckTracker struct {
	storage Storage
}

// NewAckTracker creates a tracker over the given storage.
func NewAckTracker(storage Storage) *AckTracker {
	return &AckTracker{storage: storage}
}

// Acknowledged reports whether the given payment id was already dismissed.
func (t *AckTracker) Acknowledged(paymentID string) bool {
	raw, err := t.storage.Get(ackKey)
	if err != nil || raw == nil {
		return false
	}
	return string(raw) == paymentID
}

// Acknowledge stores paymentID as the last-seen terminal payment.
func (t *AckTracker) Acknowledge(paymentID string) {
	_ = t.storage.Set(ackKey, []byte(paymentID))
}
