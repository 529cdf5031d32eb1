package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"zenfi-wallet/pkg/reconcile"
)

// StreamEvent is one demultiplexed change-feed delivery. Exactly one of
// Payment and Balance is set: Payment carries a record change for the
// reconcile listener, Balance carries a confirmed server balance for the
// ledger.
type StreamEvent struct {
	Payment *reconcile.Event
	Balance *int64
}

// changeWire mirrors the JSON the server writes on the "change" SSE event.
type changeWire struct {
	Kind    string `json:"kind"`
	Entity  string `json:"entity"`
	OwnerID string `json:"owner_id"`
	Payment *struct {
		ID              string     `json:"id"`
		ProfileID       string     `json:"profile_id"`
		Amount          int64      `json:"amount"`
		Status          string     `json:"status"`
		ReceiptURL      *string    `json:"receipt_url"`
		RejectionReason *string    `json:"rejection_reason"`
		CreatedAt       time.Time  `json:"created_at"`
		UpdatedAt       *time.Time `json:"updated_at"`
	} `json:"payment,omitempty"`
	Balance *int64 `json:"balance,omitempty"`
}

// Stream opens the server-sent event feed and delivers change events until
// the context is cancelled or the connection drops. The returned channel is
// closed on exit; callers that want a resilient feed reconnect in a loop.
func (c *Client) Stream(ctx context.Context) (<-chan StreamEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/stream", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// The stream outlives the client's default request timeout.
	streamClient := &http.Client{Timeout: 0}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		var eventName, data string
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				if eventName == "change" && data != "" {
					if ev, ok := parseChange(data); ok {
						select {
						case out <- ev:
						case <-ctx.Done():
							return
						}
					} else {
						c.log.Warn().Str("data", data).Msg("dropping unparseable feed event")
					}
				}
				eventName, data = "", ""
			case strings.HasPrefix(line, "event:"):
				eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("event stream closed")
		}
	}()
	return out, nil
}

func parseChange(data string) (StreamEvent, bool) {
	var w changeWire
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return StreamEvent{}, false
	}

	switch w.Entity {
	case "profiles":
		if w.Balance == nil {
			return StreamEvent{}, false
		}
		return StreamEvent{Balance: w.Balance}, true
	case "payments":
		if w.Payment == nil {
			return StreamEvent{}, false
		}
		ev, err := paymentEvent(w)
		if err != nil {
			return StreamEvent{}, false
		}
		return StreamEvent{Payment: &ev}, true
	default:
		return StreamEvent{}, false
	}
}

func paymentEvent(w changeWire) (reconcile.Event, error) {
	p := w.Payment
	switch w.Kind {
	case string(reconcile.EventInsert):
		rec := reconcile.PaymentRecord{
			ID:        p.ID,
			OwnerID:   p.ProfileID,
			Amount:    p.Amount,
			Status:    reconcile.Status(p.Status),
			CreatedAt: p.CreatedAt,
		}
		if p.ReceiptURL != nil {
			rec.ReceiptURL = *p.ReceiptURL
		}
		if p.UpdatedAt != nil {
			rec.UpdatedAt = *p.UpdatedAt
		}
		return reconcile.Event{Kind: reconcile.EventInsert, ID: p.ID, Record: &rec}, nil
	case string(reconcile.EventUpdate):
		status := reconcile.Status(p.Status)
		patch := reconcile.PaymentPatch{
			Status:          &status,
			RejectionReason: p.RejectionReason,
			UpdatedAt:       p.UpdatedAt,
		}
		return reconcile.Event{Kind: reconcile.EventUpdate, ID: p.ID, Patch: &patch}, nil
	default:
		return reconcile.Event{}, fmt.Errorf("unknown change kind %q", w.Kind)
	}
}
