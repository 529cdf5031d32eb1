package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ChangeFeed implements ports.FeedPublisher over Redis pub/sub. Each owner
// has their own channel, so subscribers never see another account's events.
type ChangeFeed struct {
	client *goredis.Client
	log    zerolog.Logger
}

// NewChangeFeed creates a Redis-backed change feed.
func NewChangeFeed(client *goredis.Client, log zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, log: log}
}

// Publish sends a change event to the owner's channel. Publishing to a
// channel with no subscribers is not an error; offline clients catch up from
// an authoritative read on reconnect.
func (f *ChangeFeed) Publish(ctx context.Context, event domain.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	channel := domain.FeedChannel(event.OwnerID)
	if err := f.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	f.log.Debug().
		Str("channel", channel).
		Str("kind", string(event.Kind)).
		Str("entity", event.Entity).
		Msg("change event published")
	return nil
}

// Subscribe opens the owner's channel and returns a stream of decoded
// events. The channel closes when ctx is cancelled or the subscription
// drops; reconnecting is the caller's responsibility.
func (f *ChangeFeed) Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan domain.ChangeEvent, error) {
	sub := f.client.Subscribe(ctx, domain.FeedChannel(ownerID))

	// Confirm the subscription before handing out the channel.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe change feed: %w", err)
	}

	events := make(chan domain.ChangeEvent)
	go func() {
		defer close(events)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event domain.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					f.log.Warn().Err(err).Msg("dropping malformed change event")
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
