package redis

import (
	"context"
	"testing"
	"time"

	"zenfi-wallet/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeFeed_PublishSubscribeRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	feed := NewChangeFeed(client, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ownerID := uuid.New()
	events, err := feed.Subscribe(ctx, ownerID)
	require.NoError(t, err)

	payment := &domain.Payment{
		ID:        uuid.New(),
		ProfileID: ownerID,
		Amount:    25000,
		Status:    domain.PaymentStatusApproved,
	}
	err = feed.Publish(ctx, domain.ChangeEvent{
		Kind:       domain.ChangeUpdate,
		Entity:     domain.EntityPayment,
		OwnerID:    ownerID,
		Payment:    payment,
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	select {
	case got := <-events:
		assert.Equal(t, domain.ChangeUpdate, got.Kind)
		assert.Equal(t, domain.EntityPayment, got.Entity)
		assert.Equal(t, ownerID, got.OwnerID)
		require.NotNil(t, got.Payment)
		assert.Equal(t, payment.ID, got.Payment.ID)
		assert.Equal(t, domain.PaymentStatusApproved, got.Payment.Status)
	case <-ctx.Done():
		t.Fatal("timed out waiting for change event")
	}
}

func TestChangeFeed_OwnerChannelsAreIsolated(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	feed := NewChangeFeed(client, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ownerA := uuid.New()
	ownerB := uuid.New()

	events, err := feed.Subscribe(ctx, ownerA)
	require.NoError(t, err)

	// An event for another owner must not arrive on A's channel.
	err = feed.Publish(ctx, domain.ChangeEvent{
		Kind:       domain.ChangeInsert,
		Entity:     domain.EntityPayment,
		OwnerID:    ownerB,
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	err = feed.Publish(ctx, domain.ChangeEvent{
		Kind:       domain.ChangeInsert,
		Entity:     domain.EntityPayment,
		OwnerID:    ownerA,
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	select {
	case got := <-events:
		assert.Equal(t, ownerA, got.OwnerID, "only the subscriber's own events arrive")
	case <-ctx.Done():
		t.Fatal("timed out waiting for change event")
	}
}

func TestChangeFeed_SubscriptionClosesOnCancel(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	feed := NewChangeFeed(client, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	events, err := feed.Subscribe(ctx, uuid.New())
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel closes after cancellation")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
