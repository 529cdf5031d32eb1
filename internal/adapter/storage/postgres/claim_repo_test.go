package postgres

import (
	"context"
	"testing"
	"time"

	"zenfi-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClaimRepo(mock)
	c := &domain.Claim{
		ID:             uuid.New(),
		ProfileID:      uuid.New(),
		Amount:         10000,
		IdempotencyKey: "device-1-20250601",
		ClaimedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO claims").
		WithArgs(c.ID, c.ProfileID, c.Amount, c.IdempotencyKey, c.ClaimedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRepo_GetByIdempotencyKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClaimRepo(mock)
	c := &domain.Claim{
		ID:             uuid.New(),
		ProfileID:      uuid.New(),
		Amount:         10000,
		IdempotencyKey: "device-1-20250601",
		ClaimedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectQuery("SELECT .+ FROM claims WHERE profile_id").
		WithArgs(c.ProfileID, c.IdempotencyKey).
		WillReturnRows(pgxmock.NewRows([]string{"id", "profile_id", "amount", "idempotency_key", "claimed_at"}).
			AddRow(c.ID, c.ProfileID, c.Amount, c.IdempotencyKey, c.ClaimedAt))

	result, err := repo.GetByIdempotencyKey(context.Background(), c.ProfileID, c.IdempotencyKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRepo_GetByIdempotencyKey_None(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClaimRepo(mock)
	profileID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM claims WHERE profile_id").
		WithArgs(profileID, "unknown-key").
		WillReturnRows(pgxmock.NewRows([]string{"id", "profile_id", "amount", "idempotency_key", "claimed_at"}))

	result, err := repo.GetByIdempotencyKey(context.Background(), profileID, "unknown-key")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
