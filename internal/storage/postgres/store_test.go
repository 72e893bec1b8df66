package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/echeque-service/internal/models"
	"github.com/sheikh-saqib/echeque-service/internal/storage"
)

// newTestStore connects to the database named by ECHEQUE_TEST_DATABASE_URL,
// skipping the test when it is not set.
func newTestStore(t *testing.T) *PostgresChequeStore {
	t.Helper()
	dsn := os.Getenv("ECHEQUE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ECHEQUE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = Migrate(ctx, db)
	require.NoError(t, err)

	// Running again is a no-op.
	n, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	return NewPostgresChequeStore(db)
}

func sampleCheque() models.Cheque {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return models.Cheque{
		ID:         uuid.New().String(),
		Sender:     "A",
		Receiver:   "B",
		Amount:     decimal.RequireFromString("100.25"),
		ChequeDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := sampleCheque()

	require.NoError(t, s.Create(ctx, c))
	assert.ErrorIs(t, s.Create(ctx, c), storage.ErrAlreadyExists)

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Sender, got.Sender)
	assert.True(t, got.Amount.Equal(c.Amount))
	assert.Equal(t, c.ChequeDate, got.ChequeDate)
	assert.Equal(t, c.ExpiryDate, got.ExpiryDate)
	assert.Equal(t, models.StatusPending, got.Status)

	require.NoError(t, s.UpdateStatus(ctx, c.ID, models.StatusPending, models.StatusSigned, time.Now()))
	assert.ErrorIs(t, s.UpdateStatus(ctx, c.ID, models.StatusPending, models.StatusCancelled, time.Now()), storage.ErrConflict)
	got, err = s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSigned, got.Status)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, uuid.New().String(), models.StatusPending, models.StatusSigned, time.Now()), storage.ErrNotFound)
}
