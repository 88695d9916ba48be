package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/domain"
)

func TestInMemoryUserRepository(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	u := &domain.User{ID: "u1", Email: "Trader@example.com", AccountSize: decimal.NewFromInt(100)}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u2", Email: "trader@EXAMPLE.com"}), domain.ErrConflict)

	got, err := repo.GetByEmail(ctx, "TRADER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got.AccountSize = decimal.NewFromInt(500)
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "500", again.AccountSize.String())

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.User{ID: "missing"}), domain.ErrNotFound)
	assert.NoError(t, repo.Ping(ctx))
}
