package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/domain"
	"journal-backend/internal/infrastructure/db"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `\_`, escapeLike("_"))
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "breakout", escapeLike("breakout"))
}

// openTestPool connects to TJ_DB_URL and migrates the schema. Tests using it
// are skipped when no database is configured.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TJ_DB_URL")
	if url == "" {
		t.Skip("TJ_DB_URL not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, url, db.DefaultPoolConfig())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

func createPostgresUser(t *testing.T, pool *pgxpool.Pool) *domain.User {
	t.Helper()
	id := uuid.NewString()
	u := &domain.User{
		ID:                  id,
		Email:               "pg-" + id + "@example.com",
		FullName:            "Postgres Trader",
		PasswordHash:        "x",
		SubscriptionPlan:    domain.PlanFree,
		AccountSize:         decimal.RequireFromString("10000.50"),
		RiskPerTradePercent: decimal.RequireFromString("1.25"),
		IsActive:            true,
		CreatedAt:           time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, NewPostgresUserRepository(pool).Create(context.Background(), u))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `delete from users where id = $1`, id)
	})
	return u
}

func TestPostgresUserRepository(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewPostgresUserRepository(pool)
	u := createPostgresUser(t, pool)

	got, err := repo.GetByEmail(ctx, "PG-"+u.ID+"@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.AccountSize.Equal(u.AccountSize))
	assert.True(t, got.RiskPerTradePercent.Equal(u.RiskPerTradePercent))

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrConflict)

	got.AccountSize = decimal.RequireFromString("12000")
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "12000", again.AccountSize.String())

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, repo.Ping(ctx))
}

func TestPostgresTradeRepository_ReadPath(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewPostgresTradeRepository(pool)
	u := createPostgresUser(t, pool)

	same := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rr := decimal.RequireFromString("2.50")
	reason := "moved stop"

	first := newTrade("pg-first-"+u.ID, u.ID, same, "200.00")
	first.Direction = domain.DirectionBuy
	first.EntryPrice = decimal.RequireFromString("1.08765")
	first.StopLoss = decimal.RequireFromString("1.08265")
	first.TakeProfit = decimal.RequireFromString("1.09765")
	first.LotSize = decimal.RequireFromString("0.50")
	first.RiskPercent = decimal.RequireFromString("1")
	first.RRPlanned = decimal.RequireFromString("2")
	first.RRActual = &rr

	second := newTrade("pg-second-"+u.ID, u.ID, same, "-100")
	second.Direction = domain.DirectionSell
	second.Result = domain.ResultLoss
	second.SetupType = "range_fade"
	second.LossReason = &reason

	early := newTrade("pg-early-"+u.ID, u.ID, same.Add(-time.Hour), "0")
	early.Direction = domain.DirectionBuy
	early.Result = domain.ResultBreakEven

	next := newTrade("pg-april-"+u.ID, u.ID, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "10")
	next.Direction = domain.DirectionBuy

	for _, tr := range []*domain.Trade{first, second, early, next} {
		require.NoError(t, repo.Create(ctx, tr))
	}

	got, err := repo.GetByID(ctx, u.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.08765", got.EntryPrice.String())
	assert.True(t, got.PnL.Equal(first.PnL))
	assert.True(t, got.LotSize.Equal(first.LotSize))
	require.NotNil(t, got.RRActual)
	assert.True(t, got.RRActual.Equal(rr))
	assert.Nil(t, got.LossReason)
	assert.True(t, got.CreatedAt.Equal(same))

	_, err = repo.GetByID(ctx, uuid.NewString(), first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	asc, err := repo.List(ctx, u.ID, domain.TradeFilter{Ordering: domain.OrderCreatedAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{early.ID, first.ID, second.ID, next.ID}, ids(asc))

	desc, err := repo.List(ctx, u.ID, domain.TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{next.ID, first.ID, second.ID, early.ID}, ids(desc))

	from, until := domain.YearMonth{Year: 2024, Month: time.March}.Bounds(time.UTC)
	march, err := repo.List(ctx, u.ID, domain.TradeFilter{From: &from, Until: &until, Ordering: domain.OrderCreatedAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{early.ID, first.ID, second.ID}, ids(march))

	losses, err := repo.List(ctx, u.ID, domain.TradeFilter{Result: domain.ResultLoss})
	require.NoError(t, err)
	require.Len(t, losses, 1)
	require.NotNil(t, losses[0].LossReason)
	assert.Equal(t, reason, *losses[0].LossReason)

	fades, err := repo.List(ctx, u.ID, domain.TradeFilter{Search: "FADE"})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids(fades))

	// "_" is literal, as in the in-memory store
	underscore, err := repo.List(ctx, u.ID, domain.TradeFilter{Search: "_"})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids(underscore))
	percent, err := repo.List(ctx, u.ID, domain.TradeFilter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, percent)

	got.SetupType = "retest"
	got.MistakeFlag = true
	require.NoError(t, repo.UpdateAnnotation(ctx, got))
	annotated, err := repo.GetByID(ctx, u.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "retest", annotated.SetupType)
	assert.True(t, annotated.MistakeFlag)
	assert.True(t, annotated.PnL.Equal(first.PnL))

	require.NoError(t, repo.Delete(ctx, u.ID, early.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID, early.ID), domain.ErrNotFound)
}
