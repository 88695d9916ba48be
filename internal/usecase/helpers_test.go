package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/domain"
	"journal-backend/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	trades *repository.InMemoryTradeRepository
	users  *repository.InMemoryUserRepository
	user   *domain.User
	seq    int
}

func newFixture(t *testing.T, accountSize string) *fixture {
	t.Helper()
	f := &fixture{
		trades: repository.NewInMemoryTradeRepository(),
		users:  repository.NewInMemoryUserRepository(),
		user: &domain.User{
			ID:                  "user-1",
			Email:               "trader@example.com",
			FullName:            "Test Trader",
			SubscriptionPlan:    domain.PlanFree,
			AccountSize:         dec(accountSize),
			RiskPerTradePercent: dec("1"),
			IsActive:            true,
		},
	}
	require.NoError(t, f.users.Create(context.Background(), f.user))
	return f
}

// add stores a trade with a precomputed pnl, bypassing the derivation rule.
func (f *fixture) add(t *testing.T, at string, result domain.Result, pnl string, mutate ...func(*domain.Trade)) *domain.Trade {
	t.Helper()
	f.seq++
	tr := &domain.Trade{
		ID:          fmt.Sprintf("t%d", f.seq),
		UserID:      f.user.ID,
		Pair:        "EURUSD",
		Direction:   domain.DirectionBuy,
		EntryPrice:  dec("1.1"),
		StopLoss:    dec("1.09"),
		TakeProfit:  dec("1.12"),
		LotSize:     dec("1"),
		RiskPercent: dec("1"),
		RRPlanned:   dec("2"),
		Result:      result,
		PnL:         dec(pnl),
		Session:     domain.SessionLondon,
		SetupType:   "breakout",
		Grade:       domain.GradeAPlus,
		CreatedAt:   ts(at),
	}
	for _, m := range mutate {
		m(tr)
	}
	require.NoError(t, f.trades.Create(context.Background(), tr))
	return tr
}

func (f *fixture) analytics() *AnalyticsService {
	return NewAnalyticsService(f.trades, f.users, AnalyticsOptions{}, nil)
}
