package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/domain"
)

type recordingListener struct {
	mu     sync.Mutex
	events []domain.TradeEvent
}

func (l *recordingListener) OnTradeEvent(_ context.Context, ev domain.TradeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func validInput() CreateTradeInput {
	return CreateTradeInput{
		Pair:        "eurusd",
		Direction:   domain.DirectionBuy,
		EntryPrice:  dec("1.10000"),
		StopLoss:    dec("1.09000"),
		TakeProfit:  dec("1.12000"),
		LotSize:     dec("1.00"),
		RiskPercent: dec("1.00"),
		Result:      domain.ResultWin,
		Session:     domain.SessionLondon,
		SetupType:   "breakout",
		Grade:       domain.GradeAPlus,
	}
}

func newTradeService(f *fixture, listeners ...domain.TradeListener) *TradeService {
	svc := NewTradeService(f.trades, f.users, time.UTC, nil, listeners...)
	clock := ts("2024-04-01T09:00:00Z")
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestTradeService_CreateDerivesMetrics(t *testing.T) {
	f := newFixture(t, "10000")
	listener := &recordingListener{}
	svc := newTradeService(f, listener)

	tr, err := svc.Create(context.Background(), f.user.ID, validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "EURUSD", tr.Pair)
	assert.Equal(t, f.user.ID, tr.UserID)
	assert.Equal(t, "2", tr.RRPlanned.String())
	assert.Equal(t, "200", tr.PnL.String())

	stored, err := svc.Get(context.Background(), f.user.ID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.PnL.String(), stored.PnL.String())

	require.Len(t, listener.events, 1)
	assert.Equal(t, domain.EventTradeCreated, listener.events[0].Type)
	assert.Equal(t, f.user.ID, listener.events[0].UserID)
}

func TestTradeService_CreateResults(t *testing.T) {
	cases := []struct {
		name     string
		result   domain.Result
		rrActual *string
		wantPnL  string
	}{
		{"win uses planned rr", domain.ResultWin, nil, "200"},
		{"win uses actual rr", domain.ResultWin, strPtr("3.5"), "350"},
		{"zero actual rr falls back to planned", domain.ResultWin, strPtr("0"), "200"},
		{"loss", domain.ResultLoss, strPtr("3"), "-100"},
		{"break even", domain.ResultBreakEven, nil, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "10000")
			in := validInput()
			in.Result = tc.result
			if tc.rrActual != nil {
				in.RRActual = decPtr(*tc.rrActual)
			}
			tr, err := newTradeService(f).Create(context.Background(), f.user.ID, in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPnL, tr.PnL.String())
		})
	}
}

func TestTradeService_CreateValidation(t *testing.T) {
	cases := map[string]func(*CreateTradeInput){
		"missing pair":      func(in *CreateTradeInput) { in.Pair = " " },
		"long pair":         func(in *CreateTradeInput) { in.Pair = "ABCDEFGHIJKLMNOPQRSTU" },
		"bad direction":     func(in *CreateTradeInput) { in.Direction = "LONG" },
		"bad result":        func(in *CreateTradeInput) { in.Result = "DRAW" },
		"bad session":       func(in *CreateTradeInput) { in.Session = "TOKYO" },
		"bad grade":         func(in *CreateTradeInput) { in.Grade = "C" },
		"missing setup":     func(in *CreateTradeInput) { in.SetupType = "" },
		"too many decimals": func(in *CreateTradeInput) { in.EntryPrice = dec("1.123456") },
		"negative lot":      func(in *CreateTradeInput) { in.LotSize = dec("-1") },
		"risk too large":    func(in *CreateTradeInput) { in.RiskPercent = dec("1000") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, "10000")
			listener := &recordingListener{}
			in := validInput()
			mutate(&in)

			_, err := newTradeService(f, listener).Create(context.Background(), f.user.ID, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, listener.events)
		})
	}
}

func TestTradeService_PnLFrozenAfterAccountChange(t *testing.T) {
	f := newFixture(t, "10000")
	svc := newTradeService(f)

	tr, err := svc.Create(context.Background(), f.user.ID, validInput())
	require.NoError(t, err)

	f.user.AccountSize = dec("50000")
	require.NoError(t, f.users.Update(context.Background(), f.user))

	stored, err := svc.Get(context.Background(), f.user.ID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "200", stored.PnL.String())

	second, err := svc.Create(context.Background(), f.user.ID, validInput())
	require.NoError(t, err)
	assert.Equal(t, "1000", second.PnL.String())
}

func TestTradeService_ListFilters(t *testing.T) {
	f := newFixture(t, "10000")
	svc := newTradeService(f)
	ctx := context.Background()

	win, err := svc.Create(ctx, f.user.ID, validInput())
	require.NoError(t, err)

	loss := validInput()
	loss.Pair = "GBPJPY"
	loss.Result = domain.ResultLoss
	loss.Session = domain.SessionAsian
	loss.SetupType = "reversal"
	_, err = svc.Create(ctx, f.user.ID, loss)
	require.NoError(t, err)

	all, err := svc.List(ctx, f.user.ID, ListTradesQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "GBPJPY", all[0].Pair, "newest first by default")

	asc, err := svc.List(ctx, f.user.ID, ListTradesQuery{Ordering: "created_at"})
	require.NoError(t, err)
	assert.Equal(t, win.ID, asc[0].ID)

	byPnL, err := svc.List(ctx, f.user.ID, ListTradesQuery{Ordering: "-pnl"})
	require.NoError(t, err)
	assert.Equal(t, win.ID, byPnL[0].ID)

	asian, err := svc.List(ctx, f.user.ID, ListTradesQuery{Session: "asian"})
	require.NoError(t, err)
	require.Len(t, asian, 1)
	assert.Equal(t, "GBPJPY", asian[0].Pair)

	search, err := svc.List(ctx, f.user.ID, ListTradesQuery{Search: "BREAK"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, win.ID, search[0].ID)

	april, err := svc.List(ctx, f.user.ID, ListTradesQuery{Month: "2024-04"})
	require.NoError(t, err)
	assert.Len(t, april, 2)

	may, err := svc.List(ctx, f.user.ID, ListTradesQuery{Month: "2024-05"})
	require.NoError(t, err)
	assert.Empty(t, may)

	_, err = svc.List(ctx, f.user.ID, ListTradesQuery{Grade: "C"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other, err := svc.List(ctx, "someone-else", ListTradesQuery{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTradeService_AnnotateAndDelete(t *testing.T) {
	f := newFixture(t, "10000")
	listener := &recordingListener{}
	svc := newTradeService(f, listener)
	ctx := context.Background()

	tr, err := svc.Create(ctx, f.user.ID, validInput())
	require.NoError(t, err)

	mistake := true
	reason := "moved stop"
	updated, err := svc.Annotate(ctx, f.user.ID, tr.ID, domain.TradeAnnotation{
		EmotionAfter: strPtr("calm"),
		MistakeFlag:  &mistake,
		LossReason:   &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, "calm", updated.EmotionAfter)
	assert.True(t, updated.MistakeFlag)
	require.NotNil(t, updated.LossReason)
	assert.Equal(t, "200", updated.PnL.String())

	_, err = svc.Annotate(ctx, f.user.ID, tr.ID, domain.TradeAnnotation{SetupType: strPtr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Annotate(ctx, "intruder", tr.ID, domain.TradeAnnotation{EmotionAfter: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "intruder", tr.ID), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, f.user.ID, tr.ID))

	_, err = svc.Get(ctx, f.user.ID, tr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, listener.events, 2)
	assert.Equal(t, domain.EventTradeDeleted, listener.events[1].Type)
	assert.Equal(t, tr.ID, listener.events[1].Trade.ID)
}

func strPtr(s string) *string { return &s }
