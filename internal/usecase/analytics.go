package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"journal-backend/internal/domain"
)

const (
	defaultWeeklyWindow = 12
	monthLabelLayout    = "Jan 2006"
)

var (
	hundred = decimal.NewFromInt(100)

	// profitFactorFloor stands in for an empty gross profit or gross loss so
	// the ratio stays finite. A loss-only history therefore reports 0.01/loss
	// and a win-only history reports profit/0.01.
	profitFactorFloor = decimal.New(1, -2)
)

// AnalyticsService derives statistics from the trade ledger on every call.
// It holds no state between requests.
type AnalyticsService struct {
	trades       domain.TradeRepository
	users        domain.UserRepository
	loc          *time.Location
	weeklyWindow int
	logger       *zap.Logger
}

type AnalyticsOptions struct {
	// Location decides calendar days, months and weeks. Defaults to UTC.
	Location *time.Location
	// WeeklyWindow is how many of the most recent weeks to report. Defaults to 12.
	WeeklyWindow int
}

func NewAnalyticsService(trades domain.TradeRepository, users domain.UserRepository, opts AnalyticsOptions, logger *zap.Logger) *AnalyticsService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.WeeklyWindow <= 0 {
		opts.WeeklyWindow = defaultWeeklyWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		trades:       trades,
		users:        users,
		loc:          opts.Location,
		weeklyWindow: opts.WeeklyWindow,
		logger:       logger,
	}
}

// Overview summarizes the user's entire trade history. The equity curve is
// seeded from the user's current account size, so it is a relative
// reconstruction rather than the historical balance.
func (s *AnalyticsService) Overview(ctx context.Context, userID string) (domain.Overview, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Overview{}, fmt.Errorf("load user: %w", err)
	}

	trades, err := s.trades.List(ctx, userID, domain.TradeFilter{Ordering: domain.OrderCreatedAsc})
	if err != nil {
		return domain.Overview{}, fmt.Errorf("list trades: %w", err)
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].CreatedAt.Before(trades[j].CreatedAt) })

	return buildOverview(trades, user.AccountSize, s.loc, s.weeklyWindow), nil
}

// DailyCalendar returns one entry per date that has trades, ascending. month
// is "YYYY-MM"; anything unparseable is ignored and the full history is used.
func (s *AnalyticsService) DailyCalendar(ctx context.Context, userID, month string) ([]domain.DailyStat, error) {
	filter := domain.TradeFilter{Ordering: domain.OrderCreatedAsc}
	if ym, ok := domain.ParseMonth(month); ok {
		from, until := ym.Bounds(s.loc)
		filter.From = &from
		filter.Until = &until
	} else if month != "" {
		s.logger.Debug("ignoring malformed month filter", zap.String("month", month))
	}

	trades, err := s.trades.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	return buildDailyCalendar(trades, s.loc), nil
}

// buildOverview expects trades in ascending CreatedAt order.
func buildOverview(trades []*domain.Trade, accountSize decimal.Decimal, loc *time.Location, weeklyWindow int) domain.Overview {
	ov := domain.Overview{
		WinRate:          decimal.Zero,
		ProfitFactor:     decimal.Zero,
		AvgRR:            decimal.Zero,
		TotalPnL:         decimal.Zero,
		EquityCurve:      []domain.EquityPoint{},
		SessionBreakdown: []domain.GroupStat{},
		GradeBreakdown:   []domain.GroupStat{},
		MonthlyStats:     []domain.PeriodStat{},
		WeeklyStats:      []domain.PeriodStat{},
		CurrentBalance:   accountSize.Round(2),
	}
	if len(trades) == 0 {
		return ov
	}

	var (
		wins        int
		sumRR       = decimal.Zero
		grossProfit = decimal.Zero
		grossLoss   = decimal.Zero
		balance     = accountSize
		sessions    = newGrouper()
		grades      = newGrouper()
		months      = newPeriodBuckets()
		weeks       = newPeriodBuckets()
	)

	ov.EquityCurve = make([]domain.EquityPoint, 0, len(trades))
	for _, t := range trades {
		win := t.Result == domain.ResultWin
		if win {
			wins++
		}
		ov.TotalPnL = ov.TotalPnL.Add(t.PnL)
		sumRR = sumRR.Add(t.RRPlanned)

		switch t.PnL.Sign() {
		case 1:
			grossProfit = grossProfit.Add(t.PnL)
		case -1:
			grossLoss = grossLoss.Add(t.PnL.Abs())
		}

		balance = balance.Add(t.PnL)
		ov.EquityCurve = append(ov.EquityCurve, domain.EquityPoint{At: t.CreatedAt.In(loc), Balance: balance.Round(2)})

		sessions.add(string(t.Session), t.PnL)
		grades.add(string(t.Grade), t.PnL)

		local := t.CreatedAt.In(loc)
		months.add(monthStart(local), t.PnL, win)
		weeks.add(weekStart(local), t.PnL, win)
	}

	total := len(trades)
	ov.TotalTrades = total
	ov.WinRate = percent(wins, total)
	ov.AvgRR = sumRR.Div(decimal.NewFromInt(int64(total))).Round(2)

	if grossProfit.IsZero() {
		grossProfit = profitFactorFloor
	}
	if grossLoss.IsZero() {
		grossLoss = profitFactorFloor
	}
	ov.ProfitFactor = grossProfit.Div(grossLoss).Round(2)

	ov.SessionBreakdown = sessions.stats
	ov.GradeBreakdown = grades.stats
	ov.MonthlyStats = months.ascending(func(start time.Time) string { return start.Format(monthLabelLayout) })
	ov.WeeklyStats = weeks.latest(weeklyWindow, weekLabel)
	ov.CurrentBalance = balance.Round(2)

	return ov
}

func buildDailyCalendar(trades []*domain.Trade, loc *time.Location) []domain.DailyStat {
	index := make(map[time.Time]int)
	days := make([]domain.DailyStat, 0)

	for _, t := range trades {
		local := t.CreatedAt.In(loc)
		day := domain.CivilDate(local)

		i, ok := index[day]
		if !ok {
			i = len(days)
			index[day] = i
			days = append(days, domain.DailyStat{Date: day, TotalPnL: decimal.Zero})
		}

		d := &days[i]
		d.TotalTrades++
		d.TotalPnL = d.TotalPnL.Add(t.PnL)
		switch t.Result {
		case domain.ResultWin:
			d.WinCount++
		case domain.ResultLoss:
			d.LossCount++
		}
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// percent returns round(part/whole*100, 2), or 0 when whole is 0.
func percent(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).Round(2)
}

// monthStart and weekStart return civil dates (midnight UTC) so that bucket
// keys follow the local calendar regardless of DST transitions.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// weekStart truncates t to the Monday that opens its ISO week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return domain.CivilDate(t).AddDate(0, 0, -offset)
}

func weekLabel(start time.Time) string {
	_, week := start.ISOWeek()
	return fmt.Sprintf("Week %02d", week)
}

// grouper accumulates count and pnl per key in first-seen order.
type grouper struct {
	index map[string]int
	stats []domain.GroupStat
}

func newGrouper() *grouper {
	return &grouper{index: make(map[string]int), stats: []domain.GroupStat{}}
}

func (g *grouper) add(key string, pnl decimal.Decimal) {
	i, ok := g.index[key]
	if !ok {
		i = len(g.stats)
		g.index[key] = i
		g.stats = append(g.stats, domain.GroupStat{Key: key, PnL: decimal.Zero})
	}
	g.stats[i].Count++
	g.stats[i].PnL = g.stats[i].PnL.Add(pnl)
}

type periodBucket struct {
	start time.Time
	total int
	wins  int
	pnl   decimal.Decimal
}

type periodBuckets struct {
	byStart map[time.Time]*periodBucket
}

func newPeriodBuckets() *periodBuckets {
	return &periodBuckets{byStart: make(map[time.Time]*periodBucket)}
}

func (p *periodBuckets) add(start time.Time, pnl decimal.Decimal, win bool) {
	b, ok := p.byStart[start]
	if !ok {
		b = &periodBucket{start: start, pnl: decimal.Zero}
		p.byStart[start] = b
	}
	b.total++
	b.pnl = b.pnl.Add(pnl)
	if win {
		b.wins++
	}
}

func (p *periodBuckets) sorted() []*periodBucket {
	out := make([]*periodBucket, 0, len(p.byStart))
	for _, b := range p.byStart {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}

func (p *periodBuckets) ascending(label func(time.Time) string) []domain.PeriodStat {
	return toPeriodStats(p.sorted(), label)
}

// latest keeps the n most recent buckets, still in ascending order.
func (p *periodBuckets) latest(n int, label func(time.Time) string) []domain.PeriodStat {
	buckets := p.sorted()
	if len(buckets) > n {
		buckets = buckets[len(buckets)-n:]
	}
	return toPeriodStats(buckets, label)
}

func toPeriodStats(buckets []*periodBucket, label func(time.Time) string) []domain.PeriodStat {
	stats := make([]domain.PeriodStat, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, domain.PeriodStat{
			Period:      label(b.start),
			Start:       b.start,
			TotalTrades: b.total,
			PnL:         b.pnl,
			WinRate:     percent(b.wins, b.total),
		})
	}
	return stats
}
