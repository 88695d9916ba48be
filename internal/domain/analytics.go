package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overview is the aggregate snapshot of a user's whole trade history.
type Overview struct {
	TotalTrades      int
	WinRate          decimal.Decimal
	ProfitFactor     decimal.Decimal
	AvgRR            decimal.Decimal
	TotalPnL         decimal.Decimal
	EquityCurve      []EquityPoint
	SessionBreakdown []GroupStat
	GradeBreakdown   []GroupStat
	MonthlyStats     []PeriodStat
	WeeklyStats      []PeriodStat
	CurrentBalance   decimal.Decimal
}

type EquityPoint struct {
	At      time.Time
	Balance decimal.Decimal
}

// GroupStat is one bucket of a session or grade breakdown.
type GroupStat struct {
	Key   string
	Count int
	PnL   decimal.Decimal
}

type PeriodStat struct {
	Period string
	// Start is the first local calendar day of the period, as midnight UTC.
	Start       time.Time
	TotalTrades int
	PnL         decimal.Decimal
	WinRate     decimal.Decimal
}

// DailyStat is one populated cell of the calendar heatmap.
type DailyStat struct {
	// Date is the local calendar day, as midnight UTC.
	Date        time.Time
	TotalPnL    decimal.Decimal
	TotalTrades int
	WinCount    int
	LossCount   int
}
