package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-backend/internal/domain"
	"journal-backend/internal/usecase"
)

const (
	equityTimeLayout = "2006-01-02 15:04"
	dateLayout       = "2006-01-02"
)

type AnalyticsHandler struct {
	Analytics *usecase.AnalyticsService
}

func (h *AnalyticsHandler) Register(r gin.IRouter) {
	g := r.Group("/analytics")
	g.GET("/overview", h.overview)
	g.GET("/daily-calendar", h.dailyCalendar)
}

func (h *AnalyticsHandler) overview(c *gin.Context) {
	ov, err := h.Analytics.Overview(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newOverviewResponse(ov))
}

func (h *AnalyticsHandler) dailyCalendar(c *gin.Context) {
	days, err := h.Analytics.DailyCalendar(c.Request.Context(), userID(c), c.Query("month"))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]dailyStatResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dailyStatResponse{
			Date:        d.Date.Format(dateLayout),
			TotalPnL:    d.TotalPnL.InexactFloat64(),
			TotalTrades: d.TotalTrades,
			WinCount:    d.WinCount,
			LossCount:   d.LossCount,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Response DTOs are the only place decimals become floats.

type overviewResponse struct {
	TotalTrades      int                  `json:"total_trades"`
	WinRate          float64              `json:"win_rate"`
	ProfitFactor     float64              `json:"profit_factor"`
	AvgRR            float64              `json:"avg_rr"`
	TotalPnL         float64              `json:"total_pnl"`
	EquityCurve      []equityPoint        `json:"equity_curve"`
	SessionBreakdown []sessionStat        `json:"session_breakdown"`
	GradeBreakdown   []gradeStat          `json:"grade_breakdown"`
	MonthlyStats     []periodStatResponse `json:"monthly_stats"`
	WeeklyStats      []periodStatResponse `json:"weekly_stats"`
	CurrentBalance   float64              `json:"current_balance"`
}

type equityPoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

type sessionStat struct {
	Session string  `json:"session"`
	Count   int     `json:"count"`
	PnL     float64 `json:"pnl"`
}

type gradeStat struct {
	Grade string  `json:"grade"`
	Count int     `json:"count"`
	PnL   float64 `json:"pnl"`
}

type periodStatResponse struct {
	Period      string  `json:"period"`
	TotalTrades int     `json:"total_trades"`
	PnL         float64 `json:"pnl"`
	WinRate     float64 `json:"win_rate"`
}

type dailyStatResponse struct {
	Date        string  `json:"date"`
	TotalPnL    float64 `json:"total_pnl"`
	TotalTrades int     `json:"total_trades"`
	WinCount    int     `json:"win_count"`
	LossCount   int     `json:"loss_count"`
}

func newOverviewResponse(ov domain.Overview) overviewResponse {
	out := overviewResponse{
		TotalTrades:      ov.TotalTrades,
		WinRate:          ov.WinRate.InexactFloat64(),
		ProfitFactor:     ov.ProfitFactor.InexactFloat64(),
		AvgRR:            ov.AvgRR.InexactFloat64(),
		TotalPnL:         ov.TotalPnL.InexactFloat64(),
		EquityCurve:      make([]equityPoint, 0, len(ov.EquityCurve)),
		SessionBreakdown: make([]sessionStat, 0, len(ov.SessionBreakdown)),
		GradeBreakdown:   make([]gradeStat, 0, len(ov.GradeBreakdown)),
		MonthlyStats:     periodStats(ov.MonthlyStats),
		WeeklyStats:      periodStats(ov.WeeklyStats),
		CurrentBalance:   ov.CurrentBalance.InexactFloat64(),
	}
	for _, p := range ov.EquityCurve {
		out.EquityCurve = append(out.EquityCurve, equityPoint{
			Date:    p.At.Format(equityTimeLayout),
			Balance: p.Balance.InexactFloat64(),
		})
	}
	for _, g := range ov.SessionBreakdown {
		out.SessionBreakdown = append(out.SessionBreakdown, sessionStat{Session: g.Key, Count: g.Count, PnL: g.PnL.InexactFloat64()})
	}
	for _, g := range ov.GradeBreakdown {
		out.GradeBreakdown = append(out.GradeBreakdown, gradeStat{Grade: g.Key, Count: g.Count, PnL: g.PnL.InexactFloat64()})
	}
	return out
}

func periodStats(in []domain.PeriodStat) []periodStatResponse {
	out := make([]periodStatResponse, 0, len(in))
	for _, p := range in {
		out = append(out, periodStatResponse{
			Period:      p.Period,
			TotalTrades: p.TotalTrades,
			PnL:         p.PnL.InexactFloat64(),
			WinRate:     p.WinRate.InexactFloat64(),
		})
	}
	return out
}
