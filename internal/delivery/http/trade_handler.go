package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"journal-backend/internal/domain"
	"journal-backend/internal/usecase"
)

// TradeHandler serves the journal ledger.
type TradeHandler struct {
	Trades *usecase.TradeService
}

func (h *TradeHandler) Register(r gin.IRouter) {
	g := r.Group("/trades")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PATCH("/:id", h.annotate)
	g.DELETE("/:id", h.delete)
}

type createTradeRequest struct {
	Pair          string           `json:"pair" binding:"required"`
	Direction     domain.Direction `json:"direction" binding:"required"`
	EntryPrice    *decimal.Decimal `json:"entry_price" binding:"required"`
	StopLoss      *decimal.Decimal `json:"stop_loss" binding:"required"`
	TakeProfit    *decimal.Decimal `json:"take_profit" binding:"required"`
	LotSize       *decimal.Decimal `json:"lot_size" binding:"required"`
	RiskPercent   *decimal.Decimal `json:"risk_percent" binding:"required"`
	RRActual      *decimal.Decimal `json:"rr_actual"`
	Result        domain.Result    `json:"result" binding:"required"`
	Session       domain.Session   `json:"session" binding:"required"`
	SetupType     string           `json:"setup_type" binding:"required"`
	Grade         domain.Grade     `json:"grade" binding:"required"`
	EmotionBefore string           `json:"emotion_before"`
	EmotionAfter  string           `json:"emotion_after"`
	MistakeFlag   bool             `json:"mistake_flag"`
	LossReason    *string          `json:"loss_reason"`
}

func (r createTradeRequest) input() usecase.CreateTradeInput {
	return usecase.CreateTradeInput{
		Pair:          r.Pair,
		Direction:     r.Direction,
		EntryPrice:    *r.EntryPrice,
		StopLoss:      *r.StopLoss,
		TakeProfit:    *r.TakeProfit,
		LotSize:       *r.LotSize,
		RiskPercent:   *r.RiskPercent,
		RRActual:      r.RRActual,
		Result:        r.Result,
		Session:       r.Session,
		SetupType:     r.SetupType,
		Grade:         r.Grade,
		EmotionBefore: r.EmotionBefore,
		EmotionAfter:  r.EmotionAfter,
		MistakeFlag:   r.MistakeFlag,
		LossReason:    r.LossReason,
	}
}

func (h *TradeHandler) create(c *gin.Context) {
	var req createTradeRequest
	if !bindJSON(c, &req) {
		return
	}
	trade, err := h.Trades.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, trade)
}

func (h *TradeHandler) list(c *gin.Context) {
	trades, err := h.Trades.List(c.Request.Context(), userID(c), usecase.ListTradesQuery{
		Month:    c.Query("month"),
		Pair:     c.Query("pair"),
		Session:  c.Query("session"),
		Grade:    c.Query("grade"),
		Result:   c.Query("result"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	if trades == nil {
		trades = []*domain.Trade{}
	}
	c.JSON(http.StatusOK, trades)
}

func (h *TradeHandler) get(c *gin.Context) {
	trade, err := h.Trades.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (h *TradeHandler) annotate(c *gin.Context) {
	var patch domain.TradeAnnotation
	if !bindJSON(c, &patch) {
		return
	}
	trade, err := h.Trades.Annotate(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (h *TradeHandler) delete(c *gin.Context) {
	if err := h.Trades.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
