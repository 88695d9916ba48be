package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"journal-backend/internal/domain"
	"journal-backend/internal/usecase"
)

// ToolsHandler exposes the stateless position-size calculators.
type ToolsHandler struct{}

func (h *ToolsHandler) Register(r gin.IRouter) {
	g := r.Group("/tools")
	g.POST("/forex-position-size", h.forex)
	g.POST("/crypto-futures-position-size", h.cryptoFutures)
}

type sizingRequest struct {
	AccountBalance *decimal.Decimal `json:"account_balance" binding:"required"`
	RiskPercent    *decimal.Decimal `json:"risk_percent" binding:"required"`
	EntryPrice     *decimal.Decimal `json:"entry_price" binding:"required"`
	StopLoss       *decimal.Decimal `json:"stop_loss" binding:"required"`
	Pair           string           `json:"pair"`
	Leverage       *decimal.Decimal `json:"leverage"`
	Direction      string           `json:"direction"`
}

func (h *ToolsHandler) forex(c *gin.Context) {
	var req sizingRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := usecase.ForexPositionSize(domain.ForexSizeInput{
		AccountBalance: *req.AccountBalance,
		RiskPercent:    *req.RiskPercent,
		EntryPrice:     *req.EntryPrice,
		StopLoss:       *req.StopLoss,
		Pair:           req.Pair,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"position_size_lots": res.PositionSizeLots.InexactFloat64(),
		"risk_amount":        res.RiskAmount.InexactFloat64(),
		"stop_loss_pips":     res.StopLossPips.InexactFloat64(),
	})
}

func (h *ToolsHandler) cryptoFutures(c *gin.Context) {
	var req sizingRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := usecase.CryptoFuturesPositionSize(domain.FuturesSizeInput{
		AccountBalance: *req.AccountBalance,
		RiskPercent:    *req.RiskPercent,
		EntryPrice:     *req.EntryPrice,
		StopLoss:       *req.StopLoss,
		Leverage:       req.Leverage,
		Direction:      req.Direction,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"position_size_units":    res.PositionSizeUnits.InexactFloat64(),
		"risk_amount":            res.RiskAmount.InexactFloat64(),
		"required_margin":        res.RequiredMargin.InexactFloat64(),
		"position_value":         res.PositionValue.InexactFloat64(),
		"liquidation_price":      res.LiquidationPrice.InexactFloat64(),
		"price_difference":       res.PriceDifference.InexactFloat64(),
		"suggested_leverage":     res.SuggestedLeverage,
		"suggested_fund_percent": res.SuggestedFundPercent.InexactFloat64(),
	})
}
