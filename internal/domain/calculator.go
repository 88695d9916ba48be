package domain

import "github.com/shopspring/decimal"

type ForexSizeInput struct {
	AccountBalance decimal.Decimal `json:"account_balance"`
	RiskPercent    decimal.Decimal `json:"risk_percent"`
	EntryPrice     decimal.Decimal `json:"entry_price"`
	StopLoss       decimal.Decimal `json:"stop_loss"`
	Pair           string          `json:"pair"`
}

type ForexSizeResult struct {
	PositionSizeLots decimal.Decimal
	RiskAmount       decimal.Decimal
	StopLossPips     decimal.Decimal
}

type FuturesSizeInput struct {
	AccountBalance decimal.Decimal  `json:"account_balance"`
	RiskPercent    decimal.Decimal  `json:"risk_percent"`
	EntryPrice     decimal.Decimal  `json:"entry_price"`
	StopLoss       decimal.Decimal  `json:"stop_loss"`
	Leverage       *decimal.Decimal `json:"leverage"`
	Direction      string           `json:"direction"` // LONG or SHORT
}

type FuturesSizeResult struct {
	PositionSizeUnits    decimal.Decimal
	RiskAmount           decimal.Decimal
	RequiredMargin       decimal.Decimal
	PositionValue        decimal.Decimal
	LiquidationPrice     decimal.Decimal
	PriceDifference      decimal.Decimal
	SuggestedLeverage    int64
	SuggestedFundPercent decimal.Decimal
}
