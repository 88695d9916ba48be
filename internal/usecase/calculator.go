package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"journal-backend/internal/domain"
)

var (
	pipsPerUnit    = decimal.NewFromInt(10000)
	pipsPerUnitJPY = decimal.NewFromInt(100)
	pipValue       = decimal.NewFromInt(10)
	pipValueJPY    = decimal.RequireFromString("9.13")
)

// ForexPositionSize sizes a forex position in standard lots so that hitting
// the stop loses risk% of the balance.
func ForexPositionSize(in domain.ForexSizeInput) (domain.ForexSizeResult, error) {
	riskAmount := in.AccountBalance.Mul(in.RiskPercent).Div(hundred)
	diff := in.EntryPrice.Sub(in.StopLoss).Abs()

	pips, value := diff.Mul(pipsPerUnit), pipValue
	if strings.Contains(strings.ToUpper(in.Pair), "JPY") {
		pips, value = diff.Mul(pipsPerUnitJPY), pipValueJPY
	}
	if pips.IsZero() {
		return domain.ForexSizeResult{}, domain.ErrStopEqualsEntry
	}

	return domain.ForexSizeResult{
		PositionSizeLots: riskAmount.Div(pips.Mul(value)).RoundBank(2),
		RiskAmount:       riskAmount.RoundBank(2),
		StopLossPips:     pips.RoundBank(1),
	}, nil
}

// CryptoFuturesPositionSize sizes a linear futures position and reports the
// margin and liquidation price at the chosen leverage, plus the smallest
// whole leverage the position fits under.
func CryptoFuturesPositionSize(in domain.FuturesSizeInput) (domain.FuturesSizeResult, error) {
	leverage := decimal.NewFromInt(1)
	if in.Leverage != nil {
		leverage = *in.Leverage
	}
	if !leverage.IsPositive() {
		return domain.FuturesSizeResult{}, fmt.Errorf("leverage must be positive: %w", domain.ErrInvalidInput)
	}
	if in.AccountBalance.IsZero() {
		return domain.FuturesSizeResult{}, fmt.Errorf("account_balance must not be zero: %w", domain.ErrInvalidInput)
	}

	direction := strings.ToUpper(strings.TrimSpace(in.Direction))
	if direction == "" {
		direction = "LONG"
	}

	riskAmount := in.AccountBalance.Mul(in.RiskPercent).Div(hundred)
	diff := in.EntryPrice.Sub(in.StopLoss).Abs()
	if diff.IsZero() {
		return domain.FuturesSizeResult{}, domain.ErrStopEqualsEntry
	}

	units := riskAmount.Div(diff)
	positionValue := units.Mul(in.EntryPrice)

	suggested := positionValue.Div(in.AccountBalance).Ceil().IntPart()
	if suggested < 1 {
		suggested = 1
	}
	fundPercent := positionValue.Div(decimal.NewFromInt(suggested)).Div(in.AccountBalance).Mul(hundred)

	one := decimal.NewFromInt(1)
	liquidation := in.EntryPrice.Mul(one.Sub(one.Div(leverage)))
	if direction != "LONG" {
		liquidation = in.EntryPrice.Mul(one.Add(one.Div(leverage)))
	}

	return domain.FuturesSizeResult{
		PositionSizeUnits:    units.RoundBank(4),
		RiskAmount:           riskAmount.RoundBank(2),
		RequiredMargin:       positionValue.Div(leverage).RoundBank(2),
		PositionValue:        positionValue.RoundBank(2),
		LiquidationPrice:     liquidation.RoundBank(2),
		PriceDifference:      diff.RoundBank(5),
		SuggestedLeverage:    suggested,
		SuggestedFundPercent: fundPercent.RoundBank(2),
	}, nil
}
