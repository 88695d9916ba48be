package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DeriveMetrics fills RRPlanned and PnL from the trade's prices, risk and
// result, sized against accountSize. It is called once when a trade is
// recorded; stored values are quantized to two decimals.
func DeriveMetrics(t *Trade, accountSize decimal.Decimal) {
	riskDist := t.EntryPrice.Sub(t.StopLoss).Abs()
	rewardDist := t.TakeProfit.Sub(t.EntryPrice).Abs()

	if riskDist.IsZero() {
		t.RRPlanned = decimal.Zero
	} else {
		t.RRPlanned = rewardDist.Div(riskDist).RoundBank(2)
	}

	riskAmount := accountSize.Mul(t.RiskPercent.Div(hundred))

	switch t.Result {
	case ResultWin:
		rr := t.RRPlanned
		if t.RRActual != nil && !t.RRActual.IsZero() {
			rr = *t.RRActual
		}
		t.PnL = riskAmount.Mul(rr).RoundBank(2)
	case ResultLoss:
		t.PnL = riskAmount.Neg().RoundBank(2)
	default:
		t.PnL = decimal.Zero
	}
}
