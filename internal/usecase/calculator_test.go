package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/domain"
)

func TestForexPositionSize(t *testing.T) {
	res, err := ForexPositionSize(domain.ForexSizeInput{
		AccountBalance: dec("10000"),
		RiskPercent:    dec("1"),
		EntryPrice:     dec("1.1000"),
		StopLoss:       dec("1.0950"),
		Pair:           "EURUSD",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.2", res.PositionSizeLots.String())
	assert.Equal(t, "100", res.RiskAmount.String())
	assert.Equal(t, "50", res.StopLossPips.String())
}

func TestForexPositionSize_JPY(t *testing.T) {
	res, err := ForexPositionSize(domain.ForexSizeInput{
		AccountBalance: dec("10000"),
		RiskPercent:    dec("1"),
		EntryPrice:     dec("150.00"),
		StopLoss:       dec("149.50"),
		Pair:           "usdjpy",
	})
	require.NoError(t, err)
	// 100 / (50 pips * 9.13)
	assert.Equal(t, "0.22", res.PositionSizeLots.String())
	assert.Equal(t, "50", res.StopLossPips.String())
}

func TestForexPositionSize_StopEqualsEntry(t *testing.T) {
	_, err := ForexPositionSize(domain.ForexSizeInput{
		AccountBalance: dec("10000"),
		RiskPercent:    dec("1"),
		EntryPrice:     dec("1.1"),
		StopLoss:       dec("1.1"),
	})
	assert.ErrorIs(t, err, domain.ErrStopEqualsEntry)
}

func TestCryptoFuturesPositionSize(t *testing.T) {
	lev := dec("10")
	in := domain.FuturesSizeInput{
		AccountBalance: dec("1000"),
		RiskPercent:    dec("2"),
		EntryPrice:     dec("50000"),
		StopLoss:       dec("49000"),
		Leverage:       &lev,
	}

	long, err := CryptoFuturesPositionSize(in)
	require.NoError(t, err)
	assert.Equal(t, "0.02", long.PositionSizeUnits.String())
	assert.Equal(t, "20", long.RiskAmount.String())
	assert.Equal(t, "1000", long.PositionValue.String())
	assert.Equal(t, "100", long.RequiredMargin.String())
	assert.Equal(t, "45000", long.LiquidationPrice.String())
	assert.Equal(t, "1000", long.PriceDifference.String())
	assert.Equal(t, int64(1), long.SuggestedLeverage)
	assert.Equal(t, "100", long.SuggestedFundPercent.String())

	in.Direction = "short"
	short, err := CryptoFuturesPositionSize(in)
	require.NoError(t, err)
	assert.Equal(t, "55000", short.LiquidationPrice.String())
}

func TestCryptoFuturesPositionSize_SuggestedLeverageRoundsUp(t *testing.T) {
	res, err := CryptoFuturesPositionSize(domain.FuturesSizeInput{
		AccountBalance: dec("1000"),
		RiskPercent:    dec("2"),
		EntryPrice:     dec("100"),
		StopLoss:       dec("99.3"),
	})
	require.NoError(t, err)
	assert.Equal(t, "28.5714", res.PositionSizeUnits.String())
	assert.Equal(t, "2857.14", res.PositionValue.String())
	assert.Equal(t, int64(3), res.SuggestedLeverage)
	assert.Equal(t, "95.24", res.SuggestedFundPercent.String())
	// default leverage 1
	assert.Equal(t, "2857.14", res.RequiredMargin.String())
	assert.Equal(t, "0", res.LiquidationPrice.String())
}

func TestCryptoFuturesPositionSize_Errors(t *testing.T) {
	base := domain.FuturesSizeInput{
		AccountBalance: dec("1000"),
		RiskPercent:    dec("1"),
		EntryPrice:     dec("100"),
		StopLoss:       dec("100"),
	}
	_, err := CryptoFuturesPositionSize(base)
	assert.ErrorIs(t, err, domain.ErrStopEqualsEntry)

	base.StopLoss = dec("90")
	zero := dec("0")
	base.Leverage = &zero
	_, err = CryptoFuturesPositionSize(base)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	base.Leverage = nil
	base.AccountBalance = dec("0")
	_, err = CryptoFuturesPositionSize(base)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
