package indicator_test

import (
	"math"
	"testing"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/indicator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(closes []float64, volume float64) *entity.Series {
	s := &entity.Series{Symbol: "TEST"}
	for _, c := range closes {
		s.Bars = append(s.Bars, entity.PriceBar{Close: c, Volume: volume})
	}
	return s
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestPctChange(t *testing.T) {
	assert.InDelta(t, 10.0, indicator.PctChange(100, 110), 1e-9)
	assert.InDelta(t, -50.0, indicator.PctChange(100, 50), 1e-9)
	assert.Equal(t, 0.0, indicator.PctChange(0, 50))
}

func TestReturnPct(t *testing.T) {
	assert.InDelta(t, 25.0, indicator.ReturnPct([]float64{100, 90, 125}), 1e-9)
	assert.Equal(t, 0.0, indicator.ReturnPct([]float64{100}))
}

func TestChangeOver(t *testing.T) {
	closes := linear(10, 100, 1)
	assert.InDelta(t, indicator.PctChange(108, 109), indicator.ChangeOver(closes, 1, 2), 1e-9)
	assert.InDelta(t, indicator.PctChange(104, 109), indicator.ChangeOver(closes, 5, 5), 1e-9)
	// shorter than barsBack: first close is the reference
	assert.InDelta(t, indicator.PctChange(100, 109), indicator.ChangeOver(closes, 20, 5), 1e-9)
	assert.Equal(t, 0.0, indicator.ChangeOver(closes, 20, 20))
}

func TestSMA(t *testing.T) {
	assert.InDelta(t, 4.0, indicator.SMA([]float64{1, 2, 3, 4, 5}, 3), 1e-9)
	assert.True(t, math.IsNaN(indicator.SMA([]float64{1, 2}, 3)))
}

func TestRSI(t *testing.T) {
	assert.Equal(t, 100.0, indicator.RSI(linear(20, 10, 1), 14))
	assert.InDelta(t, 0.0, indicator.RSI(linear(20, 100, -1), 14), 1e-9)
	assert.Equal(t, indicator.NeutralRSI, indicator.RSI(linear(20, 10, 0), 14))
	assert.True(t, math.IsNaN(indicator.RSI(linear(10, 10, 1), 14)))

	alternating := make([]float64, 15)
	for i := range alternating {
		alternating[i] = 100 + float64(i%2)
	}
	// 7 gains and 7 losses of equal size
	assert.InDelta(t, 50.0, indicator.RSI(alternating, 14), 1e-9)
}

func TestVolumeRatio(t *testing.T) {
	assert.InDelta(t, 2.0, indicator.VolumeRatio([]float64{100, 100, 100, 300}, 0), 1e-9)
	assert.InDelta(t, 1.5, indicator.VolumeRatio([]float64{1000, 100, 300}, 2), 1e-9)
	assert.Equal(t, 1.0, indicator.VolumeRatio(nil, 5))
}

func TestVolatility(t *testing.T) {
	assert.Equal(t, 0.0, indicator.Volatility([]float64{100, 100, 100}))
	assert.Equal(t, 0.0, indicator.Volatility([]float64{100}))
	// returns +10%, -10%: sample stdev = 0.1414...
	assert.InDelta(t, 14.142135, indicator.Volatility([]float64{100, 110, 99}), 1e-5)
}

func TestComputeShortHistory(t *testing.T) {
	m := indicator.Compute(series([]float64{100, 102}, 1000))
	require.NotNil(t, m)

	assert.InDelta(t, 2.0, m.DayChangePct, 1e-9)
	assert.Equal(t, 0.0, m.WeekChangePct)
	assert.Equal(t, 0.0, m.MonthChangePct)
	assert.Equal(t, indicator.NeutralRSI, m.RSI)
	assert.Equal(t, 102.0, m.MA20)
	assert.Equal(t, 0.0, m.PriceVsMA50)
	assert.InDelta(t, 1.0, m.VolumeRatio, 1e-9)
}

func TestComputeUptrend(t *testing.T) {
	m := indicator.Compute(series(linear(60, 100, 1), 500))
	require.NotNil(t, m)

	assert.Equal(t, 159.0, m.CurrentPrice)
	assert.InDelta(t, indicator.PctChange(139, 159), m.MonthChangePct, 1e-9)
	assert.Equal(t, 100.0, m.RSI)
	assert.InDelta(t, 149.5, m.MA20, 1e-9)
	assert.Greater(t, m.PriceVsMA20, 0.0)
	assert.Greater(t, m.PriceVsMA50, m.PriceVsMA20)

	assert.Nil(t, indicator.Compute(&entity.Series{}))
}

func TestPerformance(t *testing.T) {
	s := series([]float64{50, 55, 60}, 100)
	s.Bars[2].Volume = 400

	p := indicator.Performance(s)
	require.NotNil(t, p)
	assert.Equal(t, "TEST", p.Symbol)
	assert.InDelta(t, 20.0, p.ReturnPct, 1e-9)
	assert.InDelta(t, 200.0, p.AvgVolume, 1e-9)
	assert.InDelta(t, 2.0, p.VolumeRatio, 1e-9)
	assert.Greater(t, p.Volatility, 0.0)
}
