package indicator

import (
	"math"

	"golang-market-alert/internal/entity"
)

const (
	RSIPeriod = 14
	// NeutralRSI is reported when there is not enough history.
	NeutralRSI = 50.0

	barsPerWeek  = 5
	barsPerMonth = 20
	volumeWindow = 22
)

// PctChange returns the percentage change from "from" to "to", or 0 when from is not positive.
func PctChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (to - from) / from * 100
}

// ReturnPct is the change between the first and the last close.
func ReturnPct(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	return PctChange(closes[0], closes[len(closes)-1])
}

// ChangeOver returns the change of the last close against the close barsBack bars earlier.
// When the history is shorter than barsBack but at least minBars long, the first close is used.
func ChangeOver(closes []float64, barsBack, minBars int) float64 {
	n := len(closes)
	if n < 2 || n < minBars {
		return 0
	}
	ref := closes[0]
	if n > barsBack {
		ref = closes[n-1-barsBack]
	}
	return PctChange(ref, closes[n-1])
}

// Mean returns the average of vals, NaN when empty.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// SMA returns the mean of the last n values, NaN when fewer are available.
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	return Mean(vals[len(vals)-n:])
}

// VolumeRatio compares the last volume with the mean of the trailing window (including the last bar).
func VolumeRatio(volumes []float64, window int) float64 {
	if len(volumes) == 0 {
		return 1
	}
	if window <= 0 || window > len(volumes) {
		window = len(volumes)
	}
	avg := Mean(volumes[len(volumes)-window:])
	if avg <= 0 {
		return 1
	}
	return volumes[len(volumes)-1] / avg
}

// RSI uses the simple average of gains and losses over the last period deltas.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		if gain == 0 {
			return NeutralRSI
		}
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// Returns computes bar-to-bar fractional returns, skipping non-positive bases.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

// StdDev is the sample standard deviation.
func StdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	m := Mean(vals)
	s := 0.0
	for _, v := range vals {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(vals)-1))
}

// Volatility is the standard deviation of daily returns in percent, 0 when undefined.
func Volatility(closes []float64) float64 {
	sd := StdDev(Returns(closes))
	if math.IsNaN(sd) {
		return 0
	}
	return sd * 100
}

// Compute derives TechnicalMetrics from a daily series. Short histories fall back to
// neutral values: RSI 50 and moving averages equal to the current price.
func Compute(series *entity.Series) *entity.TechnicalMetrics {
	closes := series.Closes()
	if len(closes) == 0 {
		return nil
	}
	current := closes[len(closes)-1]

	m := &entity.TechnicalMetrics{
		CurrentPrice:   current,
		DayChangePct:   ChangeOver(closes, 1, 2),
		WeekChangePct:  ChangeOver(closes, barsPerWeek, barsPerWeek),
		MonthChangePct: ChangeOver(closes, barsPerMonth, barsPerMonth),
		VolumeRatio:    VolumeRatio(series.Volumes(), volumeWindow),
		RSI:            orDefault(RSI(closes, RSIPeriod), NeutralRSI),
		MA20:           orDefault(SMA(closes, 20), current),
		MA50:           orDefault(SMA(closes, 50), current),
		Volatility:     Volatility(closes),
	}
	m.PriceVsMA20 = PctChange(m.MA20, current)
	m.PriceVsMA50 = PctChange(m.MA50, current)
	return m
}

// Performance summarizes a series over its whole range.
func Performance(series *entity.Series) *entity.StockPerformance {
	closes := series.Closes()
	if len(closes) == 0 {
		return nil
	}
	volumes := series.Volumes()
	avg := Mean(volumes)
	recent := volumes[len(volumes)-1]
	ratio := 0.0
	if avg > 0 {
		ratio = recent / avg
	}
	return &entity.StockPerformance{
		Symbol:       series.Symbol,
		CompanyName:  series.CompanyName,
		ReturnPct:    ReturnPct(closes),
		StartPrice:   closes[0],
		EndPrice:     closes[len(closes)-1],
		AvgVolume:    avg,
		RecentVolume: recent,
		VolumeRatio:  ratio,
		Volatility:   Volatility(closes),
	}
}

func orDefault(v, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return v
}
