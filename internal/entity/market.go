package entity

import "time"

// PriceBar is one OHLCV bar.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is a chronologically ordered price history for one symbol.
type Series struct {
	Symbol       string     `json:"symbol"`
	Currency     string     `json:"currency"`
	CompanyName  string     `json:"company_name"`
	CurrentPrice float64    `json:"current_price"`
	Bars         []PriceBar `json:"bars"`
}

// Closes returns the close prices of the series.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volumes of the series.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// TechnicalMetrics holds the indicators derived from a Series. Percentages are in percent units.
type TechnicalMetrics struct {
	CurrentPrice   float64 `json:"current_price"`
	DayChangePct   float64 `json:"day_change_pct"`
	WeekChangePct  float64 `json:"week_change_pct"`
	MonthChangePct float64 `json:"month_change_pct"`
	VolumeRatio    float64 `json:"volume_ratio"`
	RSI            float64 `json:"rsi"`
	MA20           float64 `json:"ma_20"`
	MA50           float64 `json:"ma_50"`
	PriceVsMA20    float64 `json:"price_vs_ma_20"`
	PriceVsMA50    float64 `json:"price_vs_ma_50"`
	Volatility     float64 `json:"volatility"`
}

// Fundamentals holds company level data.
type Fundamentals struct {
	CompanyName string  `json:"company_name"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MarketCap   float64 `json:"market_cap"`
	PERatio     float64 `json:"pe_ratio"`
	Currency    string  `json:"currency"`
}

// StockPerformance summarizes a symbol over a report period.
type StockPerformance struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"company_name,omitempty"`
	Sector       string  `json:"sector,omitempty"`
	ReturnPct    float64 `json:"return_pct"`
	StartPrice   float64 `json:"start_price"`
	EndPrice     float64 `json:"end_price"`
	AvgVolume    float64 `json:"avg_volume"`
	RecentVolume float64 `json:"recent_volume"`
	VolumeRatio  float64 `json:"volume_ratio"`
	Volatility   float64 `json:"volatility"`
	MarketCap    float64 `json:"market_cap,omitempty"`
}

// EarningsEvent is a scheduled earnings release.
type EarningsEvent struct {
	Symbol       string    `json:"symbol"`
	Date         time.Time `json:"date"`
	DaysUntil    int       `json:"days_until"`
	Time         string    `json:"time,omitempty"`
	EPSEstimated *float64  `json:"eps_estimated,omitempty"`
}

// Constituent is a member of the report universe.
type Constituent struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company,omitempty"`
	Sector  string `json:"sector,omitempty"`
}
