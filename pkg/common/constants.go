package common

// Job result statuses reported by strategies.
const (
	SUCCESS = "SUCCESS"
	FAILED  = "FAILED"
	SKIPPED = "SKIPPED"
)

// Ranking metrics of the market report.
const (
	MetricReturnPct   = "return_pct"
	MetricVolumeRatio = "volume_ratio"
	MetricVolatility  = "volatility"
)

// Metrics lists every supported ranking metric.
var Metrics = []string{MetricReturnPct, MetricVolumeRatio, MetricVolatility}

const (
	DefaultChartRange    = "3mo"
	DefaultChartInterval = "1d"
)
