package dto

import "golang-market-alert/internal/entity"

// NewsMonitorParams are the job params of a news_monitor job.
type NewsMonitorParams struct {
	Notify *bool `json:"notify"`
}

// MarketReportParams are the job params of a market_report job.
type MarketReportParams struct {
	Metric       string   `json:"metric"`
	TopN         int      `json:"top_n"`
	Period       string   `json:"period"`
	Symbols      []string `json:"symbols"`
	WithEarnings *bool    `json:"with_earnings"`
	Notify       *bool    `json:"notify"`
}

// StockAnalyzerParams are the job params of a stock_analyzer job.
type StockAnalyzerParams struct {
	Symbols []string `json:"symbols"`
	Notify  *bool    `json:"notify"`
}

// CycleResult summarizes one news monitor cycle.
type CycleResult struct {
	Fetched      int              `json:"fetched"`
	Relevant     int              `json:"relevant"`
	BelowMinimum int              `json:"below_minimum"`
	Duplicates   int              `json:"duplicates"`
	RateLimited  int              `json:"rate_limited"`
	Sent         int              `json:"sent"`
	Failed       int              `json:"failed"`
	Alerts       []AlertCandidate `json:"alerts"`
}

// AlertCandidate is a scored headline and what the gate decided for it.
type AlertCandidate struct {
	Title    string                 `json:"title"`
	URL      string                 `json:"url,omitempty"`
	Source   string                 `json:"source"`
	Symbols  []string               `json:"symbols"`
	Keywords []string               `json:"keywords"`
	Score    int                    `json:"score"`
	Category entity.UrgencyCategory `json:"category"`
	Decision string                 `json:"decision"`
}

// MarketReport is the output of a market report run.
type MarketReport struct {
	Metric          string                    `json:"metric"`
	Period          string                    `json:"period"`
	SymbolsAnalyzed int                       `json:"symbols_analyzed"`
	TopPerformers   []entity.StockPerformance `json:"top_performers"`
	Earnings        []entity.EarningsEvent    `json:"earnings,omitempty"`
	Notified        bool                      `json:"notified"`
}
