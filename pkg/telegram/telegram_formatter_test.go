package telegram_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/pkg/telegram"
	"golang-market-alert/pkg/utils"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)

func TestFormatNewsAlert(t *testing.T) {
	item := entity.NewsItem{
		Title:           "Fed & AAPL <surprise>",
		Body:            strings.Repeat("b", 400),
		URL:             "https://example.com/a",
		Source:          "Reuters",
		PublishedAt:     fixedNow.Add(-time.Hour),
		MatchedSymbols:  []string{"AAPL", "MSFT"},
		MatchedKeywords: []string{"fed", "rates", "cut", "crash", "war", "tariff"},
	}
	msg := telegram.FormatNewsAlert(entity.NewUrgencyScore(item, 9, entity.UrgencyUrgent), fixedNow)

	assert.True(t, strings.HasPrefix(msg, "[URGENT] <b>MARKET NEWS ALERT</b>"))
	assert.Contains(t, msg, "AAPL, MSFT")
	assert.Contains(t, msg, "9/10")
	assert.Contains(t, msg, "<b>Fed &amp; AAPL &lt;surprise&gt;</b>")
	assert.Contains(t, msg, strings.Repeat("b", 300)+"...")
	assert.NotContains(t, msg, strings.Repeat("b", 301))
	assert.Contains(t, msg, "fed, rates, cut, crash, war")
	assert.NotContains(t, msg, "tariff")
	assert.Contains(t, msg, `<a href="https://example.com/a">Read Full Article</a>`)
	assert.Contains(t, msg, fixedNow.Format(utils.DateTimeLayout))
}

func TestFormatNewsAlert_SearchFallback(t *testing.T) {
	item := entity.NewsItem{Title: "Apple beats estimates on strong iPhone sales", MatchedSymbols: []string{"AAPL"}}
	msg := telegram.FormatNewsAlert(entity.NewUrgencyScore(item, 3, entity.UrgencyLow), fixedNow)

	assert.True(t, strings.HasPrefix(msg, "[LOW]"))
	assert.Contains(t, msg, "https://www.google.com/search?q=Apple+beats+estimates+on+strong+stock+news")
	assert.Contains(t, msg, "Published:</b> Unknown")
}

func TestFormatRecommendation(t *testing.T) {
	r := entity.RecommendationResult{
		Symbol:        "AAPL",
		CompanyName:   "Apple Inc.",
		CurrentPrice:  187.5,
		WeightedScore: 42.3,
		Label:         entity.RecommendationBuy,
		Confidence:    0.63,
		Reasoning:     "Strong technical momentum",
		Technical:     &entity.TechnicalMetrics{RSI: 55, VolumeRatio: 1.2},
	}
	msg := telegram.FormatRecommendation(r)

	assert.Contains(t, msg, "AAPL (Apple Inc.)")
	assert.Contains(t, msg, "$187.50")
	assert.Contains(t, msg, "BUY")
	assert.Contains(t, msg, "63%")
	assert.Contains(t, msg, "+42.3")
	assert.Contains(t, msg, "RSI: 55.0")
	assert.Contains(t, msg, "https://finance.yahoo.com/quote/AAPL")
}

func TestFormatTopPerformers(t *testing.T) {
	assert.Equal(t, "No performance data available", telegram.FormatTopPerformers("return_pct", nil, fixedNow))

	perfs := make([]entity.StockPerformance, 12)
	for i := range perfs {
		perfs[i] = entity.StockPerformance{Symbol: "S" + string(rune('A'+i)), ReturnPct: float64(12 - i), EndPrice: 10}
	}
	perfs[0].Sector = "Technology"

	msg := telegram.FormatTopPerformers("return_pct", perfs, fixedNow)
	assert.Contains(t, msg, "<b>TOP PERFORMERS - RETURN PCT</b>")
	assert.Contains(t, msg, " 1. <b>SA</b> | +12.00% | $10.00")
	assert.Contains(t, msg, "Technology")
	assert.Contains(t, msg, "10. <b>SJ</b>")
	assert.NotContains(t, msg, "<b>SK</b>")
}

func TestFormatEarnings(t *testing.T) {
	assert.Equal(t, "No upcoming earnings found", telegram.FormatEarnings(nil, fixedNow))

	eps := 1.5
	events := []entity.EarningsEvent{
		{Symbol: "AAPL", Date: fixedNow.AddDate(0, 0, 2), DaysUntil: 2, EPSEstimated: &eps},
		{Symbol: "MSFT", Date: fixedNow.AddDate(0, 0, 6), DaysUntil: 6},
		{Symbol: "NVDA", Date: fixedNow.AddDate(0, 0, 12), DaysUntil: 12},
	}
	msg := telegram.FormatEarnings(events, fixedNow)
	assert.Contains(t, msg, "[URGENT] <b>AAPL</b>")
	assert.Contains(t, msg, "[SOON] <b>MSFT</b>")
	assert.Contains(t, msg, "\n<b>NVDA</b>")
	assert.Contains(t, msg, "EPS estimate: 1.50")
	assert.Contains(t, msg, "In 12 days")
}

func TestFormatLifecycleMessages(t *testing.T) {
	start := telegram.FormatStartup("market-alert", 20, 3, []string{"news", "report"}, fixedNow)
	assert.Contains(t, start, "Monitoring 20 symbols")
	assert.Contains(t, start, "3/10")
	assert.Contains(t, start, "news, report")

	assert.Contains(t, telegram.FormatShutdown("market-alert", fixedNow), "market-alert stopped")
	assert.Contains(t, telegram.FormatError("news", errors.New("boom <x>"), fixedNow), "boom &lt;x&gt;")
	assert.Contains(t, telegram.FormatConnectionTest(fixedNow), "Bot connection test successful!")
}
