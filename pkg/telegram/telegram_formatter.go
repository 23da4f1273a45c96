package telegram

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/pkg/common"
	"golang-market-alert/pkg/utils"
)

const (
	maxDescriptionLength = 300
	maxKeywordsShown     = 5
	maxPerformersShown   = 10
)

// FormatNewsAlert renders a scored headline as an HTML alert.
func FormatNewsAlert(score entity.UrgencyScore, alertTime time.Time) string {
	item := score.Item()
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] <b>MARKET NEWS ALERT</b>\n\n", score.Category()))
	b.WriteString(fmt.Sprintf("<b>Symbols:</b> %s\n", html.EscapeString(strings.Join(item.MatchedSymbols, ", "))))
	b.WriteString(fmt.Sprintf("<b>Urgency:</b> %d/10\n\n", score.Score()))
	b.WriteString(fmt.Sprintf("<b>%s</b>\n\n", html.EscapeString(item.Title)))

	if item.Body != "" && item.Body != item.Title {
		b.WriteString(html.EscapeString(utils.Truncate(item.Body, maxDescriptionLength)))
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("<b>Source:</b> %s\n", html.EscapeString(item.Source)))
	b.WriteString(fmt.Sprintf("<b>Published:</b> %s\n", utils.PrettyDate(item.PublishedAt)))
	b.WriteString(fmt.Sprintf("<b>Alert Time:</b> %s\n", alertTime.Format(utils.DateTimeLayout)))

	if len(item.MatchedKeywords) > 0 {
		keywords := item.MatchedKeywords
		if len(keywords) > maxKeywordsShown {
			keywords = keywords[:maxKeywordsShown]
		}
		b.WriteString(fmt.Sprintf("<b>Keywords:</b> %s\n", html.EscapeString(strings.Join(keywords, ", "))))
	}

	if link := strings.TrimSpace(item.URL); link != "" {
		if !strings.HasPrefix(link, "http") {
			link = "https://" + link
		}
		b.WriteString(fmt.Sprintf("\n📰 <a href=\"%s\">Read Full Article</a>", html.EscapeString(link)))
	} else {
		b.WriteString(fmt.Sprintf("\n🔍 <a href=\"%s\">Search for More Info</a>", html.EscapeString(searchURL(item.Title))))
	}
	return b.String()
}

func searchURL(title string) string {
	words := strings.Fields(title)
	if len(words) > 5 {
		words = words[:5]
	}
	q := url.QueryEscape(strings.Join(append(words, "stock", "news"), " "))
	return "https://www.google.com/search?q=" + q
}

// FormatRecommendation renders a stock analysis.
func FormatRecommendation(r entity.RecommendationResult) string {
	var b strings.Builder

	var icon string
	switch r.Label {
	case entity.RecommendationBuy:
		icon = "🟢"
	case entity.RecommendationSell:
		icon = "🔴"
	default:
		icon = "🟡"
	}

	name := r.Symbol
	if r.CompanyName != "" {
		name = fmt.Sprintf("%s (%s)", r.Symbol, html.EscapeString(r.CompanyName))
	}
	b.WriteString(fmt.Sprintf("📊 <b>STOCK ANALYSIS: %s</b>\n\n", name))
	if r.CurrentPrice > 0 {
		b.WriteString(fmt.Sprintf("💰 <b>Price:</b> $%.2f\n", r.CurrentPrice))
	}
	b.WriteString(fmt.Sprintf("%s <b>Recommendation:</b> %s\n", icon, r.Label))
	b.WriteString(fmt.Sprintf("🎯 <b>Confidence:</b> %.0f%%\n", r.Confidence*100))
	b.WriteString(fmt.Sprintf("📈 <b>Overall Score:</b> %+.1f\n\n", r.WeightedScore))

	b.WriteString("<b>Scores</b>\n")
	b.WriteString(fmt.Sprintf("  Technical: %+.1f\n", r.TechnicalScore))
	b.WriteString(fmt.Sprintf("  Sentiment: %+.1f\n", r.SentimentScore))
	b.WriteString(fmt.Sprintf("  Fundamental: %+.1f\n", r.FundamentalScore))

	if m := r.Technical; m != nil {
		b.WriteString("\n<b>Technical</b>\n")
		b.WriteString(fmt.Sprintf("  Day: %+.2f%% | Week: %+.2f%% | Month: %+.2f%%\n", m.DayChangePct, m.WeekChangePct, m.MonthChangePct))
		b.WriteString(fmt.Sprintf("  RSI: %.1f | Volume: %.2fx | Volatility: %.2f%%\n", m.RSI, m.VolumeRatio, m.Volatility))
	}
	if s := r.Sentiment; s != nil && s.ArticlesAnalyzed > 0 {
		b.WriteString(fmt.Sprintf("\n<b>News Sentiment:</b> %s (%d articles)\n", s.Overall, s.ArticlesAnalyzed))
	}
	if r.Reasoning != "" {
		b.WriteString(fmt.Sprintf("\n🤔 <i>%s</i>\n", html.EscapeString(r.Reasoning)))
	}
	b.WriteString(fmt.Sprintf("\n<a href=\"https://finance.yahoo.com/quote/%s\">View Chart</a>", url.PathEscape(r.Symbol)))
	return b.String()
}

// FormatTopPerformers renders the ranked performers for metric.
func FormatTopPerformers(metric string, performers []entity.StockPerformance, updated time.Time) string {
	if len(performers) == 0 {
		return "No performance data available"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>TOP PERFORMERS - %s</b>\n", strings.ToUpper(strings.ReplaceAll(metric, "_", " "))))
	b.WriteString(fmt.Sprintf("<i>Updated: %s</i>\n\n", updated.Format(utils.DateTimeLayout)))

	for i, p := range performers {
		if i >= maxPerformersShown {
			break
		}
		var value string
		switch metric {
		case common.MetricReturnPct:
			value = fmt.Sprintf("%+.2f%%", p.ReturnPct)
		case common.MetricVolumeRatio:
			value = fmt.Sprintf("%.2fx", p.VolumeRatio)
		default:
			value = fmt.Sprintf("%.2f", p.Volatility)
		}
		sector := p.Sector
		if sector == "" {
			sector = "Unknown"
		}
		b.WriteString(fmt.Sprintf("%2d. <b>%s</b> | %s | $%.2f\n", i+1, p.Symbol, value, p.EndPrice))
		b.WriteString(fmt.Sprintf("    <i>%s</i> | <a href=\"https://finance.yahoo.com/quote/%s\">View Chart</a>\n\n",
			html.EscapeString(sector), url.PathEscape(p.Symbol)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEarnings renders upcoming earnings releases.
func FormatEarnings(events []entity.EarningsEvent, updated time.Time) string {
	if len(events) == 0 {
		return "No upcoming earnings found"
	}

	var b strings.Builder
	b.WriteString("<b>UPCOMING EARNINGS CALENDAR</b>\n")
	b.WriteString(fmt.Sprintf("<i>Updated: %s</i>\n\n", updated.Format(utils.DateTimeLayout)))

	for _, e := range events {
		var priority string
		switch {
		case e.DaysUntil <= 3:
			priority = "[URGENT] "
		case e.DaysUntil <= 7:
			priority = "[SOON] "
		}
		b.WriteString(fmt.Sprintf("%s<b>%s</b>\n", priority, e.Symbol))
		b.WriteString(fmt.Sprintf("Date: %s\n", e.Date.Format(utils.DateLayout)))
		b.WriteString(fmt.Sprintf("In %d days\n", e.DaysUntil))
		if e.EPSEstimated != nil {
			b.WriteString(fmt.Sprintf("EPS estimate: %.2f\n", *e.EPSEstimated))
		}
		b.WriteString(fmt.Sprintf("<a href=\"https://finance.yahoo.com/calendar/earnings?symbol=%s\">Earnings Info</a>\n\n", url.QueryEscape(e.Symbol)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatStartup announces the monitor service.
func FormatStartup(appName string, symbols, minUrgency int, jobs []string, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚀 <b>%s started</b>\n\n", html.EscapeString(appName)))
	b.WriteString(fmt.Sprintf("• Monitoring %d symbols\n", symbols))
	b.WriteString(fmt.Sprintf("• Minimum urgency: %d/10\n", minUrgency))
	if len(jobs) > 0 {
		b.WriteString(fmt.Sprintf("• Jobs: %s\n", html.EscapeString(strings.Join(jobs, ", "))))
	}
	b.WriteString(fmt.Sprintf("\n<i>%s</i>", now.Format(utils.DateTimeLayout)))
	return b.String()
}

// FormatShutdown announces a stop.
func FormatShutdown(appName string, now time.Time) string {
	return fmt.Sprintf("🛑 <b>%s stopped</b>\n<i>%s</i>", html.EscapeString(appName), now.Format(utils.DateTimeLayout))
}

// FormatError reports a failed job.
func FormatError(jobName string, err error, now time.Time) string {
	return fmt.Sprintf("⚠️ <b>Job failed:</b> %s\n<code>%s</code>\n<i>%s</i>",
		html.EscapeString(jobName), html.EscapeString(utils.Truncate(err.Error(), 500)), now.Format(utils.DateTimeLayout))
}

// FormatConnectionTest is sent by the test-telegram command.
func FormatConnectionTest(now time.Time) string {
	return fmt.Sprintf("✅ Bot connection test successful!\nTime: %s", now.Format(utils.DateTimeLayout))
}
