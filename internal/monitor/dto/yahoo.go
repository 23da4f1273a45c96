package dto

// ChartResponse is the body of /v8/finance/chart/{symbol}.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *YahooError   `json:"error"`
	} `json:"chart"`
}

type ChartResult struct {
	Meta       ChartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []ChartQuote `json:"quote"`
	} `json:"indicators"`
}

type ChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// ChartQuote holds parallel OHLCV arrays. Yahoo sends null for missing bars.
type ChartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type YahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// QuoteSummaryResponse is the body of /v10/finance/quoteSummary/{symbol}.
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummaryResult `json:"result"`
		Error  *YahooError          `json:"error"`
	} `json:"quoteSummary"`
}

type QuoteSummaryResult struct {
	AssetProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	SummaryDetail *struct {
		MarketCap  RawValue `json:"marketCap"`
		TrailingPE RawValue `json:"trailingPE"`
	} `json:"summaryDetail"`
	Price *struct {
		LongName  string   `json:"longName"`
		ShortName string   `json:"shortName"`
		Currency  string   `json:"currency"`
		MarketCap RawValue `json:"marketCap"`
	} `json:"price"`
}

// RawValue is Yahoo's {"raw": 1.0, "fmt": "1.00"} number wrapper.
type RawValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}
