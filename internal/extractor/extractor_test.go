package extractor_test

import (
	"testing"

	"golang-market-alert/internal/extractor"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	w := extractor.NewWatchlist([]string{"aapl", "MSFT", "T", "NVDA", "AAPL"})

	cases := []struct {
		name string
		text string
		want []string
	}{
		{"space separated", "Analysts upgrade AAPL after launch", []string{"AAPL"}},
		{"parentheses", "Apple Inc. (AAPL) and Microsoft (MSFT) rally", []string{"AAPL", "MSFT"}},
		{"dollar sign", "$nvda jumps premarket", []string{"NVDA"}},
		{"colon", "MSFT: cloud revenue beats", []string{"MSFT"}},
		{"period", "Shares of NVDA. closed higher", []string{"NVDA"}},
		{"start of text", "AAPL shares rise", []string{"AAPL"}},
		{"end of text", "Investors pile into MSFT", []string{"MSFT"}},
		{"no partial word", "TESLA and AT&T TALK", nil},
		{"single letter needs delimiters", "Company T reports", []string{"T"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Extract(tc.text))
		})
	}
}

func TestWatchlist(t *testing.T) {
	w := extractor.NewWatchlist([]string{" msft", "AAPL", "", "MSFT"})
	assert.Equal(t, []string{"AAPL", "MSFT"}, w.Symbols())
	assert.True(t, w.Contains("msft"))
	assert.False(t, w.Contains("TSLA"))
}

func TestCleanHTML(t *testing.T) {
	assert.Equal(t, "Apple beats estimates & raises guidance",
		extractor.CleanHTML(`<p>Apple <b>beats</b> estimates &amp; raises   guidance</p>`))
	assert.Equal(t, "plain text", extractor.CleanHTML("  plain\n text "))
	assert.Equal(t, "", extractor.CleanHTML(""))
	assert.Equal(t, "Fed holds", extractor.CleanHTML("Fed\x00 holds\x07"))
}
