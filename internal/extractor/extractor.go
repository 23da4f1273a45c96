package extractor

import (
	"html"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"golang-market-alert/pkg/utils"
)

// Watchlist is a set of ticker symbols to look for in text.
type Watchlist struct {
	symbols []string
}

// NewWatchlist normalizes symbols to upper case and removes duplicates.
func NewWatchlist(symbols []string) *Watchlist {
	seen := make(map[string]struct{}, len(symbols))
	w := &Watchlist{}
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		w.symbols = append(w.symbols, s)
	}
	sort.Strings(w.symbols)
	return w
}

// Symbols returns the watched symbols.
func (w *Watchlist) Symbols() []string {
	return append([]string(nil), w.symbols...)
}

// Contains reports whether symbol is watched.
func (w *Watchlist) Contains(symbol string) bool {
	symbol = strings.ToUpper(symbol)
	i := sort.SearchStrings(w.symbols, symbol)
	return i < len(w.symbols) && w.symbols[i] == symbol
}

// Extract returns the sorted set of watched symbols mentioned in text. A symbol counts
// when it is preceded by a space, "(" or "$" (or starts the text) and followed by a
// space, ")", ":", "." or "," (or ends the text).
func (w *Watchlist) Extract(text string) []string {
	upper := strings.ToUpper(text)
	var found []string
	for _, sym := range w.symbols {
		if mentions(upper, sym) {
			found = append(found, sym)
		}
	}
	return found
}

func mentions(text, sym string) bool {
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], sym)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(sym)
		if leftBoundary(text, start) && rightBoundary(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func leftBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	switch text[i-1] {
	case ' ', '(', '$', '\n', '\t':
		return true
	}
	return false
}

func rightBoundary(text string, i int) bool {
	if i == len(text) {
		return true
	}
	switch text[i] {
	case ' ', ')', ':', '.', ',', '\n', '\t':
		return true
	}
	return false
}

// CleanHTML strips markup and control characters and collapses whitespace.
func CleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(html.UnescapeString(s))
	}
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(utils.SafeText(s)), " ")
}
