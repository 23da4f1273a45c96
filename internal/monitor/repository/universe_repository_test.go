package repository_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/config"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constituentsHTML = `<html><body>
<table id="constituents"><tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">AAPL</a></td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td><a href="#">BRK.B</a></td><td>Berkshire Hathaway</td><td>Financials</td></tr>
</tbody></table>
<table id="changes"><tbody><tr><td>XXX</td><td>x</td><td>y</td></tr></tbody></table>
</body></html>`

func TestConstituents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(constituentsHTML))
	}))
	defer srv.Close()

	repo := repository.NewUniverseRepository(config.Report{UniverseURL: srv.URL}, logger.NewNop())
	list, err := repo.Constituents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.Constituent{
		{Symbol: "AAPL", Company: "Apple Inc.", Sector: "Information Technology"},
		{Symbol: "BRK-B", Company: "Berkshire Hathaway", Sector: "Financials"},
	}, list)
}

func TestConstituents_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	repo := repository.NewUniverseRepository(config.Report{
		UniverseURL:     srv.URL,
		FallbackSymbols: []string{"msft", "NVDA"},
	}, logger.NewNop())
	list, err := repo.Constituents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.Constituent{{Symbol: "MSFT"}, {Symbol: "NVDA"}}, list)
}
