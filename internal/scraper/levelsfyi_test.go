package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/apperrors"
	"github.com/saswatsam786/raise.info/internal/fetch"
	"github.com/saswatsam786/raise.info/internal/models"
)

func nextDataPage(payload string) string {
	return fmt.Sprintf(`<html><head></head><body>
<script id="__NEXT_DATA__" type="application/json">%s</script>
</body></html>`, payload)
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
}

func testCompany() models.Company {
	return models.Company{ID: "acme-id", Name: "Acme"}
}

func TestLevelsFyiExtract(t *testing.T) {
	payload := `{"props":{"pageProps":{
		"locationExchangeRate": 1,
		"averages": [
			{"primaryLevelName":"L4","secondaryLevelName":"SDE II",
			 "rawValues":{"base":1000,"bonus":0,"stock":0,"total":0},
			 "yearsOfExperience":4,"location":"Bangalore","numDataPoints":12},
			{"primaryLevelName":"L5",
			 "rawValues":{"base":0,"bonus":0,"stock":0,"total":0},
			 "location":"","numDataPoints":0}
		]}}}`
	server := serveHTML(t, nextDataPage(payload))
	defer server.Close()

	fetcher := fetch.New(time.Second, true, zap.NewNop())
	ext := NewLevelsFyi(fetcher, server.URL+"/{company}", nil, zap.NewNop())

	records, err := ext.Extract(context.Background(), testCompany())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Software Engineer - L4 (SDE II)", first.Designation)
	assert.Equal(t, "L4", first.Level)
	assert.Equal(t, "Bangalore", first.Location)
	assert.Equal(t, float64(1000), first.BaseSalary)
	// total falls back to base+bonus+stock when the site leaves it zero
	assert.Equal(t, float64(1000), first.TotalCompensation)
	assert.Equal(t, 12, first.DataPointsCount)
	require.NotNil(t, first.YearsOfExperience)
	assert.Equal(t, 4.0, *first.YearsOfExperience)
	assert.Equal(t, "levels_fyi", first.SourcePlatform)

	second := records[1]
	assert.Equal(t, "Software Engineer - L5", second.Designation)
	assert.Equal(t, models.DefaultCountry, second.Location)
	assert.Equal(t, float64(0), second.TotalCompensation)
	assert.Equal(t, 1, second.DataPointsCount)
}

func TestLevelsFyiExchangeRate(t *testing.T) {
	payload := `{"props":{"pageProps":{
		"locationExchangeRate": 83,
		"averages": [
			{"primaryLevelName":"L4",
			 "rawValues":{"base":1000,"bonus":100,"stock":10,"total":1110},
			 "location":"India","numDataPoints":1}
		]}}}`
	server := serveHTML(t, nextDataPage(payload))
	defer server.Close()

	fetcher := fetch.New(time.Second, false, zap.NewNop())
	ext := NewLevelsFyi(fetcher, server.URL+"/{company}", nil, zap.NewNop())

	records, err := ext.Extract(context.Background(), testCompany())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, float64(83000), records[0].BaseSalary)
	assert.Equal(t, float64(8300), records[0].Bonus)
	assert.Equal(t, float64(830), records[0].StockCompensation)
	assert.Equal(t, float64(92130), records[0].TotalCompensation)
}

func TestLevelsFyiMissingPayload(t *testing.T) {
	server := serveHTML(t, "<html><body><p>no data here</p></body></html>")
	defer server.Close()

	fetcher := fetch.New(time.Second, false, zap.NewNop())
	ext := NewLevelsFyi(fetcher, server.URL+"/{company}", nil, zap.NewNop())

	_, err := ext.Extract(context.Background(), testCompany())
	require.Error(t, err)
	assert.True(t, apperrors.IsNoPayload(err))
	assert.Contains(t, err.Error(), "No __NEXT_DATA__ found")
}

func TestLevelsFyiTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := fetch.New(time.Second, false, zap.NewNop())
	ext := NewLevelsFyi(fetcher, server.URL+"/{company}", nil, zap.NewNop())

	_, err := ext.Extract(context.Background(), testCompany())
	require.Error(t, err)
	assert.False(t, apperrors.IsNoPayload(err))
	assert.Contains(t, err.Error(), "unexpected status code: 403")
}

func TestSourceURLLowercasesCompany(t *testing.T) {
	url := sourceURL("https://example.com/company/{company}/salaries", "PhonePe")
	assert.Equal(t, "https://example.com/company/phonepe/salaries", url)
}
