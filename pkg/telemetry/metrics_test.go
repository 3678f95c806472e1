package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	err error
}

func (s stubSource) Name() string {
	return "ga4"
}

func (s stubSource) RunReport(context.Context, domain.RangeQuery) ([]domain.RawRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.RawRow{{DimensionValues: []string{"a"}, MetricValues: []string{"1"}}}, nil
}

func TestInstrument(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	ok := m.Instrument(stubSource{})
	assert.Equal(t, "ga4", ok.Name())
	rows, err := ok.RunReport(context.Background(), domain.RangeQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	failing := m.Instrument(stubSource{err: errors.New("quota")})
	_, err = failing.RunReport(context.Background(), domain.RangeQuery{})
	assert.Error(t, err)
	_, _ = failing.RunReport(context.Background(), domain.RangeQuery{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportFetches.WithLabelValues("ga4", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportFetches.WithLabelValues("ga4", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReportFetchDuration))
}

func TestHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveRequest(http.MethodGet, "/api/v1/sales", http.StatusOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/api/v1/sales",status="200"} 1`)
}
