package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/de-tools/traffic-atlas/pkg/services/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBuilder struct {
	mock.Mock
	name string
}

func (m *mockBuilder) Name() string {
	return m.name
}

func (m *mockBuilder) Build(ctx context.Context, periods domain.Periods) (*domain.Report, error) {
	args := m.Called(ctx, periods)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func defaultPeriods() domain.Periods {
	return domain.Periods{
		Current:    domain.DateRange{Start: day(2024, 3, 1), End: day(2024, 3, 14)},
		Comparison: domain.DateRange{Start: day(2024, 2, 1), End: day(2024, 2, 29)},
	}
}

func salesReport(periods domain.Periods) *domain.Report {
	table := domain.AggregateTable{Name: "Revenue By Category", KeyField: "Category", ValueField: "Revenue"}
	for i := 0; i < 25; i++ {
		table.Rows = append(table.Rows, domain.AggregateRow{Key: fmt.Sprintf("cat-%02d", i), Value: float64(100 - i)})
	}
	return &domain.Report{
		Title:           "Product Sales Dashboard",
		Periods:         periods,
		CurrentLabel:    domain.MonthLabel(periods.Current.Start),
		ComparisonLabel: domain.MonthLabel(periods.Comparison.Start),
		Summary:         []domain.SummaryMetric{{Name: "Revenue", Current: 10, Comparison: 0}},
		Tables:          []domain.AggregateTable{table},
	}
}

func setup(t *testing.T, builder *mockBuilder) (*httptest.Server, *session.Session) {
	t.Helper()

	sess := session.NewManager(nil).Create()
	h := NewHandler(report.NewPaginator(), builder)
	h.now = func() time.Time { return day(2024, 3, 14) }

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	})
	router.Get("/api/v1/{page}", h.GetReport)
	router.Post("/api/v1/{page}/tables/{table}/page", h.SetPageState)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sess
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestGetReport(t *testing.T) {
	explicit := domain.Periods{
		Current:    domain.DateRange{Start: day(2024, 2, 1), End: day(2024, 2, 29)},
		Comparison: domain.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 31)},
	}

	tests := []struct {
		name           string
		path           string
		setupMocks     func(b *mockBuilder)
		expectedStatus int
		check          func(t *testing.T, body io.Reader)
	}{
		{
			name: "explicit periods",
			path: "/api/v1/sales?current_from=2024-02-01&current_to=2024-02-29&compare_from=2024-01-01&compare_to=2024-01-31",
			setupMocks: func(b *mockBuilder) {
				b.On("Build", mock.Anything, explicit).Return(salesReport(explicit), nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body io.Reader) {
				got := decode[api.Report](t, body)
				assert.Equal(t, "February 2024", got.Current.Label)
				assert.Equal(t, "2024-01-31", got.Comparison.End)
				require.Len(t, got.Summary, 1)
				assert.Nil(t, got.Summary[0].Change)
				assert.Equal(t, "N/A", got.Summary[0].ChangeText)
				require.Len(t, got.Tables, 1)
				assert.Equal(t, 1, got.Tables[0].Page)
				assert.Equal(t, 3, got.Tables[0].TotalPages)
				assert.Len(t, got.Tables[0].Rows, 10)
			},
		},
		{
			name: "default periods",
			path: "/api/v1/sales",
			setupMocks: func(b *mockBuilder) {
				b.On("Build", mock.Anything, defaultPeriods()).Return(salesReport(defaultPeriods()), nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body io.Reader) {
				got := decode[api.Report](t, body)
				assert.Equal(t, "March 2024", got.Current.Label)
			},
		},
		{
			name:           "invalid date",
			path:           "/api/v1/sales?current_from=02/01/2024",
			setupMocks:     func(b *mockBuilder) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body io.Reader) {
				got := decode[api.ErrorResponse](t, body)
				assert.Contains(t, got.Error, "current_from")
			},
		},
		{
			name:           "start after end",
			path:           "/api/v1/sales?compare_from=2024-02-10&compare_to=2024-02-01",
			setupMocks:     func(b *mockBuilder) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body io.Reader) {
				got := decode[api.ErrorResponse](t, body)
				assert.Equal(t, "invalid date range: start (2024-02-10) is after end (2024-02-01)", got.Error)
			},
		},
		{
			name: "fetch failure names the period",
			path: "/api/v1/sales",
			setupMocks: func(b *mockBuilder) {
				b.On("Build", mock.Anything, mock.Anything).
					Return(nil, &domain.ReportFetchError{Label: "February 2024", Err: errors.New("quota")})
			},
			expectedStatus: http.StatusBadGateway,
			check: func(t *testing.T, body io.Reader) {
				got := decode[api.ErrorResponse](t, body)
				assert.Equal(t, "could not load February 2024 data", got.Error)
			},
		},
		{
			name: "malformed data",
			path: "/api/v1/sales",
			setupMocks: func(b *mockBuilder) {
				b.On("Build", mock.Anything, mock.Anything).
					Return(nil, &domain.NumericParseError{Field: "Revenue", Raw: "N/A"})
			},
			expectedStatus: http.StatusBadGateway,
			check: func(t *testing.T, body io.Reader) {
				got := decode[api.ErrorResponse](t, body)
				assert.Equal(t, "report data was malformed", got.Error)
			},
		},
		{
			name:           "unknown page",
			path:           "/api/v1/finance",
			setupMocks:     func(b *mockBuilder) {},
			expectedStatus: http.StatusNotFound,
			check:          func(t *testing.T, body io.Reader) {},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			builder := &mockBuilder{name: "sales"}
			tc.setupMocks(builder)
			srv, _ := setup(t, builder)

			resp, err := http.Get(srv.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")
			tc.check(t, resp.Body)
			builder.AssertExpectations(t)
		})
	}
}

func postPage(t *testing.T, url string, req api.PageStateRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestSetPageState(t *testing.T) {
	builder := &mockBuilder{name: "sales"}
	builder.On("Build", mock.Anything, mock.Anything).
		Return(salesReport(defaultPeriods()), nil)
	srv, sess := setup(t, builder)
	pageURL := srv.URL + "/api/v1/sales/tables/Revenue%20By%20Category/page"

	resp := postPage(t, pageURL, api.PageStateRequest{PageSize: 10, Page: 3})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decode[api.Page](t, resp.Body)
	assert.Equal(t, 3, page.Page)
	require.Len(t, page.Rows, 5)
	assert.Equal(t, 1, page.Rows[0].Index)
	assert.Equal(t, "cat-20", page.Rows[0].Key)
	assert.Equal(t, domain.PageState{PageSize: 10, CurrentPage: 3}, sess.Pages().Get("Revenue By Category"))

	// The stored position is used by subsequent report requests.
	reportResp, err := http.Get(srv.URL + "/api/v1/sales")
	require.NoError(t, err)
	defer reportResp.Body.Close()
	got := decode[api.Report](t, reportResp.Body)
	assert.Equal(t, 3, got.Tables[0].Page)
}

func TestSetPageState_Rejected(t *testing.T) {
	tests := []struct {
		name           string
		table          string
		req            api.PageStateRequest
		expectedStatus int
	}{
		{name: "page past the end", table: "Revenue%20By%20Category", req: api.PageStateRequest{PageSize: 10, Page: 4}, expectedStatus: http.StatusBadRequest},
		{name: "page zero", table: "Revenue%20By%20Category", req: api.PageStateRequest{PageSize: 10, Page: 0}, expectedStatus: http.StatusBadRequest},
		{name: "size not offered", table: "Revenue%20By%20Category", req: api.PageStateRequest{PageSize: 7, Page: 1}, expectedStatus: http.StatusBadRequest},
		{name: "zero size", table: "Revenue%20By%20Category", req: api.PageStateRequest{PageSize: 0, Page: 1}, expectedStatus: http.StatusBadRequest},
		{name: "unknown table", table: "Nope", req: api.PageStateRequest{PageSize: 10, Page: 1}, expectedStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			builder := &mockBuilder{name: "sales"}
			builder.On("Build", mock.Anything, mock.Anything).
				Return(salesReport(defaultPeriods()), nil)
			srv, sess := setup(t, builder)

			resp := postPage(t, srv.URL+"/api/v1/sales/tables/"+tc.table+"/page", tc.req)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, domain.PageState{PageSize: 10, CurrentPage: 1}, sess.Pages().Get("Revenue By Category"))
		})
	}
}

func TestSetPageState_BadBody(t *testing.T) {
	srv, _ := setup(t, &mockBuilder{name: "sales"})

	resp, err := http.Post(srv.URL+"/api/v1/sales/tables/x/page", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
