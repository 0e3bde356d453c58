package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/czdate/internal/profile"
	"github.com/hrygo/czdate/plugin/cache"
	"github.com/hrygo/czdate/plugin/dateparser"
	"github.com/hrygo/czdate/plugin/recognizer"
	apierrors "github.com/hrygo/czdate/server/internal/errors"
	"github.com/hrygo/czdate/server/internal/observability"
)

var prague = time.FixedZone("CET", 3600)

type testServer struct {
	echo    *echo.Echo
	service *APIV1Service
}

// newTestServer serves the API over oracle; nil selects the builtin recognizer
// pinned to Tuesday 2026-10-13.
func newTestServer(t *testing.T, oracle dateparser.Oracle, mutate func(*profile.Profile)) *testServer {
	t.Helper()

	p := &profile.Profile{Version: "test", MaxBatchSize: 3, MaxTextLength: 50}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, p.Validate())

	if oracle == nil {
		fixedNow := time.Date(2026, 10, 13, 10, 0, 0, 0, prague)
		oracle = recognizer.NewBuiltin(prague).WithClock(func() time.Time { return fixedNow })
	}

	store := cache.NewService(cache.Config{Capacity: 10, CleanupInterval: time.Hour})
	t.Cleanup(store.Close)

	e := echo.New()
	svc := NewAPIV1Service(p, dateparser.NewExtendedParser(oracle), observability.NewMetrics(100), store, nil)
	svc.RegisterRoutes(e)
	return &testServer{echo: e, service: svc}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestParseDate(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	tests := []struct {
		text string
		want string
	}{
		{"zitra", `{"date":"2026-10-14","normalized":"zitra"}`},
		{"6.1.", `{"date":"2027-01-06","normalized":"6. 1."}`},
		{"blbost", `{"date":null,"normalized":"blbost"}`},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/v1/dates/parse", `{"text":"`+tt.text+`"}`)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestSearchDates(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(http.MethodPost, "/api/v1/dates/search", `{"text":"chci dovcu od nedele do 23.12."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `{
		"normalized": "chci dovcu od neděle do 23. 12.",
		"dates": [
			{"start": 14, "end": 20, "value": "neděle", "parsed_date": "2026-10-18", "range": "start"},
			{"start": 24, "end": 31, "value": "23. 12.", "parsed_date": "2026-12-23", "range": "end"}
		]
	}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSearchDates_NoDates(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(http.MethodPost, "/api/v1/dates/search", `{"text":"nic"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"normalized":"nic","dates":[]}`, rec.Body.String())
}

func TestBatchSearchDates(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(http.MethodPost, "/api/v1/dates/batch-search", `{"texts":["zitra","nic","od 1. 1. do 5. 1."]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BatchSearchResponse](t, rec)
	require.Len(t, resp.Results, 3)
	assert.Len(t, resp.Results[0].Dates, 1)
	assert.Empty(t, resp.Results[1].Dates)
	require.Len(t, resp.Results[2].Dates, 2)
	assert.Equal(t, dateparser.RangeStart, resp.Results[2].Dates[0].Range)
	assert.Equal(t, dateparser.RangeEnd, resp.Results[2].Dates[1].Range)
}

func TestExportDates(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(http.MethodPost, "/api/v1/dates/export", `{"text":"dovca od nedele do 23.12.","summary":"Dovolená"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/calendar")

	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Dovolená")
	assert.Contains(t, body, "20261018")
	assert.Contains(t, body, "20261224")
}

func TestDateAPI_InvalidArgument(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed body", "/api/v1/dates/search", `{"text":`},
		{"text too long", "/api/v1/dates/parse", `{"text":"` + strings.Repeat("á", 51) + `"}`},
		{"empty batch", "/api/v1/dates/batch-search", `{"texts":[]}`},
		{"batch too large", "/api/v1/dates/batch-search", `{"texts":["a","b","c","d"]}`},
		{"batch text too long", "/api/v1/dates/batch-search", `{"texts":["` + strings.Repeat("x", 51) + `"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apierrors.ErrCodeInvalidArgument, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestDateAPI_OracleErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apierrors.ErrorCode
	}{
		{"unavailable", errors.Wrap(recognizer.ErrUnavailable, "sidecar returned status 503"), http.StatusBadGateway, apierrors.ErrCodeOracleUnavailable},
		{"timeout", errors.Wrap(context.DeadlineExceeded, "llm request"), http.StatusGatewayTimeout, apierrors.ErrCodeTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, apierrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := dateparser.NewMockOracle()
			oracle.Err = tt.err
			ts := newTestServer(t, oracle, nil)

			for _, path := range []string{"/api/v1/dates/parse", "/api/v1/dates/search", "/api/v1/dates/export"} {
				rec := ts.do(http.MethodPost, path, `{"text":"zitra"}`)
				assert.Equal(t, tt.wantStatus, rec.Code, path)
				assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code, path)
			}

			rec := ts.do(http.MethodPost, "/api/v1/dates/batch-search", `{"texts":["zitra","pozitri"]}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, nil, func(p *profile.Profile) {
		p.RateLimit = 0.001
		p.RateBurst = 1
	})

	rec := ts.do(http.MethodPost, "/api/v1/dates/parse", `{"text":"zitra"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/dates/parse", `{"text":"zitra"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apierrors.ErrCodeRateLimitExceeded, decode[ErrorResponse](t, rec).Code)

	// Health checks are not limited.
	rec = ts.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test","oracle":"dateparser"}`, rec.Body.String())
}

func TestGetMetrics(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	ts.do(http.MethodPost, "/api/v1/dates/search", `{"text":"od zitra do patku"}`)
	ts.do(http.MethodPost, "/api/v1/dates/parse", `{"text":"zitra"}`)

	rec := ts.do(http.MethodGet, "/api/v1/system/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RequestTotal int64   `json:"request_total"`
		DatesFound   int64   `json:"dates_found"`
		SuccessRate  float64 `json:"success_rate"`
		Operations   map[string]struct {
			Count int64 `json:"count"`
		} `json:"operations"`
		Cache *struct {
			Size int `json:"size"`
		} `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(2), resp.RequestTotal, "the metrics call itself is recorded after the snapshot")
	assert.Equal(t, int64(3), resp.DatesFound)
	assert.Equal(t, 100.0, resp.SuccessRate)
	assert.Equal(t, int64(1), resp.Operations["dates.search"].Count)
	assert.Equal(t, int64(1), resp.Operations["dates.parse"].Count)
	assert.NotNil(t, resp.Cache)
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidArgument, decode[ErrorResponse](t, rec).Code)
}
