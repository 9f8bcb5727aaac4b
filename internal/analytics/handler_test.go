package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pinkth3floyd/cinehub-sub001/internal/instrumentation"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type staticResolver struct {
	country Country
}

func (s *staticResolver) ResolveCountry(_ context.Context, _ *http.Request) (Country, error) {
	return s.country, nil
}

func testAnalyticsSetup(t *testing.T) (*repoMock, *Handler, *mux.Router) {
	t.Helper()

	repo := NewMockVisitsRepo()
	handler := NewHandler(
		repo,
		&staticResolver{country: Country{Code: "RS", Name: "Serbia"}},
		instrumentation.NewTestInstrumentation(),
	)
	require.NotNil(t, handler)

	r := mux.NewRouter()
	handler.SetupRoutes(r)
	return repo, handler, r
}

func TestNewAnalyticsHandler_Routes(t *testing.T) {
	_, _, r := testAnalyticsSetup(t)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"new-visit": {
			name:   "new-visit",
			path:   "/api/visit",
			method: "POST",
		},
		"analytics-countries": {
			name:   "analytics-countries",
			path:   "/admin/api/analytics/countries",
			method: "GET",
		},
		"analytics-summary": {
			name:   "analytics-summary",
			path:   "/admin/api/analytics/summary",
			method: "GET",
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)

			routeMatch := &mux.RouteMatch{}
			muxRoute := r.Get(route.name)
			require.NotNil(t, muxRoute)
			assert.True(t, muxRoute.Match(req, routeMatch), caseName)
		})
	}
}

func TestAnalyticsHandler_NewVisit(t *testing.T) {
	repo, _, r := testAnalyticsSetup(t)

	body := bytes.NewReader([]byte(`{"page":"/movies/blade-runner"}`))
	req := httptest.NewRequest("POST", "/api/visit", body)
	req.Header.Set("User-Agent", "test-agent")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "added:1", rr.Body.String())

	count, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	visit := repo.visits[1]
	require.NotNil(t, visit)
	assert.Equal(t, "/movies/blade-runner", visit.Page)
	assert.Equal(t, "test-agent", visit.UserAgent)
	assert.Equal(t, "RS", visit.CountryCode)
	assert.False(t, visit.Timestamp.IsZero())
}

func TestAnalyticsHandler_NewVisit_BadRequest(t *testing.T) {
	_, _, r := testAnalyticsSetup(t)

	for _, body := range []string{
		`{"userAgent":"no-page"}`,
		`not json`,
	} {
		req := httptest.NewRequest("POST", "/api/visit", bytes.NewReader([]byte(body)))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}

func TestAnalyticsHandler_Countries(t *testing.T) {
	repo, _, r := testAnalyticsSetup(t)

	ctx := context.Background()
	now := time.Now()
	for _, code := range []string{"RS", "RS", "DE"} {
		require.NoError(t, repo.AddVisit(ctx, &Visit{
			Page:        "/",
			CountryCode: code,
			Timestamp:   now,
		}))
	}

	req := httptest.NewRequest("GET", "/admin/api/analytics/countries", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var countryVisits []CountryVisits
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &countryVisits))
	require.Len(t, countryVisits, 2)

	perCountry := map[string]int{}
	for _, cv := range countryVisits {
		perCountry[cv.CountryCode] = cv.Visits
	}
	assert.Equal(t, 2, perCountry["RS"])
	assert.Equal(t, 1, perCountry["DE"])
}

func TestAnalyticsHandler_Countries_Empty(t *testing.T) {
	_, _, r := testAnalyticsSetup(t)

	req := httptest.NewRequest("GET", "/admin/api/analytics/countries", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	repo, handler, r := testAnalyticsSetup(t)

	now := time.Now()
	handler.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, repo.AddVisit(ctx, &Visit{Page: "/", Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, repo.AddVisit(ctx, &Visit{Page: "/", Timestamp: now.Add(-3 * 24 * time.Hour)}))
	require.NoError(t, repo.AddVisit(ctx, &Visit{Page: "/", Timestamp: now.Add(-30 * 24 * time.Hour)}))

	req := httptest.NewRequest("GET", "/admin/api/analytics/summary", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var summary struct {
		Total    int `json:"total"`
		LastDay  int `json:"lastDay"`
		LastWeek int `json:"lastWeek"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.LastDay)
	assert.Equal(t, 2, summary.LastWeek)
}
