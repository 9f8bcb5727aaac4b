package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pinkth3floyd/cinehub-sub001/internal/auth"
	"github.com/pinkth3floyd/cinehub-sub001/internal/instrumentation"
	"github.com/pinkth3floyd/cinehub-sub001/internal/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAdminGate_Gate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSessionReader := NewMockSessionReader(ctrl)
	gate := middleware.NewAdminGate(
		mockSessionReader,
		instrumentation.NewTestInstrumentation(),
	)

	validSession := auth.NewSession("admin@cinehub.dev", time.Now())

	testCases := []struct {
		name               string
		path               string
		method             string
		session            *auth.Session
		expectLookup       bool
		expectedStatusCode int
		expectedLocation   string
	}{
		{
			name:               "PublicCatalogPageWithoutSession",
			path:               "/movies/the-big-lebowski",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "RootWithoutSession",
			path:               "/",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ApiPrefixSkipped",
			path:               "/api/movies",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "StaticAssetsSkipped",
			path:               "/static/app.css",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ImageOptimizationSkipped",
			path:               "/images/poster.webp",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "FaviconSkipped",
			path:               "/favicon.ico",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "LoginPageAlwaysReachable",
			path:               "/login",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "LoginActionAlwaysReachable",
			path:               "/a/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AdminPageWithoutSession",
			path:               "/admin/dashboard",
			method:             "GET",
			expectLookup:       true,
			expectedStatusCode: http.StatusSeeOther,
			expectedLocation:   "/login?redirect=%2Fadmin%2Fdashboard",
		},
		{
			name:               "AdminPageWithValidSession",
			path:               "/admin/dashboard",
			method:             "GET",
			session:            &validSession,
			expectLookup:       true,
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AdminMoviesApiWithoutSession",
			path:               "/admin/api/movies",
			method:             "POST",
			expectLookup:       true,
			expectedStatusCode: http.StatusSeeOther,
			expectedLocation:   "/login?redirect=%2Fadmin%2Fapi%2Fmovies",
		},
		{
			name:               "Options",
			path:               "/admin/dashboard",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)

			if tc.expectLookup {
				mockSessionReader.EXPECT().
					FetchValidReadOnly(gomock.Any()).
					Return(tc.session)
			}

			rr := httptest.NewRecorder()
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})
			gate.Gate()(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedLocation != "" {
				assert.Equal(t, tc.expectedLocation, rr.Header().Get("Location"))
				assert.False(t, nextCalled)
			}
		})
	}
}
