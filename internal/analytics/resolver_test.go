package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ipInfoTestResponse = `{
	"ip": "80.36.233.153",
	"hostname": "153.red-80-36-233.staticip.rima-tde.net",
	"city": "Palma",
	"region": "Balearic Islands",
	"country": "ES",
	"loc": "39.5680,2.6835",
	"org": "AS3352 TELEFONICA DE ESPANA S.A.U.",
	"postal": "07198",
	"timezone": "Europe/Madrid"
}`

func TestResolver_ResolveCountry_DevLocalhost(t *testing.T) {
	db, _ := redismock.NewClientMock()
	resolver := NewResolver("dummy-api-key", nil, db)
	require.NotNil(t, resolver)

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:51234"

	country, err := resolver.ResolveCountry(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, devCountry, country)
}

func TestResolver_ResolveCountry_FromCache(t *testing.T) {
	cached := Country{Code: "RS", Name: "Serbia"}
	cachedJson, err := json.Marshal(cached)
	require.NoError(t, err)

	db, mock := redismock.NewClientMock()
	mock.ExpectGet("country-info::80.36.233.153").SetVal(string(cachedJson))

	resolver := NewResolver("dummy-api-key", nil, db)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Real-Ip", "80.36.233.153")

	country, err := resolver.ResolveCountry(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, cached, country)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_ResolveCountry_FromIpInfoApi(t *testing.T) {
	apiCallsCount := 0
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCallsCount++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ipInfoTestResponse))
	}))
	defer testServer.Close()

	db, mock := redismock.NewClientMock()
	mock.ExpectGet("country-info::80.36.233.153").RedisNil()
	mock.Regexp().ExpectSet("country-info::80.36.233.153", `.*"code":"ES".*`, 0).SetVal("OK")

	resolver := NewResolver("dummy-api-key", testServer.Client(), db)
	baseURL, err := url.Parse(testServer.URL + "/")
	require.NoError(t, err)
	resolver.ipInfo.BaseURL = baseURL

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Real-Ip", "80.36.233.153")

	country, err := resolver.ResolveCountry(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ES", country.Code)
	assert.Equal(t, 1, apiCallsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_ResolveCountry_InvalidIP(t *testing.T) {
	db, _ := redismock.NewClientMock()
	resolver := NewResolver("dummy-api-key", nil, db)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Real-Ip", "not-an-ip")

	_, err := resolver.ResolveCountry(context.Background(), req)
	require.Error(t, err)
}
