//go:build integration_test || all_tests

package analytics

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	pkgtesting "github.com/pinkth3floyd/cinehub-sub001/pkg/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ResolveCountry_RedisCached(t *testing.T) {
	ctx, rdb := pkgtesting.GetRedisClientAndCtx(t)
	defer func() {
		require.NoError(t, rdb.Close())
	}()

	cached := Country{Code: "RS", Name: "Serbia"}
	cachedJson, err := json.Marshal(cached)
	require.NoError(t, err)

	userIpKey := "country-info::80.36.233.153"
	require.NoError(t, rdb.Set(ctx, userIpKey, cachedJson, 0).Err())
	defer func() {
		require.NoError(t, rdb.Del(ctx, userIpKey).Err())
	}()

	resolver := NewResolver("dummy-api-key", nil, rdb)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Real-Ip", "80.36.233.153")

	country, err := resolver.ResolveCountry(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, cached, country)
}
