package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/pinkth3floyd/cinehub-sub001/internal/telemetry/tracing"
	"github.com/pinkth3floyd/cinehub-sub001/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/ipinfo/go/v2/ipinfo"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// used for development
var devCountry = Country{
	Code: "DE",
	Name: "Germany",
}

type Resolver struct {
	mu          sync.Mutex
	ipInfo      *ipinfo.Client
	redisClient *redis.Client
}

func NewResolver(
	ipInfoAPIKey string,
	httpClient *http.Client,
	redisClient *redis.Client,
) *Resolver {
	return &Resolver{
		ipInfo:      ipinfo.NewClient(httpClient, nil, ipInfoAPIKey),
		redisClient: redisClient,
	}
}

// ResolveCountry gets the country of the request origin. The ipinfo
// free plan has a monthly quota, so resolved countries are cached in
// redis and concurrent lookups are serialized behind a mutex.
func (res *Resolver) ResolveCountry(ctx context.Context, r *http.Request) (Country, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsResolver.resolveCountry")
	defer span.End()

	userIp, err := pkg.ReadUserIP(r)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get user ip: %s", err))
		return Country{}, fmt.Errorf("get user ip: %w", err)
	}
	span.SetAttributes(attribute.String("user.ip", userIp))

	// used for development
	if userIp == "localhost" {
		log.Debugf("resolve country: returning development localhost / Germany")
		return devCountry, nil
	}

	res.mu.Lock()
	defer res.mu.Unlock()

	userIpKey := fmt.Sprintf("country-info::%s", userIp)
	cmd := res.redisClient.Get(ctx, userIpKey)
	if countryBytes := cmd.Val(); countryBytes != "" {
		var country Country
		if err := json.Unmarshal([]byte(countryBytes), &country); err == nil {
			span.SetAttributes(attribute.Bool("user.ip.from-cache", true))
			log.Tracef("found country info for [%s] in redis cache", userIp)
			return country, nil
		}
		log.Errorf("failed to unmarshal cached country info from redis for %s: %s", userIp, err)
		// continue, and try getting it from the ipinfo API
	} else {
		span.SetAttributes(attribute.Bool("user.ip.from-cache", false))
		log.Debugf("country info value from redis not found for [%s]", userIp)
	}

	log.Debugf("will ask ipinfo API for country info: %s", userIp)

	info, err := res.ipInfo.GetIPInfo(net.ParseIP(userIp))
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("get ip info: %s", err))
		return Country{}, fmt.Errorf("get ip info for %s: %w", userIp, err)
	}

	country := Country{
		Code: info.Country,
		Name: info.CountryName,
	}

	countryJson, err := json.Marshal(country)
	if err != nil {
		return country, nil
	}
	if err := res.redisClient.Set(ctx, userIpKey, countryJson, 0).Err(); err != nil {
		log.Errorf("failed to cache country info in redis for %s: %s", userIp, err)
	} else {
		log.Debugf("country info cache set in redis for: %s", userIp)
	}

	return country, nil
}
