package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pinkth3floyd/cinehub-sub001/internal/instrumentation"
	"github.com/pinkth3floyd/cinehub-sub001/internal/telemetry/tracing"
	"github.com/pinkth3floyd/cinehub-sub001/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type visitsRepo interface {
	AddVisit(ctx context.Context, visit *Visit) error
	CountAll(ctx context.Context) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	CountPerCountry(ctx context.Context) ([]CountryVisits, error)
}

type countryResolver interface {
	ResolveCountry(ctx context.Context, r *http.Request) (Country, error)
}

type Handler struct {
	repo     visitsRepo
	resolver countryResolver
	instr    *instrumentation.Instrumentation
	now      func() time.Time
}

func NewHandler(
	repo visitsRepo,
	resolver countryResolver,
	instr *instrumentation.Instrumentation,
) *Handler {
	return &Handler{
		repo:     repo,
		resolver: resolver,
		instr:    instr,
		now:      time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/visit", handler.handleNewVisit).Methods("POST", "OPTIONS").Name("new-visit")

	// admin back office, session-gated upstream
	router.HandleFunc("/admin/api/analytics/countries", handler.handleCountries).Methods("GET").Name("analytics-countries")
	router.HandleFunc("/admin/api/analytics/summary", handler.handleSummary).Methods("GET").Name("analytics-summary")
}

func (handler *Handler) handleNewVisit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "analyticsHandler.newVisit")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var visit Visit
	if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
		log.Errorf("new visit, unmarshal json params: %s", err)
		http.Error(w, "add visit failed", http.StatusBadRequest)
		return
	}

	if visit.Page == "" {
		http.Error(w, "error, page empty", http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.String("visit.page", visit.Page))

	visit.UserAgent = r.UserAgent()
	visit.Timestamp = handler.now()

	// country resolution is best effort, a visit without it is still a visit
	if country, err := handler.resolver.ResolveCountry(ctx, r); err != nil {
		log.Errorf("new visit, resolve country: %s", err)
	} else {
		visit.CountryCode = country.Code
	}

	if err := handler.repo.AddVisit(ctx, &visit); err != nil {
		log.Errorf("add visit failed: %s", err)
		span.SetStatus(codes.Error, "add-visit-err")
		http.Error(w, "add visit failed", http.StatusInternalServerError)
		return
	}

	handler.instr.CounterVisits.Inc()

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponse(w, pkg.ContentType.Text, fmt.Sprintf("added:%d", visit.ID), http.StatusCreated)
}

func (handler *Handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "analyticsHandler.countries")
	defer span.End()

	countryVisits, err := handler.repo.CountPerCountry(ctx)
	if err != nil {
		log.Errorf("count visits per country error: %s", err)
		span.SetStatus(codes.Error, "count-per-country-err")
		http.Error(w, "failed to get visits per country", http.StatusInternalServerError)
		return
	}

	if len(countryVisits) == 0 {
		countryVisits = []CountryVisits{}
	}

	countriesJson, err := json.Marshal(countryVisits)
	if err != nil {
		log.Errorf("marshal country visits error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, countriesJson)
}

func (handler *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "analyticsHandler.summary")
	defer span.End()

	now := handler.now()

	total, err := handler.repo.CountAll(ctx)
	if err != nil {
		log.Errorf("count all visits error: %s", err)
		span.SetStatus(codes.Error, "count-all-err")
		http.Error(w, "failed to get visits summary", http.StatusInternalServerError)
		return
	}

	lastDay, err := handler.repo.CountSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		log.Errorf("count visits last day error: %s", err)
		span.SetStatus(codes.Error, "count-since-err")
		http.Error(w, "failed to get visits summary", http.StatusInternalServerError)
		return
	}

	lastWeek, err := handler.repo.CountSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		log.Errorf("count visits last week error: %s", err)
		span.SetStatus(codes.Error, "count-since-err")
		http.Error(w, "failed to get visits summary", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	resJson := fmt.Sprintf(
		`{"total": %d, "lastDay": %d, "lastWeek": %d}`,
		total, lastDay, lastWeek,
	)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}
