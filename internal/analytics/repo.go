package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/pinkth3floyd/cinehub-sub001/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Visit struct {
	ID          int       `json:"id"`
	Page        string    `json:"page"`      // mandatory
	UserAgent   string    `json:"userAgent"`
	CountryCode string    `json:"countryCode"`
	Timestamp   time.Time `json:"timestamp"` // mandatory
}

type CountryVisits struct {
	CountryCode string `json:"countryCode"`
	Visits      int    `json:"visits"`
}

var _ visitsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddVisit(ctx context.Context, visit *Visit) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsRepo.addVisit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	span.SetAttributes(attribute.String("visit.page", visit.Page))
	span.SetAttributes(attribute.String("visit.country", visit.CountryCode))

	if visit.Page == "" || visit.Timestamp.IsZero() {
		span.SetStatus(codes.Error, "visit page or timestamp empty")
		return errors.New("visit page or timestamp empty")
	}

	return r.db.QueryRow(
		ctx,
		`INSERT INTO analytics.visit (page, user_agent, country_code, timestamp)
			VALUES ($1, $2, $3, $4) RETURNING id;`,
		visit.Page, visit.UserAgent, visit.CountryCode, visit.Timestamp,
	).Scan(&visit.ID)
}

func (r *Repo) CountAll(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsRepo.countAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM analytics.visit;`,
	).Scan(&count); err != nil {
		return -1, err
	}

	return count, nil
}

func (r *Repo) CountSince(ctx context.Context, since time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsRepo.countSince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	span.SetAttributes(attribute.String("visit.from-time", since.String()))

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM analytics.visit WHERE timestamp >= $1;`,
		since,
	).Scan(&count); err != nil {
		return -1, err
	}

	return count, nil
}

func (r *Repo) CountPerCountry(ctx context.Context) (_ []CountryVisits, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsRepo.countPerCountry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT COALESCE(country_code, '') as country_code, COUNT(*) as visits
		FROM analytics.visit
		GROUP BY country_code
		ORDER BY visits DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var countryVisits []CountryVisits
	for rows.Next() {
		var cv CountryVisits
		if err := rows.Scan(&cv.CountryCode, &cv.Visits); err != nil {
			return nil, err
		}
		countryVisits = append(countryVisits, cv)
	}

	span.SetAttributes(attribute.Int("found-countries", len(countryVisits)))
	return countryVisits, nil
}
