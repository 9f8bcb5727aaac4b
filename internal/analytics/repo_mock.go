package analytics

import (
	"context"
	"sync"
	"time"
)

var _ visitsRepo = (*repoMock)(nil)

type repoMock struct {
	mu     sync.Mutex
	visits map[int]*Visit
	nextID int
}

func NewMockVisitsRepo() *repoMock {
	return &repoMock{
		visits: map[int]*Visit{},
		nextID: 1,
	}
}

func (r *repoMock) AddVisit(_ context.Context, visit *Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	visit.ID = r.nextID
	r.nextID++
	r.visits[visit.ID] = visit
	return nil
}

func (r *repoMock) CountAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visits), nil
}

func (r *repoMock) CountSince(_ context.Context, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, v := range r.visits {
		if !v.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *repoMock) CountPerCountry(_ context.Context) ([]CountryVisits, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	perCountry := map[string]int{}
	for _, v := range r.visits {
		perCountry[v.CountryCode]++
	}

	var countryVisits []CountryVisits
	for code, count := range perCountry {
		countryVisits = append(countryVisits, CountryVisits{
			CountryCode: code,
			Visits:      count,
		})
	}
	return countryVisits, nil
}
