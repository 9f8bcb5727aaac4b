package movies

import (
	"context"
	"sort"
)

var _ moviesRepo = (*repoMock)(nil)

type repoMock struct {
	movies map[int]*Movie
	nextID int
	genres []Genre
	tags   []Tag
}

func NewMockMoviesRepo() *repoMock {
	return &repoMock{
		movies: make(map[int]*Movie),
		nextID: 1,
	}
}

func (r *repoMock) Add(_ context.Context, movie *Movie) error {
	for _, m := range r.movies {
		if m.Slug == movie.Slug {
			return ErrSlugTaken
		}
	}
	movie.ID = r.nextID
	r.nextID++
	r.movies[movie.ID] = movie
	return nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Movie, error) {
	movie, ok := r.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return movie, nil
}

func (r *repoMock) GetBySlug(_ context.Context, slug string) (*Movie, error) {
	for _, m := range r.movies {
		if m.Slug == slug {
			return m, nil
		}
	}
	return nil, ErrMovieNotFound
}

func (r *repoMock) Update(ctx context.Context, movie *Movie) error {
	if _, err := r.Get(ctx, movie.ID); err != nil {
		return err
	}
	r.movies[movie.ID] = movie
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	if _, ok := r.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(r.movies, id)
	return nil
}

func (r *repoMock) List(_ context.Context, page, size int) ([]Movie, error) {
	all := r.sorted()
	offset := (page - 1) * size
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *repoMock) ListFeatured(_ context.Context) ([]Movie, error) {
	var featured []Movie
	for _, m := range r.sorted() {
		if m.Featured {
			featured = append(featured, m)
		}
	}
	return featured, nil
}

func (r *repoMock) MoviesCount(_ context.Context) (int, error) {
	return len(r.movies), nil
}

func (r *repoMock) ListGenres(_ context.Context) ([]Genre, error) {
	return r.genres, nil
}

func (r *repoMock) ListTags(_ context.Context) ([]Tag, error) {
	return r.tags, nil
}

func (r *repoMock) sorted() []Movie {
	var all []Movie
	for _, m := range r.movies {
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}
