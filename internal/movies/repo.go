package movies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pinkth3floyd/cinehub-sub001/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrSlugTaken     = errors.New("movie slug already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const movieColumns = `
	m.id, m.slug, m.title, m.year, m.description, m.poster_url,
	m.rating, m.featured, m.created_at,
	coalesce(array_agg(DISTINCT g.name) FILTER (WHERE g.name IS NOT NULL), '{}') AS genres,
	coalesce(array_agg(DISTINCT t.name) FILTER (WHERE t.name IS NOT NULL), '{}') AS tags`

const movieJoins = `
	LEFT JOIN movie_genre mg ON mg.movie_id = m.id
	LEFT JOIN genre g ON g.id = mg.genre_id
	LEFT JOIN movie_tag mt ON mt.movie_id = m.id
	LEFT JOIN tag t ON t.id = mt.tag_id`

func (r *Repo) Add(ctx context.Context, movie *Movie) error {
	if movie.Slug == "" || movie.Title == "" {
		return errors.New("movie slug or title empty")
	}
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO movie (slug, title, year, description, poster_url, rating, featured, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id;`,
		movie.Slug, movie.Title, movie.Year, movie.Description,
		movie.PosterURL, movie.Rating, movie.Featured, movie.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	if !rows.Next() {
		return errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}

	movie.ID = id
	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (*Movie, error) {
	return r.getOne(
		ctx,
		`SELECT`+movieColumns+` FROM movie m`+movieJoins+` WHERE m.id = $1 GROUP BY m.id;`,
		id,
	)
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*Movie, error) {
	return r.getOne(
		ctx,
		`SELECT`+movieColumns+` FROM movie m`+movieJoins+` WHERE m.slug = $1 GROUP BY m.id;`,
		slug,
	)
}

func (r *Repo) getOne(ctx context.Context, query string, arg any) (*Movie, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrMovieNotFound
	}

	movie, err := scanMovie(rows.Scan)
	if err != nil {
		return nil, err
	}
	return movie, nil
}

func (r *Repo) Update(ctx context.Context, movie *Movie) error {
	if movie.Title == "" {
		return errors.New("movie title empty")
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE movie SET
			slug = $1, title = $2, year = $3, description = $4,
			poster_url = $5, rating = $6, featured = $7
		WHERE id = $8;`,
		movie.Slug, movie.Title, movie.Year, movie.Description,
		movie.PosterURL, movie.Rating, movie.Featured, movie.ID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrMovieNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM movie WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func (r *Repo) List(ctx context.Context, page, size int) ([]Movie, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size

	rows, err := r.db.Query(
		ctx,
		`SELECT`+movieColumns+`
			FROM movie m`+movieJoins+`
			GROUP BY m.id
			ORDER BY m.created_at DESC
			LIMIT $1 OFFSET $2;`,
		size, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovies(rows)
}

func (r *Repo) ListFeatured(ctx context.Context) ([]Movie, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT`+movieColumns+`
			FROM movie m`+movieJoins+`
			WHERE m.featured
			GROUP BY m.id
			ORDER BY m.rating DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovies(rows)
}

func (r *Repo) MoviesCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM movie;`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repo) ListGenres(ctx context.Context) ([]Genre, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM genre ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return genres, nil
}

func (r *Repo) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM tag ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

type scanFunc func(dest ...any) error

func scanMovie(scan scanFunc) (*Movie, error) {
	var m Movie
	if err := scan(
		&m.ID, &m.Slug, &m.Title, &m.Year, &m.Description, &m.PosterURL,
		&m.Rating, &m.Featured, &m.CreatedAt, &m.Genres, &m.Tags,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

type movieRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectMovies(rows movieRows) ([]Movie, error) {
	var movies []Movie
	for rows.Next() {
		movie, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}
