package movies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pinkth3floyd/cinehub-sub001/internal/instrumentation"
	"github.com/pinkth3floyd/cinehub-sub001/internal/telemetry/tracing"
	"github.com/pinkth3floyd/cinehub-sub001/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type moviesRepo interface {
	Add(ctx context.Context, movie *Movie) error
	Get(ctx context.Context, id int) (*Movie, error)
	GetBySlug(ctx context.Context, slug string) (*Movie, error)
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, page, size int) ([]Movie, error)
	ListFeatured(ctx context.Context) ([]Movie, error)
	MoviesCount(ctx context.Context) (int, error)
	ListGenres(ctx context.Context) ([]Genre, error)
	ListTags(ctx context.Context) ([]Tag, error)
}

type Handler struct {
	repo  moviesRepo
	cache *detailCache
	instr *instrumentation.Instrumentation
}

func NewHandler(
	repo moviesRepo,
	cacheSize int,
	instr *instrumentation.Instrumentation,
) *Handler {
	return &Handler{
		repo:  repo,
		cache: newDetailCache(cacheSize),
		instr: instr,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	// public catalog
	router.HandleFunc("/api/movies/page/{page}/size/{size}", handler.handleList).Methods("GET").Name("list-movies")
	router.HandleFunc("/api/movies/featured", handler.handleFeatured).Methods("GET").Name("featured-movies")
	router.HandleFunc("/api/movies/{slug}", handler.handleGetBySlug).Methods("GET").Name("get-movie")
	router.HandleFunc("/api/genres", handler.handleGenres).Methods("GET").Name("list-genres")
	router.HandleFunc("/api/tags", handler.handleTags).Methods("GET").Name("list-tags")

	// admin back office, session-gated upstream
	router.HandleFunc("/admin/api/movies", handler.handleAdd).Methods("POST", "OPTIONS").Name("new-movie")
	router.HandleFunc("/admin/api/movies", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-movie")
	router.HandleFunc("/admin/api/movies/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-movie")
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "moviesHandler.list")
	defer span.End()

	vars := mux.Vars(r)

	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		http.Error(w, "error, page NaN", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		http.Error(w, "error, size NaN", http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.Int("page", page))
	span.SetAttributes(attribute.Int("size", size))

	movies, err := handler.repo.List(r.Context(), page, size)
	if err != nil {
		log.Errorf("list movies error: %s", err)
		span.SetStatus(codes.Error, "list-movies-err")
		http.Error(w, "failed to get movies", http.StatusInternalServerError)
		return
	}

	total, err := handler.repo.MoviesCount(r.Context())
	if err != nil {
		log.Errorf("movies count error: %s", err)
		span.SetStatus(codes.Error, "movies-count-err")
		http.Error(w, "failed to get movies", http.StatusInternalServerError)
		return
	}

	if len(movies) == 0 {
		movies = []Movie{}
	}

	moviesJson, err := json.Marshal(movies)
	if err != nil {
		log.Errorf("marshal movies error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	resJson := fmt.Sprintf(`{"movies": %s, "total": %d}`, moviesJson, total)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}

func (handler *Handler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "moviesHandler.featured")
	defer span.End()

	movies, err := handler.repo.ListFeatured(r.Context())
	if err != nil {
		log.Errorf("list featured movies error: %s", err)
		span.SetStatus(codes.Error, "featured-movies-err")
		http.Error(w, "failed to get movies", http.StatusInternalServerError)
		return
	}

	if len(movies) == 0 {
		movies = []Movie{}
	}

	moviesJson, err := json.Marshal(movies)
	if err != nil {
		log.Errorf("marshal featured movies error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, moviesJson)
}

func (handler *Handler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "moviesHandler.getBySlug")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	if slug == "" {
		http.Error(w, "error, slug empty", http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.String("movie.slug", slug))

	if cached, ok := handler.cache.get(slug); ok {
		span.SetAttributes(attribute.Bool("movie.from-cache", true))
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	movie, err := handler.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("get movie [%s] error: %s", slug, err)
		span.SetStatus(codes.Error, "get-movie-err")
		http.Error(w, "failed to get movie", http.StatusInternalServerError)
		return
	}

	movieJson, err := json.Marshal(movie)
	if err != nil {
		log.Errorf("marshal movie error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.cache.set(slug, movieJson)

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, movieJson)
}

func (handler *Handler) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := handler.repo.ListGenres(r.Context())
	if err != nil {
		log.Errorf("list genres error: %s", err)
		http.Error(w, "failed to get genres", http.StatusInternalServerError)
		return
	}

	if len(genres) == 0 {
		genres = []Genre{}
	}

	genresJson, err := json.Marshal(genres)
	if err != nil {
		log.Errorf("marshal genres error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, genresJson)
}

func (handler *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := handler.repo.ListTags(r.Context())
	if err != nil {
		log.Errorf("list tags error: %s", err)
		http.Error(w, "failed to get tags", http.StatusInternalServerError)
		return
	}

	if len(tags) == 0 {
		tags = []Tag{}
	}

	tagsJson, err := json.Marshal(tags)
	if err != nil {
		log.Errorf("marshal tags error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, tagsJson)
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "moviesHandler.add")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var movie Movie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		log.Errorf("new movie, unmarshal json params: %s", err)
		http.Error(w, "add movie failed", http.StatusBadRequest)
		return
	}

	if movie.Title == "" {
		http.Error(w, "error, title empty", http.StatusBadRequest)
		return
	}
	if movie.Slug == "" {
		http.Error(w, "error, slug empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Add(r.Context(), &movie); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			http.Error(w, "error, slug taken", http.StatusConflict)
			return
		}
		log.Errorf("add new movie failed: %s", err)
		span.SetStatus(codes.Error, "add-movie-err")
		http.Error(w, "add new movie failed", http.StatusInternalServerError)
		return
	}

	handler.instr.CounterMoviesAdded.Inc()

	log.Tracef("new movie %d: [%s] added", movie.ID, movie.Title)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponse(w, pkg.ContentType.Text, fmt.Sprintf("added:%d", movie.ID), http.StatusCreated)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "moviesHandler.update")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var movie Movie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		log.Errorf("update movie, unmarshal json params: %s", err)
		http.Error(w, "update movie failed", http.StatusBadRequest)
		return
	}

	if movie.ID == 0 {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Update(r.Context(), &movie); err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("update movie [%d] failed: %s", movie.ID, err)
		span.SetStatus(codes.Error, "update-movie-err")
		http.Error(w, "update movie failed", http.StatusInternalServerError)
		return
	}

	handler.cache.invalidate(movie.Slug)

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteTextResponseOK(w, fmt.Sprintf("updated:%d", movie.ID))
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "moviesHandler.delete")
	defer span.End()

	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	// fetch first so the detail cache entry can be dropped by slug
	movie, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("delete movie, get %d: %s", id, err)
		http.Error(w, "delete movie failed", http.StatusInternalServerError)
		return
	}

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		log.Errorf("failed to delete movie %d: %s", id, err)
		span.SetStatus(codes.Error, "delete-movie-err")
		http.Error(w, "delete movie failed", http.StatusInternalServerError)
		return
	}

	handler.cache.invalidate(movie.Slug)

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteTextResponseOK(w, fmt.Sprintf("deleted:%d", id))
}
