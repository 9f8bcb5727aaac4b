package movies

import "time"

type Movie struct {
	ID          int       `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	PosterURL   string    `json:"poster_url"`
	Rating      float64   `json:"rating"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	Genres      []string  `json:"genres"`
	Tags        []string  `json:"tags"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
