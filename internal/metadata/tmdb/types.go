package tmdb

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Record is a movie or TV show as returned by TMDb, either from a detail
// endpoint or as one entry of a search response. The typed fields document
// what the frontends read; Raw keeps the provider's object verbatim so the
// record can be handed on without loss.
type Record struct {
	ID              int     `json:"id"`
	Title           string  `json:"title,omitempty"`          // movies
	Name            string  `json:"name,omitempty"`           // shows
	OriginalTitle   string  `json:"original_title,omitempty"` // movies
	OriginalName    string  `json:"original_name,omitempty"`  // shows
	Overview        string  `json:"overview,omitempty"`
	Tagline         string  `json:"tagline,omitempty"`
	Status          string  `json:"status,omitempty"`
	PosterPath      string  `json:"poster_path,omitempty"`
	BackdropPath    string  `json:"backdrop_path,omitempty"`
	ReleaseDate     string  `json:"release_date,omitempty"`   // movies
	FirstAirDate    string  `json:"first_air_date,omitempty"` // shows
	VoteAverage     float64 `json:"vote_average,omitempty"`
	VoteCount       int     `json:"vote_count,omitempty"`
	Runtime         int     `json:"runtime,omitempty"`
	NumberOfSeasons int     `json:"number_of_seasons,omitempty"`
	Genres          []Genre `json:"genres,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Genre represents a movie or TV genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// recordFields has Record's layout without its methods.
type recordFields Record

// UnmarshalJSON decodes the documented fields and keeps a copy of the input.
func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var f recordFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Record(f)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the provider's object unchanged when one was decoded,
// and "{}" for the zero record.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	if r.IsZero() {
		return []byte("{}"), nil
	}
	return json.Marshal(recordFields(r))
}

// IsZero reports whether nothing has been loaded into the record.
func (r Record) IsZero() bool {
	return r.ID == 0 && len(r.Raw) == 0
}

// DisplayTitle returns the movie title or show name, whichever is set.
func (r Record) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	if r.Name != "" {
		return r.Name
	}
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.OriginalName
}

// Date returns the release date for movies or the first air date for shows.
func (r Record) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// Year returns the year of Date, or 0 when unknown.
func (r Record) Year() int {
	d := r.Date()
	if len(d) < 4 {
		return 0
	}
	y, err := strconv.Atoi(d[:4])
	if err != nil {
		return 0
	}
	return y
}

// GenreNames returns the names of the record's genres in order.
func (r Record) GenreNames() []string {
	names := make([]string, 0, len(r.Genres))
	for _, g := range r.Genres {
		names = append(names, g.Name)
	}
	return names
}

// searchResponse is the TMDb paginated search response.
type searchResponse struct {
	Page         int      `json:"page"`
	Results      []Record `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}
