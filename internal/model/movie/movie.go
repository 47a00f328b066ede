package movie

// Summary is the trimmed listing entry returned by search, discover, list,
// trending and recommendation calls. Only the fields a chat client renders
// survive the upstream response.
type Summary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
}

// Page wraps a trimmed result list plus the capped total.
type Page struct {
	Results      []Summary `json:"results"`
	TotalResults int       `json:"total_results"`
}

// CastMember pairs an actor with the character they play.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

// Details is the full record for a single movie.
type Details struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Overview    string       `json:"overview"`
	ReleaseDate string       `json:"release_date"`
	Runtime     int          `json:"runtime"`
	VoteAverage float64      `json:"vote_average"`
	VoteCount   int          `json:"vote_count"`
	Budget      int64        `json:"budget"`
	Revenue     int64        `json:"revenue"`
	Genres      []string     `json:"genres"`
	Cast        []CastMember `json:"cast,omitempty"`
	Director    string       `json:"director,omitempty"`
}

// Providers lists regional watch options for a movie.
type Providers struct {
	MovieID   int      `json:"movie_id"`
	Region    string   `json:"region"`
	Streaming []string `json:"streaming"`
	Rent      []string `json:"rent"`
	Buy       []string `json:"buy"`
	Link      string   `json:"link"`
	Message   string   `json:"message,omitempty"`
}
