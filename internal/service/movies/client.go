// Package movies wraps the TMDB v3 REST API. Responses are filtered down to
// the fields the assistant and its clients actually use.
package movies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinewise/movie-assistant/internal/metrics"
	"github.com/cinewise/movie-assistant/internal/model/movie"
)

var (
	// ErrUpstream marks catalog failures: transport errors, non-2xx
	// statuses, undecodable bodies. Handlers map it to 502.
	ErrUpstream = errors.New("movie catalog unavailable")

	// ErrInvalidArgument marks caller mistakes such as an unknown list type.
	ErrInvalidArgument = errors.New("invalid argument")
)

const (
	maxResults       = 5
	maxCast          = 10
	overviewLongMax  = 200
	overviewShortMax = 150
)

// Client talks to the TMDB API. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zerolog.Logger
}

// NewClient builds a catalog client. An empty baseURL selects the public
// TMDB endpoint.
func NewClient(baseURL, apiKey string, logger *zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger,
	}
}

type rawMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
}

type rawPage struct {
	Results      []rawMovie `json:"results"`
	TotalResults int        `json:"total_results"`
}

// Search finds movies by title. Results are capped to the top five with
// overviews truncated for chat-sized payloads.
func (c *Client) Search(ctx context.Context, query string, page int) (*movie.Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(normalizePage(page)))
	q.Set("language", "en-US")

	var raw rawPage
	if err := c.get(ctx, "search", "/search/movie", q, &raw); err != nil {
		return nil, err
	}
	return trimPage(raw, overviewLongMax), nil
}

type rawDetails struct {
	rawMovie
	Runtime   int   `json:"runtime"`
	VoteCount int   `json:"vote_count"`
	Budget    int64 `json:"budget"`
	Revenue   int64 `json:"revenue"`
	Genres    []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits *struct {
		Cast []struct {
			Name      string `json:"name"`
			Character string `json:"character"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// Details fetches one movie, optionally with cast and crew appended.
func (c *Client) Details(ctx context.Context, movieID int, withCredits bool) (*movie.Details, error) {
	q := url.Values{}
	q.Set("language", "en-US")
	if withCredits {
		q.Set("append_to_response", "credits")
	}

	var raw rawDetails
	if err := c.get(ctx, "details", fmt.Sprintf("/movie/%d", movieID), q, &raw); err != nil {
		return nil, err
	}

	details := &movie.Details{
		ID:          raw.ID,
		Title:       raw.Title,
		Overview:    raw.Overview,
		ReleaseDate: raw.ReleaseDate,
		Runtime:     raw.Runtime,
		VoteAverage: raw.VoteAverage,
		VoteCount:   raw.VoteCount,
		Budget:      raw.Budget,
		Revenue:     raw.Revenue,
		Genres:      make([]string, 0, len(raw.Genres)),
	}
	for _, g := range raw.Genres {
		details.Genres = append(details.Genres, g.Name)
	}

	if raw.Credits != nil {
		cast := raw.Credits.Cast
		if len(cast) > maxCast {
			cast = cast[:maxCast]
		}
		details.Cast = make([]movie.CastMember, 0, len(cast))
		for _, member := range cast {
			details.Cast = append(details.Cast, movie.CastMember{Name: member.Name, Character: member.Character})
		}
		for _, member := range raw.Credits.Crew {
			if member.Job == "Director" {
				details.Director = member.Name
				break
			}
		}
	}

	return details, nil
}

// Discover lists movies filtered by genre and sort order.
func (c *Client) Discover(ctx context.Context, genreID int, sortBy string, page int) (*movie.Page, error) {
	if sortBy == "" {
		sortBy = "popularity.desc"
	}

	q := url.Values{}
	q.Set("language", "en-US")
	q.Set("sort_by", sortBy)
	q.Set("page", strconv.Itoa(normalizePage(page)))
	q.Set("include_adult", "false")
	if genreID > 0 {
		q.Set("with_genres", strconv.Itoa(genreID))
	}

	var raw rawPage
	if err := c.get(ctx, "discover", "/discover/movie", q, &raw); err != nil {
		return nil, err
	}
	return trimPage(raw, overviewShortMax), nil
}

// ListTypes accepted by List.
var listTypes = map[string]struct{}{
	"popular":     {},
	"top_rated":   {},
	"now_playing": {},
	"upcoming":    {},
}

// List fetches one of the TMDB curated movie lists: popular, top_rated,
// now_playing or upcoming.
func (c *Client) List(ctx context.Context, listType string, page int) (*movie.Page, error) {
	if _, ok := listTypes[listType]; !ok {
		return nil, fmt.Errorf("%w: unknown list type %q", ErrInvalidArgument, listType)
	}

	q := url.Values{}
	q.Set("language", "en-US")
	q.Set("page", strconv.Itoa(normalizePage(page)))

	var raw rawPage
	if err := c.get(ctx, "list", "/movie/"+listType, q, &raw); err != nil {
		return nil, err
	}
	return trimPage(raw, overviewShortMax), nil
}

// Trending fetches trending movies for a "day" or "week" window.
func (c *Client) Trending(ctx context.Context, window string, page int) (*movie.Page, error) {
	if window != "day" && window != "week" {
		return nil, fmt.Errorf("%w: time window must be %q or %q", ErrInvalidArgument, "day", "week")
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(normalizePage(page)))

	var raw rawPage
	if err := c.get(ctx, "trending", "/trending/movie/"+window, q, &raw); err != nil {
		return nil, err
	}
	return trimPage(raw, overviewShortMax), nil
}

// Recommendations fetches movies similar to the given one.
func (c *Client) Recommendations(ctx context.Context, movieID, page int) (*movie.Page, error) {
	q := url.Values{}
	q.Set("language", "en-US")
	q.Set("page", strconv.Itoa(normalizePage(page)))

	var raw rawPage
	if err := c.get(ctx, "recommendations", fmt.Sprintf("/movie/%d/recommendations", movieID), q, &raw); err != nil {
		return nil, err
	}
	return trimPage(raw, overviewShortMax), nil
}

type rawProviders struct {
	Results map[string]struct {
		Link     string `json:"link"`
		Flatrate []struct {
			ProviderName string `json:"provider_name"`
		} `json:"flatrate"`
		Rent []struct {
			ProviderName string `json:"provider_name"`
		} `json:"rent"`
		Buy []struct {
			ProviderName string `json:"provider_name"`
		} `json:"buy"`
	} `json:"results"`
}

// WatchProviders reports where a movie streams, rents or sells in a region.
// Unknown regions yield empty lists rather than an error.
func (c *Client) WatchProviders(ctx context.Context, movieID int, region string) (*movie.Providers, error) {
	if region == "" {
		region = "US"
	}
	region = strings.ToUpper(region)

	q := url.Values{}
	q.Set("language", "en-US")

	var raw rawProviders
	if err := c.get(ctx, "watch-providers", fmt.Sprintf("/movie/%d/watch/providers", movieID), q, &raw); err != nil {
		return nil, err
	}

	out := &movie.Providers{
		MovieID:   movieID,
		Region:    region,
		Streaming: []string{},
		Rent:      []string{},
		Buy:       []string{},
	}

	regional, ok := raw.Results[region]
	if !ok {
		out.Message = fmt.Sprintf("No streaming information available for this movie in %s", region)
		return out, nil
	}

	out.Link = regional.Link
	for _, p := range regional.Flatrate {
		out.Streaming = append(out.Streaming, p.ProviderName)
	}
	for _, p := range regional.Rent {
		out.Rent = append(out.Rent, p.ProviderName)
	}
	for _, p := range regional.Buy {
		out.Buy = append(out.Buy, p.ProviderName)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.CatalogRequests.WithLabelValues(operation, "error").Inc()
		c.log.Warn().Str("operation", operation).Int("status", resp.StatusCode).Msg("catalog request failed")
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.CatalogRequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	metrics.CatalogRequests.WithLabelValues(operation, "ok").Inc()
	return nil
}

func trimPage(raw rawPage, overviewMax int) *movie.Page {
	results := raw.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	page := &movie.Page{Results: make([]movie.Summary, 0, len(results))}
	for _, m := range results {
		page.Results = append(page.Results, movie.Summary{
			ID:          m.ID,
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
			VoteAverage: m.VoteAverage,
			Overview:    truncate(m.Overview, overviewMax),
		})
	}

	page.TotalResults = raw.TotalResults
	if page.TotalResults > maxResults {
		page.TotalResults = maxResults
	}
	return page
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
