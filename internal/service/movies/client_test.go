package movies

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := zerolog.Nop()
	return NewClient(srv.URL, "test-key", &logger)
}

func TestSearchTrimsResults(t *testing.T) {
	longOverview := strings.Repeat("x", 250)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "Inception" {
			t.Fatalf("query param = %q", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Fatalf("api_key param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_results": 42, "results": [
			{"id":1,"title":"Inception","release_date":"2010-07-16","vote_average":8.4,"overview":"` + longOverview + `"},
			{"id":2,"title":"B","overview":"short"},
			{"id":3,"title":"C"},{"id":4,"title":"D"},{"id":5,"title":"E"},{"id":6,"title":"F"}
		]}`))
	})

	page, err := client.Search(context.Background(), "Inception", 1)
	if err != nil {
		t.Fatalf("Search err: %v", err)
	}
	if len(page.Results) != 5 {
		t.Fatalf("results = %d, want 5", len(page.Results))
	}
	if page.TotalResults != 5 {
		t.Fatalf("total = %d, want capped 5", page.TotalResults)
	}
	if got := page.Results[0].Overview; len([]rune(got)) != 203 || !strings.HasSuffix(got, "...") {
		t.Fatalf("overview not truncated to 200 runes + ellipsis: %d", len([]rune(got)))
	}
	if page.Results[1].Overview != "short" {
		t.Fatal("short overview must pass through untouched")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Search(context.Background(), "  ", 1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "Inception", 1)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestDetailsWithCredits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/157336" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits" {
			t.Fatalf("append_to_response = %q", got)
		}
		w.Write([]byte(`{
			"id":157336,"title":"Interstellar","runtime":169,"vote_average":8.4,
			"genres":[{"name":"Adventure"},{"name":"Drama"}],
			"credits":{
				"cast":[{"name":"A","character":"a"},{"name":"B","character":"b"},{"name":"C","character":"c"},
					{"name":"D","character":"d"},{"name":"E","character":"e"},{"name":"F","character":"f"},
					{"name":"G","character":"g"},{"name":"H","character":"h"},{"name":"I","character":"i"},
					{"name":"J","character":"j"},{"name":"K","character":"k"}],
				"crew":[{"name":"Someone","job":"Producer"},{"name":"Christopher Nolan","job":"Director"}]
			}
		}`))
	})

	details, err := client.Details(context.Background(), 157336, true)
	if err != nil {
		t.Fatalf("Details err: %v", err)
	}
	if details.Title != "Interstellar" || details.Runtime != 169 {
		t.Fatalf("unexpected details: %+v", details)
	}
	if len(details.Cast) != 10 {
		t.Fatalf("cast = %d, want 10", len(details.Cast))
	}
	if details.Director != "Christopher Nolan" {
		t.Fatalf("director = %q", details.Director)
	}
	if len(details.Genres) != 2 || details.Genres[0] != "Adventure" {
		t.Fatalf("genres = %v", details.Genres)
	}
}

func TestListRejectsUnknownType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.List(context.Background(), "worst_rated", 1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestTrendingRejectsUnknownWindow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Trending(context.Background(), "month", 1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestWatchProvidersFormatsRegion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550/watch/providers" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"results":{"US":{
			"link":"https://example.test/watch",
			"flatrate":[{"provider_name":"Netflix"},{"provider_name":"Hulu"}],
			"rent":[{"provider_name":"Amazon Video"}],
			"buy":[{"provider_name":"iTunes"}]
		}}}`))
	})

	providers, err := client.WatchProviders(context.Background(), 550, "us")
	if err != nil {
		t.Fatalf("WatchProviders err: %v", err)
	}
	if providers.Region != "US" {
		t.Fatalf("region = %q, want US", providers.Region)
	}
	if len(providers.Streaming) != 2 || providers.Streaming[0] != "Netflix" {
		t.Fatalf("streaming = %v", providers.Streaming)
	}
	if len(providers.Rent) != 1 || len(providers.Buy) != 1 {
		t.Fatalf("rent/buy = %v / %v", providers.Rent, providers.Buy)
	}
}

func TestWatchProvidersUnknownRegion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{}}`))
	})

	providers, err := client.WatchProviders(context.Background(), 550, "ZZ")
	if err != nil {
		t.Fatalf("WatchProviders err: %v", err)
	}
	if providers.Message == "" {
		t.Fatal("expected explanatory message for missing region")
	}
	if len(providers.Streaming) != 0 {
		t.Fatalf("streaming = %v, want empty", providers.Streaming)
	}
}

func TestGenreID(t *testing.T) {
	if id, ok := GenreID("Sci-Fi"); !ok || id != 878 {
		t.Fatalf("GenreID(Sci-Fi) = %d, %v", id, ok)
	}
	if _, ok := GenreID("polka"); ok {
		t.Fatal("unknown genre should not resolve")
	}
}
