package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"

	"github.com/cinewise/movie-assistant/internal/model/movie"
	"github.com/cinewise/movie-assistant/internal/service/movies"
)

type searchInput struct {
	Query string `json:"query" jsonschema:"description=The movie title or name to search for"`
	Page  int    `json:"page,omitempty" jsonschema:"description=Page number for pagination"`
}

type detailsInput struct {
	MovieID       int  `json:"movie_id" jsonschema:"description=The TMDB movie ID to get details for"`
	AppendCredits bool `json:"append_credits,omitempty" jsonschema:"description=Whether to include cast and crew information"`
}

type discoverInput struct {
	GenreID int    `json:"genre_id,omitempty" jsonschema:"description=TMDB genre ID to filter by (e.g. 28 for Action)"`
	Genre   string `json:"genre,omitempty" jsonschema:"description=Genre name to filter by (e.g. comedy); used when genre_id is absent"`
	SortBy  string `json:"sort_by,omitempty" jsonschema:"description=Sort criteria such as popularity.desc"`
	Page    int    `json:"page,omitempty" jsonschema:"description=Page number for pagination"`
}

type listInput struct {
	ListType string `json:"list_type" jsonschema:"description=One of popular top_rated now_playing upcoming"`
	Page     int    `json:"page,omitempty" jsonschema:"description=Page number for pagination"`
}

type trendingInput struct {
	TimeWindow string `json:"time_window" jsonschema:"description=Trending window: day or week"`
	Page       int    `json:"page,omitempty" jsonschema:"description=Page number for pagination"`
}

type recommendationsInput struct {
	MovieID int `json:"movie_id" jsonschema:"description=The TMDB movie ID to get recommendations for"`
	Page    int `json:"page,omitempty" jsonschema:"description=Page number for pagination"`
}

type providersInput struct {
	MovieID int    `json:"movie_id" jsonschema:"description=The TMDB movie ID to get watch providers for"`
	Region  string `json:"region,omitempty" jsonschema:"description=Country code for regional availability such as US or GB"`
}

// movieTools exposes the catalog as the closed tool set the agent may call.
func movieTools(catalog *movies.Client) ([]tool.BaseTool, error) {
	search, err := utils.InferTool("search_movies",
		"Search for movies by title or name.",
		func(ctx context.Context, in *searchInput) (*movie.Page, error) {
			return catalog.Search(ctx, in.Query, in.Page)
		})
	if err != nil {
		return nil, fmt.Errorf("build search_movies tool: %w", err)
	}

	details, err := utils.InferTool("get_movie_details",
		"Get detailed information about a specific movie including cast, crew and ratings.",
		func(ctx context.Context, in *detailsInput) (*movie.Details, error) {
			return catalog.Details(ctx, in.MovieID, in.AppendCredits)
		})
	if err != nil {
		return nil, fmt.Errorf("build get_movie_details tool: %w", err)
	}

	discover, err := utils.InferTool("discover_movies",
		"Discover movies by genre, popularity, ratings and year.",
		func(ctx context.Context, in *discoverInput) (*movie.Page, error) {
			genreID := in.GenreID
			if genreID == 0 && in.Genre != "" {
				if id, ok := movies.GenreID(in.Genre); ok {
					genreID = id
				}
			}
			return catalog.Discover(ctx, genreID, in.SortBy, in.Page)
		})
	if err != nil {
		return nil, fmt.Errorf("build discover_movies tool: %w", err)
	}

	lists, err := utils.InferTool("get_movie_lists",
		"Get popular, top-rated, now-playing or upcoming movies.",
		func(ctx context.Context, in *listInput) (*movie.Page, error) {
			listType := in.ListType
			if listType == "" {
				listType = "popular"
			}
			return catalog.List(ctx, listType, in.Page)
		})
	if err != nil {
		return nil, fmt.Errorf("build get_movie_lists tool: %w", err)
	}

	trending, err := utils.InferTool("get_trending_movies",
		"Get trending movies for a day or week time window.",
		func(ctx context.Context, in *trendingInput) (*movie.Page, error) {
			window := in.TimeWindow
			if window == "" {
				window = "day"
			}
			return catalog.Trending(ctx, window, in.Page)
		})
	if err != nil {
		return nil, fmt.Errorf("build get_trending_movies tool: %w", err)
	}

	recommendations, err := utils.InferTool("get_movie_recommendations",
		"Get similar or recommended movies based on a specific movie.",
		func(ctx context.Context, in *recommendationsInput) (*movie.Page, error) {
			return catalog.Recommendations(ctx, in.MovieID, in.Page)
		})
	if err != nil {
		return nil, fmt.Errorf("build get_movie_recommendations tool: %w", err)
	}

	providers, err := utils.InferTool("get_watch_providers",
		"Get streaming availability and watch options for a movie by region.",
		func(ctx context.Context, in *providersInput) (*movie.Providers, error) {
			return catalog.WatchProviders(ctx, in.MovieID, in.Region)
		})
	if err != nil {
		return nil, fmt.Errorf("build get_watch_providers tool: %w", err)
	}

	return []tool.BaseTool{search, details, discover, lists, trending, recommendations, providers}, nil
}
