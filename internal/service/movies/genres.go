package movies

import "strings"

// genreIDs maps everyday genre words to TMDB genre ids, including a few
// colloquial aliases ("funny", "scary").
var genreIDs = map[string]int{
	"action":          28,
	"adventure":       12,
	"thriller":        53,
	"comedy":          35,
	"funny":           35,
	"drama":           18,
	"horror":          27,
	"scary":           27,
	"mystery":         9648,
	"romance":         10749,
	"romantic":        10749,
	"family":          10751,
	"science fiction": 878,
	"sci-fi":          878,
	"fantasy":         14,
	"documentary":     99,
	"animation":       16,
	"crime":           80,
	"war":             10752,
	"western":         37,
}

// GenreID resolves a genre name to its TMDB id.
func GenreID(name string) (int, bool) {
	id, ok := genreIDs[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
