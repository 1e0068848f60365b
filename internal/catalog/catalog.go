// Package catalog holds the static registries of recipe categories and
// music genres the bot can serve, mapping each key to its listing page.
package catalog

// Entry is one selectable item: a stable callback key, a user-facing
// label and the listing page to scrape for it.
type Entry struct {
	Key   string
	Label string
	URL   string
}

var recipeCategories = []Entry{
	{Key: "soups", Label: "Супы", URL: "https://www.povarenok.ru/recipes/category/3/"},
	{Key: "salads", Label: "Салаты", URL: "https://www.povarenok.ru/recipes/category/1/"},
	{Key: "porridge", Label: "Каши", URL: "https://www.povarenok.ru/recipes/category/24/"},
	{Key: "sides", Label: "Гарниры", URL: "https://www.povarenok.ru/recipes/category/22/"},
	{Key: "fish", Label: "Рыба", URL: "https://www.povarenok.ru/recipes/category/17/"},
	{Key: "meat", Label: "Мясо", URL: "https://www.povarenok.ru/recipes/category/14/"},
	{Key: "dessert", Label: "Десерты", URL: "https://www.povarenok.ru/recipes/category/30/"},
}

var musicGenres = []Entry{
	{Key: "Electronic", Label: "Electronic", URL: "https://freemusicarchive.org/genre/Electronic/"},
	{Key: "Jazz", Label: "Jazz", URL: "https://freemusicarchive.org/genre/Jazz/"},
	{Key: "Classical", Label: "Classical", URL: "https://freemusicarchive.org/genre/Classical/"},
	{Key: "Rock", Label: "Rock", URL: "https://freemusicarchive.org/genre/Rock/"},
	{Key: "Hip-Hop", Label: "Hip-Hop", URL: "https://freemusicarchive.org/genre/Hip-Hop/"},
}

func lookup(entries []Entry, key string) (string, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e.URL, true
		}
	}
	return "", false
}

// RecipeURL returns the listing page for a recipe category key.
func RecipeURL(key string) (string, bool) {
	return lookup(recipeCategories, key)
}

// GenreURL returns the listing page for a music genre key.
func GenreURL(key string) (string, bool) {
	return lookup(musicGenres, key)
}

// RecipeCategories returns the recipe categories in menu order.
func RecipeCategories() []Entry {
	out := make([]Entry, len(recipeCategories))
	copy(out, recipeCategories)
	return out
}

// MusicGenres returns the music genres in menu order.
func MusicGenres() []Entry {
	out := make([]Entry, len(musicGenres))
	copy(out, musicGenres)
	return out
}

// GenreKeys returns the genre keys in menu order.
func GenreKeys() []string {
	keys := make([]string, len(musicGenres))
	for i, e := range musicGenres {
		keys[i] = e.Key
	}
	return keys
}

// IsGenre reports whether key names a configured genre.
func IsGenre(key string) bool {
	_, ok := GenreURL(key)
	return ok
}
