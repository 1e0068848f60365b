package bot

import (
	"fmt"
	"html"
	"strings"

	"main/internal/music"
	"main/internal/recipes"
)

const noData = "  Нет данных.\n"

// renderRecipe formats a recipe as Telegram HTML. Sections the scraper
// could not find render as the placeholder line instead.
func renderRecipe(r recipes.Recipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🍽 <b>%s</b>\n\n", html.EscapeString(r.Title))

	b.WriteString("🛒 <b>Ингредиенты:</b>\n")
	if len(r.Ingredients) == 0 {
		b.WriteString(noData)
	}
	for _, ingr := range r.Ingredients {
		fmt.Fprintf(&b, "  • %s\n", html.EscapeString(ingr))
	}

	b.WriteString("\n👩‍🍳 <b>Приготовление:</b>\n")
	if len(r.Steps) == 0 {
		b.WriteString(noData)
	}
	for i, step := range r.Steps {
		fmt.Fprintf(&b, "  %d. %s\n\n", i+1, html.EscapeString(step))
	}

	fmt.Fprintf(&b, "\n🔗 <i>Источник: <a href='%s'>Povarenok.ru</a></i>", html.EscapeString(r.SourceURL))
	return b.String()
}

func renderTrackCaption(t *music.Track) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎵 <b>%s</b>\n", html.EscapeString(t.Title))
	fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(t.Artist))
	fmt.Fprintf(&b, "🎼 Жанр: %s", html.EscapeString(t.Genre))
	return b.String()
}
