package bot

import (
	"main/internal/catalog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback tokens carried in inline keyboard buttons.
const (
	cbMenuRecipes = "menu_recipes"
	cbMenuMusic   = "menu_music"
	cbAgainRecipe = "again_recipe"
	cbAgainTrack  = "again_track"
	cbChangeGenre = "change_genre"
	cbBackMain    = "back_main"

	categoryPrefix = "category_"
	genrePrefix    = "genre_"
	genreAny       = "any"
)

const menuRowWidth = 3

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍳 Рецепты", cbMenuRecipes),
			tgbotapi.NewInlineKeyboardButtonData("🎵 Музыка", cbMenuMusic),
		),
	)
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, e := range catalog.RecipeCategories() {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(e.Label, categoryPrefix+e.Key))
	}
	return tgbotapi.NewInlineKeyboardMarkup(chunkRows(buttons, menuRowWidth)...)
}

func genreKeyboard() tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, e := range catalog.MusicGenres() {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(e.Label, genrePrefix+e.Key))
	}
	rows := chunkRows(buttons, menuRowWidth)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎲 Любой жанр", genrePrefix+genreAny),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func recipeReplayKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Еще рецепт", cbAgainRecipe),
			tgbotapi.NewInlineKeyboardButtonData("📋 Главное меню", cbBackMain),
		),
	)
}

func trackReplayKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Еще трек", cbAgainTrack),
			tgbotapi.NewInlineKeyboardButtonData("🎶 Другой жанр", cbChangeGenre),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Главное меню", cbBackMain),
		),
	)
}

func chunkRows(buttons []tgbotapi.InlineKeyboardButton, width int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > width {
		rows = append(rows, buttons[:width])
		buttons = buttons[width:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}
