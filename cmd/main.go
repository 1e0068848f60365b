package main

import (
	"context"
	"os"

	"main/internal/bot"
	"main/internal/config"
	"main/internal/music"
	"main/internal/recipes"
	"main/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Ограничение количества одновременно обрабатываемых запросов
const concurrencyLimit = 10

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot API client")
	}
	api.Debug = cfg.Debug
	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	recipeFetcher := recipes.NewFetcher(recipes.Options{
		Timeout: cfg.HTTPTimeout,
		Limit:   cfg.ListingLimit,
		Logger:  log.With().Str("component", "recipes").Logger(),
	})
	musicFetcher := music.NewFetcher(music.Options{
		Timeout: cfg.HTTPTimeout,
		Logger:  log.With().Str("component", "music").Logger(),
	})
	service := bot.New(api, session.NewMemoryStore(), recipeFetcher, musicFetcher,
		log.With().Str("component", "bot").Logger())

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.UpdateTimeout
	updates := api.GetUpdatesChan(u)

	ctx := context.Background()
	semaphore := make(chan struct{}, concurrencyLimit)

	for update := range updates {
		if update.Message == nil && update.CallbackQuery == nil {
			continue
		}

		// Каждое обновление обрабатываем в отдельной горутине, чтобы не
		// блокировать получение других
		go func(currentUpdate tgbotapi.Update) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			service.HandleUpdate(ctx, currentUpdate)
		}(update)
	}
}
