// Package bot routes Telegram updates through the menu state machine and
// talks to the fetch adapters.
package bot

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"main/internal/music"
	"main/internal/recipes"
	"main/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// User-facing texts.
const (
	msgGreeting       = "Привет! Я ваш кулинарный и музыкальный помощник. Выберите, что вас интересует."
	msgChooseCategory = "Выберите категорию рецептов."
	msgChooseGenre    = "Выберите жанр музыки."
	msgNoRecipes      = "Рецепты не найдены."
	msgRecipeError    = "Произошла ошибка при загрузке рецепта."
	msgNoTrack        = "😞 Не удалось найти трек"
	msgTrackError     = "Произошла ошибка при загрузке трека."
	msgGenericError   = "Произошла ошибка. Попробуйте ещё раз."
	msgUnknownCommand = "Неизвестная команда. Используйте /start для отображения меню."
)

// Telegram caps photo captions; longer recipes are sent as plain text.
const maxPhotoCaption = 1024

// Sender is the slice of the Telegram API the service uses. *tgbotapi.BotAPI
// satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type RecipeSource interface {
	GetRandomRecipe(ctx context.Context, categoryKey string) (recipes.Recipe, error)
}

type MusicSource interface {
	FetchRandomTrack(ctx context.Context, genreKey string) (*music.Track, string, error)
	DownloadTrack(ctx context.Context, playbackURL string) ([]byte, error)
}

type Service struct {
	api      Sender
	sessions session.Store
	recipes  RecipeSource
	music    MusicSource
	log      zerolog.Logger
}

func New(api Sender, sessions session.Store, r RecipeSource, m MusicSource, log zerolog.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		recipes:  r,
		music:    m,
		log:      log,
	}
}

// HandleUpdate dispatches one incoming update. Panics never escape: the
// chat gets the generic failure message and its session is reset to idle.
func (s *Service) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		chat := update.FromChat()
		s.log.Error().Interface("panic", r).Msg("update handler panicked")
		if chat != nil {
			s.sessions.Set(chat.ID, session.Session{State: session.StateIdle})
			s.sendText(chat.ID, msgGenericError, mainMenuKeyboard())
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		s.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		s.handleCommand(update.Message)
	}
}

func (s *Service) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start", "menu":
		s.sessions.Clear(chatID)
		s.sendText(chatID, msgGreeting, mainMenuKeyboard())
	default:
		s.sendText(chatID, msgUnknownCommand, nil)
	}
}

func (s *Service) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := s.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		s.log.Warn().Err(err).Msg("failed to answer callback")
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	sess := s.sessions.Get(chatID)
	data := cq.Data

	switch {
	case data == cbBackMain:
		s.sessions.Set(chatID, session.Session{State: session.StateIdle, Genre: sess.Genre})
		s.sendText(chatID, msgGreeting, mainMenuKeyboard())

	case (data == cbMenuRecipes || data == cbAgainRecipe) && sess.State == session.StateIdle:
		s.sessions.Set(chatID, session.Session{State: session.StateAwaitingRecipeCategory, Genre: sess.Genre})
		s.sendText(chatID, msgChooseCategory, categoryKeyboard())

	case (data == cbMenuMusic || data == cbChangeGenre) && sess.State == session.StateIdle:
		s.sessions.Set(chatID, session.Session{State: session.StateAwaitingMusicGenre, Genre: sess.Genre})
		s.sendText(chatID, msgChooseGenre, genreKeyboard())

	case strings.HasPrefix(data, categoryPrefix) && sess.State == session.StateAwaitingRecipeCategory:
		s.serveRecipe(ctx, chatID, strings.TrimPrefix(data, categoryPrefix), sess.Genre)

	case strings.HasPrefix(data, genrePrefix) && sess.State == session.StateAwaitingMusicGenre:
		requested := strings.TrimPrefix(data, genrePrefix)
		if requested == genreAny {
			requested = ""
		}
		s.serveTrack(ctx, chatID, requested)

	case data == cbAgainTrack && sess.State == session.StateIdle:
		// Replays stick to the genre that was actually drawn last time.
		s.serveTrack(ctx, chatID, sess.Genre)

	default:
		s.log.Debug().
			Str("data", data).
			Str("state", sess.State.String()).
			Int64("chat_id", chatID).
			Msg("callback ignored in current state")
	}
}

func (s *Service) serveRecipe(ctx context.Context, chatID int64, categoryKey, genre string) {
	defer s.sessions.Set(chatID, session.Session{State: session.StateIdle, Genre: genre})

	recipe, err := s.recipes.GetRandomRecipe(ctx, categoryKey)
	switch {
	case errors.Is(err, recipes.ErrNoRecipes), errors.Is(err, recipes.ErrUnknownCategory):
		s.sendText(chatID, msgNoRecipes, recipeReplayKeyboard())
	case err != nil:
		s.log.Error().Err(err).Str("category", categoryKey).Int64("chat_id", chatID).Msg("recipe fetch failed")
		s.sendText(chatID, msgRecipeError, mainMenuKeyboard())
	default:
		s.sendRecipe(chatID, recipe)
	}
}

func (s *Service) sendRecipe(chatID int64, recipe recipes.Recipe) {
	text := renderRecipe(recipe)

	if recipe.ImageURL != "" && utf8.RuneCountInString(text) <= maxPhotoCaption {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(recipe.ImageURL))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = recipeReplayKeyboard()
		_, err := s.api.Send(photo)
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("photo send failed, falling back to text")
	}
	s.sendText(chatID, text, recipeReplayKeyboard())
}

func (s *Service) serveTrack(ctx context.Context, chatID int64, requestedGenre string) {
	track, genre, err := s.music.FetchRandomTrack(ctx, requestedGenre)
	defer func() {
		s.sessions.Set(chatID, session.Session{State: session.StateIdle, Genre: genre})
	}()

	switch {
	case errors.Is(err, music.ErrNoTracks):
		s.sendText(chatID, msgNoTrack, mainMenuKeyboard())
		return
	case err != nil:
		s.log.Error().Err(err).Str("genre", genre).Int64("chat_id", chatID).Msg("track fetch failed")
		s.sendText(chatID, msgTrackError, mainMenuKeyboard())
		return
	}

	data, err := s.music.DownloadTrack(ctx, track.PlaybackURL)
	if err != nil {
		s.log.Error().Err(err).Str("url", track.PlaybackURL).Int64("chat_id", chatID).Msg("track download failed")
		s.sendText(chatID, msgTrackError, mainMenuKeyboard())
		return
	}

	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{
		Name:  track.Title + ".mp3",
		Bytes: data,
	})
	audio.Title = track.Title
	audio.Performer = track.Artist
	audio.Caption = renderTrackCaption(track)
	audio.ParseMode = tgbotapi.ModeHTML
	audio.ReplyMarkup = trackReplayKeyboard()
	if _, err := s.api.Send(audio); err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("audio send failed")
		s.sendText(chatID, msgTrackError, mainMenuKeyboard())
	}
}

func (s *Service) sendText(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := s.api.Send(msg); err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("message send failed")
	}
}
