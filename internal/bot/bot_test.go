package bot

import (
	"context"
	"errors"
	"testing"

	"main/internal/music"
	"main/internal/recipes"
	"main/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type stubRecipes struct {
	recipe recipes.Recipe
	err    error
	calls  int
	panics bool
}

func (s *stubRecipes) GetRandomRecipe(_ context.Context, _ string) (recipes.Recipe, error) {
	s.calls++
	if s.panics {
		panic("scraper went sideways")
	}
	return s.recipe, s.err
}

type stubMusic struct {
	track      *music.Track
	genre      string
	fetchErr   error
	audio      []byte
	dlErr      error
	fetchCalls []string
}

func (s *stubMusic) FetchRandomTrack(_ context.Context, genreKey string) (*music.Track, string, error) {
	s.fetchCalls = append(s.fetchCalls, genreKey)
	genre := s.genre
	if genre == "" {
		genre = genreKey
	}
	return s.track, genre, s.fetchErr
}

func (s *stubMusic) DownloadTrack(_ context.Context, _ string) ([]byte, error) {
	return s.audio, s.dlErr
}

type fixture struct {
	api     *fakeSender
	store   *session.MemoryStore
	recipes *stubRecipes
	music   *stubMusic
	svc     *Service
}

func newFixture() *fixture {
	f := &fixture{
		api:     &fakeSender{},
		store:   session.NewMemoryStore(),
		recipes: &stubRecipes{},
		music:   &stubMusic{},
	}
	f.svc = New(f.api, f.store, f.recipes, f.music, zerolog.Nop())
	return f
}

func commandUpdate(chatID int64, cmd string) tgbotapi.Update {
	text := "/" + cmd
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func lastMessage(t *testing.T, api *fakeSender) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, api.sent)
	msg, ok := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent item is not a text message: %T", api.sent[len(api.sent)-1])
	return msg
}

func keyboardOf(t *testing.T, markup interface{}) tgbotapi.InlineKeyboardMarkup {
	t.Helper()
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "reply markup is not an inline keyboard: %T", markup)
	return kb
}

func buttonLabels(kb tgbotapi.InlineKeyboardMarkup) []string {
	var labels []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	return labels
}

func TestStartSendsMainMenu(t *testing.T) {
	f := newFixture()

	f.svc.HandleUpdate(context.Background(), commandUpdate(1, "start"))

	msg := lastMessage(t, f.api)
	require.Contains(t, msg.Text, "Привет")
	kb := keyboardOf(t, msg.ReplyMarkup)
	require.Equal(t, []string{"🍳 Рецепты", "🎵 Музыка"}, buttonLabels(kb))
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture()

	f.svc.HandleUpdate(context.Background(), commandUpdate(1, "help"))

	require.Contains(t, lastMessage(t, f.api).Text, "/start")
}

func TestRecipeMenuTapShowsCategories(t *testing.T) {
	f := newFixture()

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, cbMenuRecipes))

	msg := lastMessage(t, f.api)
	require.Equal(t, msgChooseCategory, msg.Text)
	kb := keyboardOf(t, msg.ReplyMarkup)
	require.Len(t, buttonLabels(kb), 7)
	require.Equal(t, session.StateAwaitingRecipeCategory, f.store.Get(1).State)
}

func TestCategoryTapServesRecipe(t *testing.T) {
	f := newFixture()
	f.recipes.recipe = recipes.Recipe{
		Title:       "Борщ",
		Ingredients: []string{"Свекла", "Капуста", "Картофель", "Морковь", "Лук"},
		Steps:       []string{"Сварить бульон.", "Добавить овощи.", "Подать."},
		SourceURL:   "https://www.povarenok.ru/recipes/show/100/",
	}
	f.store.Set(1, session.Session{State: session.StateAwaitingRecipeCategory})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "category_soups"))

	msg := lastMessage(t, f.api)
	require.Contains(t, msg.Text, "Борщ")
	require.Contains(t, msg.Text, "Свекла")
	require.Contains(t, msg.Text, "1. Сварить бульон.")
	require.Equal(t, []string{"🔄 Еще рецепт", "📋 Главное меню"}, buttonLabels(keyboardOf(t, msg.ReplyMarkup)))
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
	require.Equal(t, 1, f.recipes.calls)
}

func TestRecipeWithImageSendsPhoto(t *testing.T) {
	f := newFixture()
	f.recipes.recipe = recipes.Recipe{
		Title:     "Борщ",
		ImageURL:  "https://www.povarenok.ru/images/borscht.jpg",
		SourceURL: "https://www.povarenok.ru/recipes/show/100/",
	}
	f.store.Set(1, session.Session{State: session.StateAwaitingRecipeCategory})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "category_soups"))

	require.NotEmpty(t, f.api.sent)
	photo, ok := f.api.sent[len(f.api.sent)-1].(tgbotapi.PhotoConfig)
	require.True(t, ok, "expected a photo, got %T", f.api.sent[len(f.api.sent)-1])
	require.Contains(t, photo.Caption, "Борщ")
}

func TestCategoryTapIgnoredWhenIdle(t *testing.T) {
	f := newFixture()

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "category_soups"))

	require.Zero(t, f.recipes.calls)
	require.Empty(t, f.api.sent)
	// The callback itself is still answered to stop the client spinner.
	require.Len(t, f.api.requested, 1)
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
}

func TestRecipeNotFound(t *testing.T) {
	f := newFixture()
	f.recipes.err = recipes.ErrNoRecipes
	f.store.Set(1, session.Session{State: session.StateAwaitingRecipeCategory})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "category_soups"))

	require.Equal(t, msgNoRecipes, lastMessage(t, f.api).Text)
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
}

func TestRecipeFetchFailure(t *testing.T) {
	f := newFixture()
	f.recipes.err = errors.New("tls handshake timeout")
	f.store.Set(1, session.Session{State: session.StateAwaitingRecipeCategory})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "category_soups"))

	require.Equal(t, msgRecipeError, lastMessage(t, f.api).Text)
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
}

func TestMusicMenuTapShowsGenres(t *testing.T) {
	f := newFixture()

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, cbMenuMusic))

	msg := lastMessage(t, f.api)
	require.Equal(t, msgChooseGenre, msg.Text)
	labels := buttonLabels(keyboardOf(t, msg.ReplyMarkup))
	require.Len(t, labels, 6)
	require.Equal(t, "🎲 Любой жанр", labels[len(labels)-1])
	require.Equal(t, session.StateAwaitingMusicGenre, f.store.Get(1).State)
}

func TestGenreTapServesTrack(t *testing.T) {
	f := newFixture()
	f.music.track = &music.Track{
		Title:       "Autumn Leaves",
		Artist:      "Joe Pass",
		PlaybackURL: "https://cdn.example.org/t/1.mp3",
		Genre:       "Jazz",
	}
	f.music.audio = []byte("ID3audio")
	f.store.Set(1, session.Session{State: session.StateAwaitingMusicGenre})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "genre_Jazz"))

	require.NotEmpty(t, f.api.sent)
	audio, ok := f.api.sent[len(f.api.sent)-1].(tgbotapi.AudioConfig)
	require.True(t, ok, "expected audio, got %T", f.api.sent[len(f.api.sent)-1])
	require.Equal(t, "Autumn Leaves", audio.Title)
	require.Equal(t, "Joe Pass", audio.Performer)
	require.Contains(t, audio.Caption, "Jazz")
	require.Equal(t, []string{"🔄 Еще трек", "🎶 Другой жанр", "📋 Главное меню"},
		buttonLabels(keyboardOf(t, audio.ReplyMarkup)))

	sess := f.store.Get(1)
	require.Equal(t, session.StateIdle, sess.State)
	require.Equal(t, "Jazz", sess.Genre)
}

func TestAnyGenreTapRequestsRandomGenre(t *testing.T) {
	f := newFixture()
	f.music.track = &music.Track{Title: "T", Artist: "A", PlaybackURL: "u", Genre: "Rock"}
	f.music.genre = "Rock"
	f.music.audio = []byte("x")
	f.store.Set(1, session.Session{State: session.StateAwaitingMusicGenre})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "genre_any"))

	require.Equal(t, []string{""}, f.music.fetchCalls)
	require.Equal(t, "Rock", f.store.Get(1).Genre)
}

func TestTrackReplayReusesResolvedGenre(t *testing.T) {
	f := newFixture()
	f.music.track = &music.Track{Title: "T", Artist: "A", PlaybackURL: "u", Genre: "Jazz"}
	f.music.audio = []byte("x")
	f.store.Set(1, session.Session{State: session.StateIdle, Genre: "Jazz"})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, cbAgainTrack))

	require.Equal(t, []string{"Jazz"}, f.music.fetchCalls)
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
}

func TestTrackNotFound(t *testing.T) {
	f := newFixture()
	f.music.fetchErr = music.ErrNoTracks
	f.music.genre = "Jazz"
	f.store.Set(1, session.Session{State: session.StateAwaitingMusicGenre})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "genre_Jazz"))

	msg := lastMessage(t, f.api)
	require.Equal(t, msgNoTrack, msg.Text)
	require.Equal(t, []string{"🍳 Рецепты", "🎵 Музыка"}, buttonLabels(keyboardOf(t, msg.ReplyMarkup)))
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
}

func TestTrackDownloadFailure(t *testing.T) {
	f := newFixture()
	f.music.track = &music.Track{Title: "T", Artist: "A", PlaybackURL: "u", Genre: "Jazz"}
	f.music.dlErr = errors.New("connection reset")
	f.store.Set(1, session.Session{State: session.StateAwaitingMusicGenre})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "genre_Jazz"))

	require.Equal(t, msgTrackError, lastMessage(t, f.api).Text)
	require.Equal(t, session.StateIdle, f.store.Get(1).State)
}

func TestPanicInAdapterResetsSession(t *testing.T) {
	f := newFixture()
	f.recipes.panics = true
	f.store.Set(1, session.Session{State: session.StateAwaitingRecipeCategory})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, "category_soups"))

	require.Equal(t, msgGenericError, lastMessage(t, f.api).Text)
	require.Equal(t, session.StateIdle, f.store.Get(1).State)

	// The bot keeps working afterwards.
	f.svc.HandleUpdate(context.Background(), commandUpdate(1, "start"))
	require.Contains(t, lastMessage(t, f.api).Text, "Привет")
}

func TestBackToMainMenu(t *testing.T) {
	f := newFixture()
	f.store.Set(1, session.Session{State: session.StateAwaitingMusicGenre, Genre: "Rock"})

	f.svc.HandleUpdate(context.Background(), callbackUpdate(1, cbBackMain))

	msg := lastMessage(t, f.api)
	require.Contains(t, msg.Text, "Привет")
	sess := f.store.Get(1)
	require.Equal(t, session.StateIdle, sess.State)
	require.Equal(t, "Rock", sess.Genre)
}

func TestRenderRecipePlaceholders(t *testing.T) {
	text := renderRecipe(recipes.Recipe{
		Title:     recipes.FallbackTitle,
		SourceURL: "https://www.povarenok.ru/recipes/show/1/",
	})

	require.Contains(t, text, recipes.FallbackTitle)
	require.Contains(t, text, "Нет данных.")
	require.Contains(t, text, "https://www.povarenok.ru/recipes/show/1/")
}
