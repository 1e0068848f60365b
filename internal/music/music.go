// Package music scrapes freemusicarchive.org genre pages for playable
// tracks and downloads their audio.
package music

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"time"

	"main/internal/catalog"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"github.com/rs/zerolog"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// ErrNoTracks means the genre page yielded no playable track: the page was
// unreachable or no valid metadata block survived parsing.
var ErrNoTracks = errors.New("no tracks found")

// Track is one playable item decoded from the data-track-info attribute of
// a listing-page play block. Tracks without a playback URL are invalid.
type Track struct {
	Title       string `json:"title"`
	Artist      string `json:"artistName"`
	PlaybackURL string `json:"playbackUrl"`
	Genre       string `json:"-"`
}

type Options struct {
	// LookupURL resolves a genre key to its listing page. Defaults to
	// catalog.GenreURL.
	LookupURL func(key string) (string, bool)
	// Genres is the key set PickGenre draws from. Defaults to
	// catalog.GenreKeys().
	Genres  []string
	Timeout time.Duration
	Logger  zerolog.Logger
}

type Fetcher struct {
	http   *resty.Client
	lookup func(string) (string, bool)
	genres []string
	log    zerolog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	if opts.LookupURL == nil {
		opts.LookupURL = catalog.GenreURL
	}
	if len(opts.Genres) == 0 {
		opts.Genres = catalog.GenreKeys()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", userAgent)

	return &Fetcher{
		http:   client,
		lookup: opts.LookupURL,
		genres: opts.Genres,
		log:    opts.Logger,
	}
}

// PickGenre returns the requested genre when it is recognized, otherwise a
// uniformly random one from the configured set.
func (f *Fetcher) PickGenre(requested string) string {
	if requested != "" {
		if _, ok := f.lookup(requested); ok {
			return requested
		}
	}
	idx, err := random.IntRange(0, len(f.genres))
	if err != nil {
		// Entropy failure is effectively unreachable; fall back to the
		// first configured genre rather than returning nothing.
		return f.genres[0]
	}
	return f.genres[idx]
}

// FetchRandomTrack resolves the genre, scrapes its listing page and picks
// one valid track at random. Page fetch failures and empty pools report
// ErrNoTracks together with the resolved genre; malformed metadata blocks
// are skipped.
func (f *Fetcher) FetchRandomTrack(ctx context.Context, genreKey string) (*Track, string, error) {
	genre := f.PickGenre(genreKey)
	listingURL, ok := f.lookup(genre)
	if !ok {
		return nil, genre, fmt.Errorf("%w: no listing for genre %q", ErrNoTracks, genre)
	}

	res, err := f.http.R().SetContext(ctx).Get(listingURL)
	if err != nil {
		f.log.Warn().Err(err).Str("genre", genre).Msg("genre listing unreachable")
		return nil, genre, fmt.Errorf("%w: %v", ErrNoTracks, err)
	}
	if !res.IsSuccess() {
		f.log.Warn().Str("genre", genre).Str("status", res.Status()).Msg("genre listing fetch failed")
		return nil, genre, fmt.Errorf("%w: status %s", ErrNoTracks, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, genre, fmt.Errorf("%w: %v", ErrNoTracks, err)
	}

	var pool []Track
	doc.Find("div.play-item").Each(func(_ int, sel *goquery.Selection) {
		raw, ok := sel.Attr("data-track-info")
		if !ok || raw == "" {
			return
		}
		var track Track
		if err := json.Unmarshal([]byte(html.UnescapeString(raw)), &track); err != nil {
			f.log.Debug().Err(err).Str("genre", genre).Msg("skipping malformed track metadata")
			return
		}
		if track.PlaybackURL == "" {
			return
		}
		track.Genre = genre
		pool = append(pool, track)
	})

	if len(pool) == 0 {
		return nil, genre, fmt.Errorf("%w in genre %q", ErrNoTracks, genre)
	}

	idx, err := random.IntRange(0, len(pool))
	if err != nil {
		return nil, genre, fmt.Errorf("pick random track: %w", err)
	}
	return &pool[idx], genre, nil
}

// DownloadTrack fetches the track audio in one request, following
// redirects, and returns the raw body.
func (f *Fetcher) DownloadTrack(ctx context.Context, playbackURL string) ([]byte, error) {
	res, err := f.http.R().SetContext(ctx).Get(playbackURL)
	if err != nil {
		return nil, fmt.Errorf("download track %q: %w", playbackURL, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("download track %q: status %s", playbackURL, res.Status())
	}
	return res.Body(), nil
}
