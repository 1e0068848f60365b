// Package recipes scrapes povarenok.ru: it lists recipe links from a
// category page, fetches a detail page and extracts the structured recipe.
package recipes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"
	"time"

	"main/internal/catalog"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"github.com/rs/zerolog"
)

const (
	// FallbackTitle is used when a detail page has no h1 heading.
	FallbackTitle = "Без названия"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

var (
	ErrUnknownCategory = errors.New("unknown recipe category")
	ErrNoRecipes       = errors.New("no recipes found")
)

// Recipe is one parsed detail page. Ingredients and Steps may be empty
// when the page lacks the corresponding sections; SourceURL is always the
// detail page URL the recipe was fetched from.
type Recipe struct {
	Title       string
	Ingredients []string
	Steps       []string
	ImageURL    string
	SourceURL   string
}

type Options struct {
	// LookupURL resolves a category key to its listing page. Defaults to
	// catalog.RecipeURL.
	LookupURL func(key string) (string, bool)
	Timeout   time.Duration
	// Limit caps how many listing entries are considered per category.
	Limit  int
	Logger zerolog.Logger
}

type Fetcher struct {
	http   *resty.Client
	lookup func(string) (string, bool)
	limit  int
	log    zerolog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	if opts.LookupURL == nil {
		opts.LookupURL = catalog.RecipeURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", userAgent)

	return &Fetcher{
		http:   client,
		lookup: opts.LookupURL,
		limit:  opts.Limit,
		log:    opts.Logger,
	}
}

// ListCandidates fetches the category listing page and returns up to the
// configured limit of recipe detail URLs in document order. Relative links
// are resolved against the listing page.
func (f *Fetcher) ListCandidates(ctx context.Context, categoryKey string) ([]string, error) {
	listingURL, ok := f.lookup(categoryKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryKey)
	}

	res, err := f.http.R().SetContext(ctx).Get(listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category listing %q: %w", categoryKey, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("fetch category listing %q: status %s", categoryKey, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse category listing %q: %w", categoryKey, err)
	}
	base, err := neturl.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url %q: %w", listingURL, err)
	}

	var links []string
	doc.Find("article.item-bl").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Find("a").First().Attr("href")
		if !ok || href == "" {
			return true
		}
		ref, err := neturl.Parse(href)
		if err != nil {
			f.log.Debug().Str("href", href).Msg("skipping unparsable recipe link")
			return true
		}
		links = append(links, base.ResolveReference(ref).String())
		return len(links) < f.limit
	})
	return links, nil
}

// FetchRecipe fetches and parses one detail page. Missing sections degrade
// to an empty slice or the fallback title rather than failing.
func (f *Fetcher) FetchRecipe(ctx context.Context, detailURL string) (Recipe, error) {
	res, err := f.http.R().SetContext(ctx).Get(detailURL)
	if err != nil {
		return Recipe{}, fmt.Errorf("fetch recipe %q: %w", detailURL, err)
	}
	if !res.IsSuccess() {
		return Recipe{}, fmt.Errorf("fetch recipe %q: status %s", detailURL, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return Recipe{}, fmt.Errorf("parse recipe %q: %w", detailURL, err)
	}

	recipe := Recipe{SourceURL: detailURL}

	recipe.Title = collapseSpace(doc.Find("h1").First().Text())
	if recipe.Title == "" {
		recipe.Title = FallbackTitle
	}

	ingrSection := doc.Find("div.ingredients").First()
	if ingrSection.Length() == 0 {
		ingrSection = doc.Find("div.ingredients-bl").First()
	}
	ingrSection.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := collapseSpace(li.Text()); text != "" {
			recipe.Ingredients = append(recipe.Ingredients, text)
		}
	})

	doc.Find("ul[itemprop=recipeInstructions] li.cooking-bl").Each(func(_ int, li *goquery.Selection) {
		if text := collapseSpace(li.Find("p").First().Text()); text != "" {
			recipe.Steps = append(recipe.Steps, text)
		}
	})

	recipe.ImageURL = f.findImage(doc, detailURL)
	return recipe, nil
}

// GetRandomRecipe lists the category's candidates and fetches one chosen
// uniformly at random. An unreachable or empty listing reports ErrNoRecipes;
// only the detail fetch itself fails hard.
func (f *Fetcher) GetRandomRecipe(ctx context.Context, categoryKey string) (Recipe, error) {
	candidates, err := f.ListCandidates(ctx, categoryKey)
	if err != nil {
		f.log.Warn().Err(err).Str("category", categoryKey).Msg("category listing unavailable")
		return Recipe{}, fmt.Errorf("%w: %v", ErrNoRecipes, err)
	}
	if len(candidates) == 0 {
		return Recipe{}, fmt.Errorf("%w in category %q", ErrNoRecipes, categoryKey)
	}

	idx, err := random.IntRange(0, len(candidates))
	if err != nil {
		return Recipe{}, fmt.Errorf("pick random recipe: %w", err)
	}
	return f.FetchRecipe(ctx, candidates[idx])
}

func (f *Fetcher) findImage(doc *goquery.Document, detailURL string) string {
	src, ok := doc.Find("img[itemprop=image]").First().Attr("src")
	if !ok || src == "" {
		src, _ = doc.Find(`meta[property="og:image"]`).First().Attr("content")
	}
	if src == "" {
		return ""
	}
	ref, err := neturl.Parse(src)
	if err != nil {
		return ""
	}
	base, err := neturl.Parse(detailURL)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
