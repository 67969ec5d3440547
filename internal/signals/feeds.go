package signals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"pressroom/internal/logging"
	"pressroom/internal/textutil"
)

// FeedOptions tunes a FeedSource.
type FeedOptions struct {
	WindowDays  int
	Concurrency int
	Timeout     time.Duration
	Logger      *slog.Logger
	Client      *http.Client
	Now         func() time.Time
}

// FeedSource derives a mention-count series from RSS/Atom feeds. Feeds are
// downloaded once per source and shared by every Fetch.
type FeedSource struct {
	urls []string
	opts FeedOptions

	once     sync.Once
	items    []feedItem
	loadErr  error
	feedsOK  int
	feedsErr int
}

type feedItem struct {
	at     time.Time
	tokens map[string]struct{}
}

// NewFeedSource returns a feed-backed Source.
func NewFeedSource(urls []string, opts FeedOptions) *FeedSource {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 90
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &FeedSource{urls: append([]string(nil), urls...), opts: opts}
}

// Name implements Source.
func (f *FeedSource) Name() string { return "feeds" }

// Fetch implements Source. A day's magnitude is the number of feed items
// published that day whose title, description, or categories contain every
// token of the phrase.
func (f *FeedSource) Fetch(ctx context.Context, seed Seed) (Signal, error) {
	f.once.Do(func() { f.loadErr = f.load(ctx) })
	if f.loadErr != nil {
		return Signal{}, f.loadErr
	}

	start := windowStart(f.opts.Now(), f.opts.WindowDays)
	counts := make([]float64, f.opts.WindowDays)
	wanted := textutil.Tokenize(seed.Phrase)
	if len(wanted) > 0 {
		for _, item := range f.items {
			if !item.matches(wanted) {
				continue
			}
			day := int(math.Floor(item.at.Sub(start).Hours() / 24))
			if day < 0 || day >= len(counts) {
				continue
			}
			counts[day]++
		}
	}

	series := make([]Point, len(counts))
	for i, count := range counts {
		series[i] = Point{At: start.AddDate(0, 0, i), Magnitude: count}
	}
	return Signal{
		Phrase:   strings.TrimSpace(seed.Phrase),
		Series:   series,
		Metadata: metadataFromSeed(seed),
	}, nil
}

// Stats reports how many feeds loaded and how many failed.
func (f *FeedSource) Stats() (ok, failed int) {
	return f.feedsOK, f.feedsErr
}

func (f *FeedSource) load(ctx context.Context) error {
	var (
		mu    sync.Mutex
		items []feedItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for _, url := range f.urls {
		g.Go(func() error {
			parsed, err := f.parse(gctx, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				f.feedsErr++
				logging.WarnWithContext(f.opts.Logger, "feed fetch failed", "feed_fetch_failed",
					logging.String("url", url),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the feed url or network access"),
					logging.String(logging.FieldImpact, "mentions from this feed are not counted"),
				)
				return nil
			}
			f.feedsOK++
			items = append(items, parsed...)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.feedsOK == 0 && len(f.urls) > 0 {
		return errors.New("signals: every configured feed failed to load")
	}
	f.items = items
	f.opts.Logger.Info("feeds loaded",
		logging.Int("feeds_ok", f.feedsOK),
		logging.Int("feeds_failed", f.feedsErr),
		logging.Int("items", len(items)),
	)
	return nil
}

func (f *FeedSource) parse(ctx context.Context, url string) ([]feedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = f.opts.Client
	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	out := make([]feedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		at := item.PublishedParsed
		if at == nil {
			at = item.UpdatedParsed
		}
		if at == nil {
			continue
		}
		text := item.Title + " " + item.Description + " " + strings.Join(item.Categories, " ")
		tokens := make(map[string]struct{})
		for _, token := range textutil.Tokenize(text) {
			tokens[token] = struct{}{}
		}
		out = append(out, feedItem{at: *at, tokens: tokens})
	}
	return out, nil
}

func (i feedItem) matches(wanted []string) bool {
	for _, token := range wanted {
		if _, ok := i.tokens[token]; !ok {
			return false
		}
	}
	return true
}
