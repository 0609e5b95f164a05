package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"game_catalog/internal/clients/feeds"
	"game_catalog/internal/config"
	"game_catalog/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]feeds.FeedGame, error)
}

type GameBatchCreator interface {
	CreateBatch(ctx context.Context, games []models.Game, batchSize int) error
}

// Importer fills the catalog from the Android and iOS top-100 feeds.
type Importer struct {
	feeds FeedFetcher
	games GameBatchCreator
	cfg   config.Import
	log   *slog.Logger
	now   func() time.Time
}

func NewImporter(f FeedFetcher, g GameBatchCreator, cfg config.Import, log *slog.Logger) *Importer {
	return &Importer{
		feeds: f,
		games: g,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// WithClock replaces the time source used to decide isPublished.
func (i *Importer) WithClock(now func() time.Time) *Importer {
	i.now = now
	return i
}

// Populate fetches both feeds concurrently and inserts every record as one
// batch. Nothing is inserted unless both fetches succeed. It returns the
// number of inserted rows.
func (i *Importer) Populate(ctx context.Context) (int, error) {
	const op = "services.populate.Populate"

	importID := uuid.NewString()
	log := i.log.With(slog.String("operation", op), slog.String("import_id", importID))

	log.Info("import started",
		slog.String("android_url", i.cfg.AndroidURL),
		slog.String("ios_url", i.cfg.IOSURL))

	var android, ios []feeds.FeedGame

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		android, err = i.feeds.Fetch(gctx, i.cfg.AndroidURL)
		return err
	})
	g.Go(func() error {
		var err error
		ios, err = i.feeds.Fetch(gctx, i.cfg.IOSURL)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error(ErrFetchFeed.Error(), slog.String("error", err.Error()))
		return 0, fmt.Errorf("%s: %w: %w", op, ErrFetchFeed, err)
	}

	now := i.now()
	games := make([]models.Game, 0, len(android)+len(ios))
	for _, raw := range android {
		games = append(games, MapFeedGame(raw, now))
	}
	for _, raw := range ios {
		games = append(games, MapFeedGame(raw, now))
	}

	if err := i.games.CreateBatch(ctx, games, i.cfg.BatchSize); err != nil {
		log.Error(ErrInsertGames.Error(), slog.Int("count", len(games)), slog.String("error", err.Error()))
		return 0, fmt.Errorf("%s: %w: %w", op, ErrInsertGames, err)
	}

	log.Info("import finished",
		slog.Int("android", len(android)),
		slog.Int("ios", len(ios)),
		slog.Int("count", len(games)))

	return len(games), nil
}

// MapFeedGame converts a feed record to a catalog game. A game counts as
// published when its release date lies strictly before now; a missing or
// unreadable date means unpublished.
func MapFeedGame(raw feeds.FeedGame, now time.Time) models.Game {
	released, ok := parseReleaseDate(raw.ReleaseDate)

	return models.Game{
		PublisherID: raw.PublisherID,
		Name:        raw.Name,
		Platform:    raw.OS,
		StoreID:     raw.AppID,
		BundleID:    raw.BundleID,
		AppVersion:  raw.Version,
		IsPublished: ok && released.Before(now),
	}
}

var releaseDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

func parseReleaseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
