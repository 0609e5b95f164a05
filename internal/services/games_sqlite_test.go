package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"game_catalog/internal/config"
	"game_catalog/internal/models"
	"game_catalog/internal/storage"
	"game_catalog/internal/storage/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStorage(t *testing.T) *sqlstore.Storage {
	t.Helper()

	s, err := sqlstore.New(config.Database{Driver: config.DriverSQLite, Path: ":memory:"}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func seed(t *testing.T, service *GameService, names ...string) []models.Game {
	t.Helper()

	games := make([]models.Game, 0, len(names))
	for i, name := range names {
		platform := models.PlatformAndroid
		if i%2 == 1 {
			platform = models.PlatformIOS
		}
		g, err := service.Create(context.Background(), &models.Game{
			PublisherID: "pub",
			Name:        name,
			Platform:    platform,
		})
		require.NoError(t, err)
		games = append(games, *g)
	}

	return games
}

func gameNames(games []models.Game) []string {
	names := make([]string, 0, len(games))
	for _, g := range games {
		names = append(names, g.Name)
	}
	return names
}

func TestGameService_CreateThenList(t *testing.T) {
	service := NewGameService(newMemoryStorage(t), discardLogger())
	ctx := context.Background()

	created, err := service.Create(ctx, &models.Game{
		PublisherID: "1",
		Name:        "Test Game",
		Platform:    "android",
		StoreID:     "com.test",
		BundleID:    "com.test.bundle",
		AppVersion:  "1.0",
		IsPublished: true,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	games, err := service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)

	got := games[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "1", got.PublisherID)
	assert.Equal(t, "Test Game", got.Name)
	assert.Equal(t, "android", got.Platform)
	assert.Equal(t, "com.test", got.StoreID)
	assert.Equal(t, "com.test.bundle", got.BundleID)
	assert.Equal(t, "1.0", got.AppVersion)
	assert.True(t, got.IsPublished)
}

func TestGameService_SearchBehaviour(t *testing.T) {
	service := NewGameService(newMemoryStorage(t), discardLogger())
	ctx := context.Background()

	seed(t, service, "Match Masters", "Mahjong", "Candy Crush", "Gamer Life")

	t.Run("name substring", func(t *testing.T) {
		name := "Ma"

		games, err := service.Search(ctx, models.SearchFilter{Name: &name})

		require.NoError(t, err)
		// sqlite LIKE ignores ASCII case, so "Gamer" matches as well
		assert.Equal(t, []string{"Match Masters", "Mahjong", "Gamer Life"}, gameNames(games))
	})

	t.Run("platform", func(t *testing.T) {
		platform := models.PlatformIOS

		games, err := service.Search(ctx, models.SearchFilter{Platform: &platform})

		require.NoError(t, err)
		assert.Equal(t, []string{"Mahjong", "Gamer Life"}, gameNames(games))
	})

	t.Run("both", func(t *testing.T) {
		name, platform := "Ma", "android"

		games, err := service.Search(ctx, models.SearchFilter{Name: &name, Platform: &platform})

		require.NoError(t, err)
		assert.Equal(t, []string{"Match Masters"}, gameNames(games))
	})

	t.Run("no filters returns everything", func(t *testing.T) {
		games, err := service.Search(ctx, models.SearchFilter{})

		require.NoError(t, err)
		assert.Len(t, games, 4)
	})

	t.Run("empty strings impose nothing", func(t *testing.T) {
		empty := ""

		games, err := service.Search(ctx, models.SearchFilter{Name: &empty, Platform: &empty})

		require.NoError(t, err)
		assert.Len(t, games, 4)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		name := "Zelda"

		games, err := service.Search(ctx, models.SearchFilter{Name: &name})

		require.NoError(t, err)
		assert.NotNil(t, games)
		assert.Empty(t, games)
	})
}

func TestGameService_UpdateBehaviour(t *testing.T) {
	service := NewGameService(newMemoryStorage(t), discardLogger())
	ctx := context.Background()

	created, err := service.Create(ctx, &models.Game{
		PublisherID: "9",
		Name:        "Old",
		Platform:    "ios",
		StoreID:     "store",
		BundleID:    "bundle",
		AppVersion:  "2.0",
		IsPublished: true,
	})
	require.NoError(t, err)

	name := "New"
	updated, err := service.Update(ctx, created.ID, models.GameChanges{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)

	fetched, err := service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", fetched.Name)
	assert.Equal(t, "9", fetched.PublisherID)
	assert.Equal(t, "ios", fetched.Platform)
	assert.Equal(t, "store", fetched.StoreID)
	assert.Equal(t, "bundle", fetched.BundleID)
	assert.Equal(t, "2.0", fetched.AppVersion)
	assert.True(t, fetched.IsPublished)

	t.Run("false is written", func(t *testing.T) {
		published := false

		updated, err := service.Update(ctx, created.ID, models.GameChanges{IsPublished: &published})

		require.NoError(t, err)
		assert.False(t, updated.IsPublished)
		assert.Equal(t, "New", updated.Name)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := service.Update(ctx, created.ID+100, models.GameChanges{Name: &name})

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGameService_DeleteBehaviour(t *testing.T) {
	s := newMemoryStorage(t)
	service := NewGameService(s, discardLogger())
	ctx := context.Background()

	games := seed(t, service, "Keep", "Drop")

	require.NoError(t, service.Delete(ctx, games[1].ID))

	_, err := service.GetByID(ctx, games[1].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, service.Delete(ctx, games[1].ID), storage.ErrNotFound)

	var total int64
	require.NoError(t, s.DB.Unscoped().Model(&models.Game{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)

	remaining, err := service.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep"}, gameNames(remaining))
}

func TestGameService_CreateBatch(t *testing.T) {
	service := NewGameService(newMemoryStorage(t), discardLogger())
	ctx := context.Background()

	t.Run("empty is a no-op", func(t *testing.T) {
		assert.NoError(t, service.CreateBatch(ctx, nil, 10))
	})

	t.Run("chunks", func(t *testing.T) {
		batch := make([]models.Game, 0, 5)
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			batch = append(batch, models.Game{Name: name, Platform: models.PlatformAndroid})
		}

		require.NoError(t, service.CreateBatch(ctx, batch, 2))

		for _, g := range batch {
			assert.NotZero(t, g.ID)
		}

		games, err := service.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, games, 5)
	})
}

func TestGameService_MissingRowIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := sqlstore.New(config.Database{Driver: config.DriverSQLite, Path: ":memory:"}, log)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })

	service := NewGameService(s, log)
	ctx := context.Background()

	_, err = service.GetByID(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	name := "Ghost"
	_, err = service.Update(ctx, 99, models.GameChanges{Name: &name})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, service.Delete(ctx, 99), storage.ErrNotFound)

	assert.NotContains(t, buf.String(), `"level":"ERROR"`)
	assert.NotContains(t, buf.String(), "record not found")
}
