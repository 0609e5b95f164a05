package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"game_catalog/internal/models"
	"game_catalog/internal/storage"
	"game_catalog/internal/storage/sqlstore"

	"gorm.io/gorm"
)

type GameService struct {
	storage *sqlstore.Storage
	log     *slog.Logger
}

func NewGameService(s *sqlstore.Storage, log *slog.Logger) *GameService {
	return &GameService{
		storage: s,
		log:     log,
	}
}

func (s *GameService) GetAll(ctx context.Context) ([]models.Game, error) {
	const op = "services.games.GetAll"

	games := make([]models.Game, 0)
	if err := s.storage.DB.WithContext(ctx).Order("id").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

func (s *GameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	const op = "services.games.GetByID"

	var g models.Game
	if err := s.storage.DB.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &g, nil
}

// Search matches name and platform as substrings. Case sensitivity follows
// the column collation of the underlying store.
func (s *GameService) Search(ctx context.Context, filter models.SearchFilter) ([]models.Game, error) {
	const op = "services.games.Search"

	db := s.storage.DB.WithContext(ctx).Model(&models.Game{})

	if filter.Name != nil && *filter.Name != "" {
		db = db.Where("name LIKE ?", "%"+*filter.Name+"%")
	}

	if filter.Platform != nil && *filter.Platform != "" {
		db = db.Where("platform LIKE ?", "%"+*filter.Platform+"%")
	}

	games := make([]models.Game, 0)
	if err := db.Order("id").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

func (s *GameService) Create(ctx context.Context, g *models.Game) (*models.Game, error) {
	const op = "services.games.Create"

	g.ID = 0
	if err := s.storage.DB.WithContext(ctx).Create(g).Error; err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrCreateFailed, err)
	}

	return g, nil
}

// Update writes the supplied fields of the game with the given id and returns
// the stored row.
func (s *GameService) Update(ctx context.Context, id int64, changes models.GameChanges) (*models.Game, error) {
	const op = "services.games.Update"

	tx := s.storage.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%s: %w", op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var existing models.Game
	if err := tx.First(&existing, id).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	if cols := changes.Columns(); len(cols) > 0 {
		if err := tx.Model(&existing).Updates(cols).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUpdateFailed, err)
		}
	}

	var updated models.Game
	if err := tx.First(&updated, id).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &updated, nil
}

// Delete removes the row permanently.
func (s *GameService) Delete(ctx context.Context, id int64) error {
	const op = "services.games.Delete"

	tx := s.storage.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%s: %w", op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var existing models.Game
	if err := tx.First(&existing, id).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w", op, notFound(err))
	}

	if err := tx.Unscoped().Delete(&models.Game{}, id).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w: %w", op, storage.ErrDeleteFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateBatch inserts games in chunks of batchSize. Generated ids are written
// back into the slice.
func (s *GameService) CreateBatch(ctx context.Context, games []models.Game, batchSize int) error {
	const op = "services.games.CreateBatch"

	if len(games) == 0 {
		return nil
	}

	if err := s.storage.DB.WithContext(ctx).CreateInBatches(&games, batchSize).Error; err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrCreateFailed, err)
	}

	s.log.Debug("games inserted",
		slog.String("operation", op),
		slog.Int("count", len(games)),
		slog.Int("batch_size", batchSize))

	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}

	return err
}
