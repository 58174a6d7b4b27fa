package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"sport_bet/internal/access"
	"sport_bet/internal/models"
	"sport_bet/internal/storage"
	"sport_bet/internal/storage/sqldb"

	"gorm.io/gorm"
)

var ErrTitleRequired = errors.New("title is required")

// GameInput carries the user-editable fields of a game.
type GameInput struct {
	Title  string
	Body   string
	Tipoff string
}

// validate only requires a title. Fields are stored exactly as submitted.
func (in GameInput) validate() error {
	if in.Title == "" {
		return ErrTitleRequired
	}
	return nil
}

type GameService struct {
	storage *sqldb.Storage
	log     *slog.Logger
}

func NewGameService(s *sqldb.Storage, log *slog.Logger) *GameService {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &GameService{
		storage: s,
		log:     log,
	}
}

// ListAll returns every game with its author, most recent tipoff first.
func (s *GameService) ListAll(ctx context.Context) ([]models.Game, error) {
	const op = "services.games.ListAll"

	var games []models.Game

	err := s.storage.DB.WithContext(ctx).
		Joins("Author").
		Order("games.tipoff DESC").
		Order("games.id DESC").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

func (s *GameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	const op = "services.games.GetByID"

	var g models.Game

	err := s.storage.DB.WithContext(ctx).
		Joins("Author").
		Where("games.id = ?", id).
		Take(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: game %d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &g, nil
}

// GetForModify loads a game and checks that user may change it.
func (s *GameService) GetForModify(ctx context.Context, user *models.User, id int64) (*models.Game, error) {
	const op = "services.games.GetForModify"

	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := access.Check(user, g); err != nil {
		return nil, fmt.Errorf("%s: game %d: %w", op, id, err)
	}

	return g, nil
}

func (s *GameService) Create(ctx context.Context, authorID int64, in GameInput) (*models.Game, error) {
	const op = "services.games.Create"

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g := &models.Game{
		Title:    in.Title,
		Body:     in.Body,
		Tipoff:   in.Tipoff,
		AuthorID: authorID,
	}

	if err := s.storage.DB.WithContext(ctx).Create(g).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("game created", slog.Int64("id", g.ID), slog.Int64("author_id", authorID))

	return g, nil
}

// Update rewrites title, body and tipoff. The author never changes.
func (s *GameService) Update(ctx context.Context, id int64, in GameInput) error {
	const op = "services.games.Update"

	if err := in.validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res := s.storage.DB.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":  in.Title,
			"body":   in.Body,
			"tipoff": in.Tipoff,
		})
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: game %d: %w", op, id, storage.ErrNotFound)
	}

	s.log.Debug("game updated", slog.Int64("id", id))

	return nil
}

func (s *GameService) Delete(ctx context.Context, id int64) error {
	const op = "services.games.Delete"

	res := s.storage.DB.WithContext(ctx).Delete(&models.Game{}, id)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: game %d: %w", op, id, storage.ErrNotFound)
	}

	s.log.Debug("game deleted", slog.Int64("id", id))

	return nil
}
