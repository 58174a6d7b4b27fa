package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"sport_bet/internal/models"
	"sport_bet/internal/storage"
	"sport_bet/internal/storage/sqldb"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooLong    = errors.New("password is too long")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// bcrypt ignores everything past 72 bytes
const maxPasswordBytes = 72

type UserService struct {
	storage *sqldb.Storage
	log     *slog.Logger
	cost    int
}

func NewUserService(s *sqldb.Storage, log *slog.Logger, cost int) *UserService {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &UserService{
		storage: s,
		log:     log,
		cost:    cost,
	}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	const op = "services.users.Register"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUsernameRequired)
	}
	if password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordRequired)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
	}

	if _, err := s.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%s: user %s: %w", op, username, storage.ErrExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := &models.User{
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.storage.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%s: user %s: %w", op, username, storage.ErrExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int64("id", u.ID), slog.String("username", u.Username))

	return u, nil
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	const op = "services.users.Authenticate"

	u, err := s.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "services.users.GetByID"

	var u models.User

	err := s.storage.DB.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: user %d: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "services.users.GetByUsername"

	var u models.User

	err := s.storage.DB.WithContext(ctx).Where("username = ?", username).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: user %s: %w", op, username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

func (s *UserService) SetAdmin(ctx context.Context, username string, admin bool) error {
	const op = "services.users.SetAdmin"

	res := s.storage.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("admin", admin)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: user %s: %w", op, username, storage.ErrNotFound)
	}

	return nil
}
