package sqldb

import (
	"fmt"
	"os"
	"path/filepath"

	"sport_bet/internal/config"
	"sport_bet/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Storage struct {
	DB *gorm.DB
}

func New(cfg config.Database) (*Storage, error) {
	const op = "storage.sqldb.New"

	var dialector gorm.Dialector

	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		dialector = sqlite.Open(cfg.SQLiteDSN())
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("%s: unknown driver %q", op, cfg.Driver)
	}

	s, err := Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		sqlDB, err := s.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return s, nil
}

// Open wraps an already configured dialector, letting tests hand in sqlmock connections.
func Open(dialector gorm.Dialector) (*Storage, error) {
	const op = "storage.sqldb.Open"

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) Ping() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *Storage) Migrate() error {
	const op = "storage.sqldb.Migrate"

	if err := s.DB.AutoMigrate(&models.User{}, &models.Game{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Reset drops both tables and recreates them empty.
func (s *Storage) Reset() error {
	const op = "storage.sqldb.Reset"

	if err := s.DB.Migrator().DropTable(&models.Game{}, &models.User{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.Migrate()
}
