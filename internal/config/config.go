package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	// DefaultSessionSecret matches the development fallback; override it outside local runs.
	DefaultSessionSecret = "dev"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env           string `yaml:"env" env:"ENV" env-default:"local"`
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-default:"dev"`
	BcryptCost    int    `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	Database      `yaml:"database"`
	HTTPServer    `yaml:"http_server"`
}

type Database struct {
	Driver     string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path       string `yaml:"path" env:"DB_PATH" env-default:"instance/sport_bet.sqlite"`
	Host       string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port       int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	UsernameDB string `yaml:"username-db" env:"DB_USERNAME"`
	Password   string `yaml:"password" env:"DB_PASSWORD"`
	DBName     string `yaml:"dbname" env:"DB_NAME" env-default:"sport_bet"`
}

type HTTPServer struct {
	Address       string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout       time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" env-default:"60s"`
	SecureCookies bool          `yaml:"secure_cookies" env:"SECURE_COOKIES" env-default:"false"`
}

// Load reads the YAML file at path with env overrides. An empty path reads
// the environment only, falling back to CONFIG_PATH when it is set.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: config file does not exist: %s", op, path)
		}

		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read config %s: %w", op, path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (cfg *Config) Validate() error {
	switch cfg.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("%w: unknown env %q", ErrInvalidConfig, cfg.Env)
	}

	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for sqlite", ErrInvalidConfig)
		}
	case DriverMySQL:
		if cfg.Database.UsernameDB == "" {
			return fmt.Errorf("%w: database.username-db is required for mysql", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, cfg.Database.Driver)
	}

	if cfg.SessionSecret == "" {
		return fmt.Errorf("%w: session_secret is empty", ErrInvalidConfig)
	}

	return nil
}

// GetDSN builds the MySQL DSN. ClientFoundRows makes UPDATE report matched
// rows, so an update that changes nothing is still "found".
func (cfg *Database) GetDSN() string {
	mc := mysql.NewConfig()
	mc.User = cfg.UsernameDB
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.ClientFoundRows = true

	return mc.FormatDSN()
}

// SQLiteDSN enables foreign keys on every connection of the pool.
func (cfg *Database) SQLiteDSN() string {
	return "file:" + cfg.Path + "?_foreign_keys=on&_busy_timeout=5000"
}
