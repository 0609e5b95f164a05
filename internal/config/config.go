package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverMariaDB  = "mariadb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	StaticPath string `yaml:"static_path" env:"STATIC_PATH" env-default:"./static"`
	Database   `yaml:"database"`
	HTTPServer `yaml:"http_server"`
	Import     Import `yaml:"import"`
	Log        Log    `yaml:"log"`
}

type Database struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"mariadb"`
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"3306"`
	UsernameDB      string        `yaml:"username-db" env:"DB_USERNAME"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"DB_NAME" env-default:"games"`
	Path            string        `yaml:"path" env:"DB_PATH" env-default:"games.db"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"5"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"20"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"1h"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" env:"DB_SLOW_THRESHOLD" env-default:"200ms"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":3000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	Cors        []string      `yaml:"cors" env-default:"http://localhost:3000"`
}

// Import describes the two top-100 feeds and how populate runs against them.
type Import struct {
	AndroidURL string        `yaml:"android_url" env:"IMPORT_ANDROID_URL" env-default:"https://interview-marketing-eng-dev.s3.eu-west-1.amazonaws.com/android.top100.json"`
	IOSURL     string        `yaml:"ios_url" env:"IMPORT_IOS_URL" env-default:"https://interview-marketing-eng-dev.s3.eu-west-1.amazonaws.com/ios.top100.json"`
	Timeout    time.Duration `yaml:"timeout" env:"IMPORT_TIMEOUT" env-default:"30s"`
	BatchSize  int           `yaml:"batch_size" env:"IMPORT_BATCH_SIZE" env-default:"100"`
	Interval   time.Duration `yaml:"interval" env:"IMPORT_INTERVAL" env-default:"0s"`
	UserAgent  string        `yaml:"user_agent" env-default:"game-catalog/1.0"`
}

type Log struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"28"`
	Compress   bool   `yaml:"compress"`
}

func MustLoad() *Config {
	configPath := flag.String("config", "", "path to config yaml file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s - %s", path, err)
	}

	return cfg
}

// Load reads the yaml file at path, with a .env file in the working directory
// and the process environment taking precedence.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Database.Driver {
	case DriverMySQL, DriverMariaDB, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Import.BatchSize <= 0 {
		return errors.New("import.batch_size must be positive")
	}

	if cfg.Import.Interval < 0 {
		return errors.New("import.interval must not be negative")
	}

	return nil
}

func (cfg *Database) GetDSN() string {
	switch cfg.Driver {
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.UsernameDB,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
	case DriverSQLite:
		return cfg.Path
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.UsernameDB,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
		)
	}
}
