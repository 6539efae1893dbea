package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host" env:"SERVER_HOST"`
		Port int    `yaml:"port" env:"SERVER_PORT"`
		Env  string `yaml:"env" env:"SERVER_ENV"`
		// Origins allowed for CORS and websocket upgrades; "*" allows any.
		AllowedOrigins  []string      `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url" env:"DATABASE_URL"`
		AutoMigrate  bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret" env:"JWT_SECRET"`
		Issuer string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type" env:"STORAGE_TYPE"`             // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path" env:"STORAGE_BASE_PATH"`   // For local storage
		BaseURL    string `yaml:"base_url" env:"STORAGE_BASE_URL"`     // Public URL base
		Bucket     string `yaml:"bucket" env:"STORAGE_BUCKET"`         // For S3/R2
		Region     string `yaml:"region" env:"STORAGE_REGION"`         // For S3
		AccessKey  string `yaml:"access_key" env:"STORAGE_ACCESS_KEY"` // For S3/R2
		SecretKey  string `yaml:"secret_key" env:"STORAGE_SECRET_KEY"` // For S3/R2
		Endpoint   string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`     // For R2 or custom S3
		UseSSL     bool   `yaml:"use_ssl" env:"STORAGE_USE_SSL"`
		PublicRead bool   `yaml:"public_read" env:"STORAGE_PUBLIC_READ"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size" env:"UPLOAD_MAX_SIZE"` // bytes
		AllowedTypes []string `yaml:"allowed_types" env:"UPLOAD_ALLOWED_TYPES" envSeparator:","`
	} `yaml:"upload"`

	Rental struct {
		// CAS attempts before the engine gives up with a conflict.
		StatusWriteAttempts     int           `yaml:"status_write_attempts" env:"RENTAL_STATUS_WRITE_ATTEMPTS"`
		ReturnEscalationAfter   time.Duration `yaml:"return_escalation_after" env:"RENTAL_RETURN_ESCALATION_AFTER"`
		EscalationCheckInterval time.Duration `yaml:"escalation_check_interval" env:"RENTAL_ESCALATION_CHECK_INTERVAL"`
	} `yaml:"rental"`

	Realtime struct {
		MaxWait         time.Duration `yaml:"max_wait" env:"REALTIME_MAX_WAIT"`
		JanitorInterval time.Duration `yaml:"janitor_interval" env:"REALTIME_JANITOR_INTERVAL"`
	} `yaml:"realtime"`
}

var AppConfig *Config

// Load читает YAML-файл (если он есть), затем переменные окружения.
// Env always wins over the file; missing values get defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using environment only", path)
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Database.DSN == "" {
		return nil, errors.New("database url is required (database.url or DATABASE_URL)")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.Type == "local" && cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./uploads"
	}
	if cfg.Upload.MaxSize == 0 {
		cfg.Upload.MaxSize = 100 * 1024 * 1024 // 100MB, videos included
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{
			"image/jpeg", "image/png", "image/webp", "image/heic",
			"video/mp4", "video/quicktime",
		}
	}
	if cfg.Rental.StatusWriteAttempts <= 0 {
		cfg.Rental.StatusWriteAttempts = 5
	}
	if cfg.Rental.ReturnEscalationAfter == 0 {
		cfg.Rental.ReturnEscalationAfter = 72 * time.Hour
	}
	if cfg.Rental.EscalationCheckInterval == 0 {
		cfg.Rental.EscalationCheckInterval = time.Hour
	}
	if cfg.Realtime.MaxWait == 0 {
		cfg.Realtime.MaxWait = 60 * time.Second
	}
	if cfg.Realtime.JanitorInterval == 0 {
		cfg.Realtime.JanitorInterval = 30 * time.Second
	}
}

// LoadConfig загружает конфигурацию в AppConfig или завершает процесс
func LoadConfig() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
