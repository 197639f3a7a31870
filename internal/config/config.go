// Package config предоставляет структуры и функции для загрузки конфигурации сервиса.
//
// Конфиг читается из YAML-файла, если задан CONFIG_PATH, и затем из переменных
// окружения. Каждое поле имеет env-тег и значение по умолчанию, поэтому сервис
// можно запустить только на переменных окружения.
package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTPServer `yaml:"http_server"`
	Storage    `yaml:"storage"`
	JWTToken   `yaml:"jwttoken"`
	RateLimit  `yaml:"rate_limit"`
	Redis      `yaml:"redis"`
	RabbitMQ   `yaml:"rabbitmq"`
	CORS       `yaml:"cors"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS"`
	Port        string        `yaml:"port" env:"PORT" env-default:"5000"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	// TrustProxy разрешает брать адрес клиента из X-Forwarded-For/X-Real-IP.
	// Включать только за своим reverse proxy.
	TrustProxy bool `yaml:"trust_proxy" env:"TRUST_PROXY" env-default:"false"`
}

// Storage структура для выбора и подключения хранилища
type Storage struct {
	Driver             string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	MongoURI           string `yaml:"mongodb_uri" env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase      string `yaml:"mongodb_database" env:"MONGODB_DATABASE" env-default:"catalog"`
	PostgresDSN        string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	PostgresMigrations string `yaml:"postgres_migrations" env:"POSTGRES_MIGRATIONS" env-default:"file://migrations/postgres"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_EXPIRES_IN" env-default:"24h"`
}

// RateLimit структура для настройки ограничителя запросов
type RateLimit struct {
	Window      time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"15s"`
	MaxRequests int           `yaml:"max" env:"RATE_LIMIT_MAX" env-default:"100"`
}

// Redis структура для настройки подключения к redis. Пустой адрес отключает redis.
type Redis struct {
	RedisAddress  string        `yaml:"address" env:"REDIS_ADDRESS"`
	RedisPassword string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"5m"`
}

// RabbitMQ структура для публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange    string `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"catalog.events"`
}

// CORS структура со списком разрешённых источников
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://localhost:80,http://localhost"`
}

// ErrNoSecret возвращается, если не задан секрет подписи токенов.
var ErrNoSecret = errors.New("JWT_SECRET is not set")

// Load читает конфиг из файла CONFIG_PATH (если задан) и переменных окружения
// и проверяет его.
func Load() (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("%s: config file %s: %w", op, configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.JWTSecretKey == "" {
		return ErrNoSecret
	}
	switch c.Driver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.Window <= 0 || c.MaxRequests <= 0 {
		return errors.New("rate limit window and max must be positive")
	}
	return nil
}

// Address возвращает адрес для http.Server: HTTP_ADDRESS, если задан,
// иначе ":" + PORT.
func (c *Config) Address() string {
	if c.AddressHTTP != "" {
		return c.AddressHTTP
	}
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// SlogLevel разбирает LOG_LEVEL. Нераспознанное значение даёт Info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  TrustProxy: %t\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  MongoDatabase: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"RateLimit:\n"+
			"  Window: %s\n"+
			"  Max: %d\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  CacheTTL: %s\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"CORS:\n"+
			"  AllowedOrigins: %s\n",
		c.Env,
		c.Address(),
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TrustProxy,
		c.Driver,
		c.MongoDatabase,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		c.Window,
		c.MaxRequests,
		c.RedisAddress,
		c.RedisDB,
		c.CacheTTL,
		c.Exchange,
		strings.Join(c.AllowedOrigins, ","),
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
