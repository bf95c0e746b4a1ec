package config

import (
	"flag"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config настройки приложения. Значения из ENV имеют приоритет над
// флагами командной строки.
type Config struct {
	// Адрес на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS"`
	// Базовый адрес результирующей короткой ссылки
	BaseURL *url.URL `env:"BASE_URL"`
	// DSN PostgreSQL. Если задан — хранилище postgres.
	DatabaseDSN string `env:"DATABASE_DSN"`
	// Путь к файлу sqlite. Если задан (и нет DSN) — хранилище sqlite.
	SQLitePath string `env:"SQLITE_PATH"`
	// Адрес redis для кеша резолва коротких кодов. Пустой адрес — без кеша.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	// TTL кеша резолва
	ResolveCacheTTL time.Duration `env:"RESOLVE_CACHE_TTL" envDefault:"5m"`
	// Ключ проверки подписи JWT провайдера идентичности
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret"`
	// Endpoint геолокации (совместимый с ip-api.com). Пустой — без геолокации.
	GeoEndpoint string `env:"GEO_API_URL"`
}

func LoadConfig() (*Config, error) {
	// .env подхватываем лучшими усилиями, его отсутствие не ошибка.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if err := env.Parse(&envConfig); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	loadFlags(&flagsConfig)

	return mergeConfig(&envConfig, &flagsConfig), nil
}

// MustLoadConfig вызывает панику если конфиг не собрался.
func MustLoadConfig() *Config {
	conf, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return conf
}

// loadFlags парсит флаги командной строки.
func loadFlags(flagsConfig *Config) {
	flag.StringVar(&flagsConfig.ServerAddress, "a", "localhost:8080", "Адрес сервера")
	flag.StringVar(&flagsConfig.DatabaseDSN, "d", "", "DSN PostgreSQL")
	flag.StringVar(&flagsConfig.SQLitePath, "f", "", "Путь к файлу sqlite")
	flag.StringVar(&flagsConfig.RedisAddr, "r", "", "Адрес redis")

	bDesc := "Базовый адрес короткой ссылки (по умолчанию Scheme://Host запущенного сервера)"
	flag.Func("b", bDesc, func(rawURL string) error {
		parsedURL, err := url.ParseRequestURI(rawURL)
		if err != nil {
			return errors.Wrap(err, "failed to parse base url")
		}

		// создаем новый инстанс, отсекая тем самым Path и Query если они заданы в базовом урле.
		flagsConfig.BaseURL = &url.URL{
			Scheme: parsedURL.Scheme,
			Host:   parsedURL.Host,
		}
		return nil
	})

	flag.Parse()
}

// mergeConfig сливает структуры для env и флагов.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	merged := *envConfig
	merged.ServerAddress = defaultIfBlank(envConfig.ServerAddress, flagsConfig.ServerAddress)
	merged.BaseURL = defaultIfBlank(envConfig.BaseURL, flagsConfig.BaseURL)
	merged.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	merged.SQLitePath = defaultIfBlank(envConfig.SQLitePath, flagsConfig.SQLitePath)
	merged.RedisAddr = defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr)
	return &merged
}

func defaultIfBlank[T any](value T, defaultValue T) T {
	if v, ok := any(value).(string); ok && v == "" {
		return defaultValue
	}
	if v, ok := any(value).(*url.URL); ok && v == nil {
		return defaultValue
	}
	return value
}
