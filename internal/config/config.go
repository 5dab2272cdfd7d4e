package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`
	HTTPAddr      string `mapstructure:"HTTP_ADDR"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	TokenTTL      time.Duration
	Timezone      string `mapstructure:"TIMEZONE"`
	Location      *time.Location
	Rooms         []int

	StoreTimeout        time.Duration
	StoreRetries        uint64
	RequireAvailability bool
	OccupancyTTL        time.Duration
	RateLimitPerMin     int
	TrustProxy          bool
	MigrationsDir       string // пусто - встроенные миграции

	AdminStudentID string
	AdminPassword  string
}

// LoadConfig читает .env (если есть) и переменные окружения
func LoadConfig() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv собирает конфиг из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		Environment:    envOr("ENV", "development"),
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		Timezone:       envOr("TIMEZONE", "UTC"),
		MigrationsDir:  os.Getenv("MIGRATIONS_DIR"),
		AdminStudentID: os.Getenv("ADMIN_STUDENT_ID"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if (cfg.AdminStudentID == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_STUDENT_ID and ADMIN_PASSWORD must be set together")
	}

	var err error
	if cfg.Location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	if cfg.Rooms, err = parseRooms(envOr("ROOMS", "1,2,3")); err != nil {
		return nil, fmt.Errorf("ROOMS: %w", err)
	}
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = envDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.OccupancyTTL, err = envDuration("OCCUPANCY_TTL", time.Minute); err != nil {
		return nil, err
	}

	retries, err := envInt("STORE_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	if retries < 0 {
		return nil, fmt.Errorf("STORE_RETRIES must not be negative")
	}
	cfg.StoreRetries = uint64(retries)

	if cfg.RateLimitPerMin, err = envInt("RATE_LIMIT_PER_MIN", 120); err != nil {
		return nil, err
	}

	if raw := os.Getenv("TRUST_PROXY"); raw != "" {
		if cfg.TrustProxy, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("TRUST_PROXY: %w", err)
		}
	}

	if raw := os.Getenv("REQUIRE_AVAILABILITY"); raw != "" {
		if cfg.RequireAvailability, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("REQUIRE_AVAILABILITY: %w", err)
		}
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// IsProduction проверяет боевое окружение
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// BotEnabled сообщает, задан ли токен бота
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func parseRooms(raw string) ([]int, error) {
	seen := make(map[int]bool)
	var rooms []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		room, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", part, err)
		}
		if room <= 0 {
			return nil, fmt.Errorf("room %d must be positive", room)
		}
		if seen[room] {
			continue
		}
		seen[room] = true
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("at least one room is required")
	}
	return rooms, nil
}
