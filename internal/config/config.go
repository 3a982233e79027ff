package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	BaseURL        string
	CookieDB       string
	TokenCookie    string
	TokenHeader    string
	Locale         string
	RequestTimeout time.Duration
	RabbitURL      string // empty disables activity events
	EventsExchange string
	ServiceEnv     string
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	cfg := Config{
		BaseURL:        getEnv("CART_BASE_URL", "http://localhost:8000"),
		CookieDB:       getEnv("CART_COOKIE_DB", "./data/cookies.db"),
		TokenCookie:    getEnv("CART_TOKEN_COOKIE", "csrftoken"),
		TokenHeader:    getEnv("CART_TOKEN_HEADER", "X-CSRFToken"),
		Locale:         getEnv("CART_LOCALE", "uk"),
		RequestTimeout: getDuration("CART_REQUEST_TIMEOUT", 10*time.Second),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "cart.events"),
		ServiceEnv:     getEnv("SERVICE_ENV", "dev"),
	}
	log.Debug().
		Str("base_url", cfg.BaseURL).
		Str("cookie_db", cfg.CookieDB).
		Str("locale", cfg.Locale).
		Dur("timeout", cfg.RequestTimeout).
		Bool("events", cfg.RabbitURL != "").
		Msg("config loaded")
	return cfg
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", k).Str("value", v).Msg("bad duration, using default")
		return def
	}
	return d
}
