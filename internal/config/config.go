package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/cloudcast/internal/preferences"
	"github.com/i474232898/cloudcast/internal/weather/providers"
)

type AppConfig struct {
	// OpenWeatherAPIKey seeds the client; a key saved through the API or CLI
	// takes precedence.
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	HTTPTimeout        time.Duration

	// DataPath is the bbolt file holding the cache, history and preferences.
	DataPath      string
	CacheTTL      time.Duration
	CacheCapacity int

	// RefreshInterval controls how often favorite cities are refreshed.
	RefreshInterval time.Duration

	// Remote preferences backend; an empty driver keeps preferences local.
	PrefsRemoteDriver string
	PrefsRemoteDSN    string
	SessionSecret     string

	DefaultLanguage string
	Port            string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultBaseURL)
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.DataPath = getenvDefault("DATA_PATH", "cloudcast.db")
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	cfg.CacheCapacity = getenvInt("CACHE_CAPACITY", 5)

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	cfg.PrefsRemoteDriver = os.Getenv("PREFS_REMOTE_DRIVER")
	switch cfg.PrefsRemoteDriver {
	case "", preferences.DriverSQLite, preferences.DriverMySQL:
	default:
		return nil, fmt.Errorf("invalid PREFS_REMOTE_DRIVER %q: want sqlite or mysql", cfg.PrefsRemoteDriver)
	}
	cfg.PrefsRemoteDSN = os.Getenv("PREFS_REMOTE_DSN")
	if cfg.PrefsRemoteDriver != "" && cfg.PrefsRemoteDSN == "" {
		return nil, fmt.Errorf("PREFS_REMOTE_DSN is required when PREFS_REMOTE_DRIVER is set")
	}
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")

	cfg.DefaultLanguage = getenvDefault("DEFAULT_LANGUAGE", "en")
	if !slices.Contains(preferences.Languages, cfg.DefaultLanguage) {
		return nil, fmt.Errorf("invalid DEFAULT_LANGUAGE %q", cfg.DefaultLanguage)
	}
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
