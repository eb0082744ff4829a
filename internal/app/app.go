// Package app assembles the storage, cache, weather and preferences
// components from configuration. Both the server and the CLI commands use it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/cloudcast/internal/cache"
	"github.com/i474232898/cloudcast/internal/config"
	"github.com/i474232898/cloudcast/internal/preferences"
	"github.com/i474232898/cloudcast/internal/store"
	"github.com/i474232898/cloudcast/internal/weather"
	"github.com/i474232898/cloudcast/internal/weather/providers"
)

// App holds the wired components.
type App struct {
	Config  *config.AppConfig
	KV      store.KV
	Cache   *cache.Offline
	History *store.History
	Weather *weather.Service
	Prefs   *preferences.Store

	mu     sync.Mutex
	client *providers.OpenWeather
	bolt   *store.BoltStore
	remote *preferences.SQLRemote
}

// New opens local storage and the optional remote preferences backend and
// wires the weather service. An empty cfg.DataPath keeps everything in memory.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	a := &App{Config: cfg}

	if cfg.DataPath == "" {
		a.KV = store.NewMemoryStore()
	} else {
		b, err := store.NewBoltStore(cfg.DataPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
		}
		a.bolt = b
		a.KV = b
	}

	var remote preferences.Remote
	if cfg.PrefsRemoteDriver != "" {
		r, err := preferences.OpenSQLRemote(ctx, cfg.PrefsRemoteDriver, cfg.PrefsRemoteDSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.remote = r
		remote = r
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	a.client = providers.NewOpenWeather(httpClient, cfg.OpenWeatherBaseURL, a.resolveAPIKey())

	a.Cache = cache.NewOffline(a.KV, cache.WithCapacity(cfg.CacheCapacity))
	a.History = store.NewHistory(a.KV, store.DefaultHistorySize)
	a.Weather = weather.NewService(a.client, a.Cache, a.History, cfg.CacheTTL)
	a.Prefs = preferences.NewStore(a.KV, remote, preferences.WithDefaultLanguage(cfg.DefaultLanguage))

	return a, nil
}

// resolveAPIKey prefers a key saved by the user over the environment.
func (a *App) resolveAPIKey() string {
	key, err := a.KV.Get(store.KeyAPIKey)
	switch {
	case err == nil && key != "":
		return key
	case err != nil && !errors.Is(err, store.ErrNotFound):
		log.Printf("WARN: app: reading saved API key: %v", err)
	}
	return a.Config.OpenWeatherAPIKey
}

// SetAPIKey saves key on this device and switches the weather client to it.
func (a *App) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return weather.ErrMissingCredential
	}
	if err := a.KV.Set(store.KeyAPIKey, key); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}

	a.mu.Lock()
	a.client = a.client.WithAPIKey(key)
	a.Weather.UseClient(a.client)
	a.mu.Unlock()

	log.Println("INFO: app: weather API key updated")
	return nil
}

// HasAPIKey reports whether the weather client has a key.
func (a *App) HasAPIKey() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client.HasAPIKey()
}

// Foreground runs the work due when the app becomes active: expired cache
// entries are swept.
func (a *App) Foreground() int {
	return a.Cache.SweepExpired(a.ttl())
}

func (a *App) ttl() time.Duration {
	if a.Config.CacheTTL <= 0 {
		return weather.DefaultCacheTTL
	}
	return a.Config.CacheTTL
}

// Close releases storage handles.
func (a *App) Close() error {
	var errs []error
	if a.remote != nil {
		errs = append(errs, a.remote.Close())
	}
	if a.bolt != nil {
		errs = append(errs, a.bolt.Close())
	}
	return errors.Join(errs...)
}
