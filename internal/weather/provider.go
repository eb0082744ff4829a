package weather

import (
	"context"
	"time"
)

// Client fetches live data from the external weather API.
type Client interface {
	FetchCurrent(ctx context.Context, loc Locator, opts Options) (Snapshot, error)
	FetchForecast(ctx context.Context, loc Locator, opts Options) (Forecast, error)
}

// Cache is the offline fallback store consulted when a fetch fails.
type Cache interface {
	Put(city string, current Snapshot, forecast Forecast)
	Get(city string, ttl time.Duration) (CacheEntry, bool)
}

// History records successful searches.
type History interface {
	Record(city string) error
}
