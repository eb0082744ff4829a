package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/cloudcast/internal/common"
)

// DefaultCacheTTL is how long a cached city stays usable as a fallback.
const DefaultCacheTTL = 30 * time.Minute

// CachedNotice is attached to reports served from the offline cache.
const CachedNotice = "Showing cached weather data."

// Report is the outcome of a lookup: live data, or cached data plus a notice.
type Report struct {
	Query      Locator   `json:"query"`
	Current    Snapshot  `json:"current"`
	Forecast   Forecast  `json:"forecast"`
	FromCache  bool      `json:"fromCache"`
	FetchedAt  time.Time `json:"fetchedAt"`
	Notice     string    `json:"notice,omitempty"`
	Generation uint64    `json:"generation,omitempty"`
	Superseded bool      `json:"superseded,omitempty"`
}

// DashboardItem is one city of the multi-city dashboard.
type DashboardItem struct {
	City   string  `json:"city"`
	Report *Report `json:"report,omitempty"`
	Kind   string  `json:"kind,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Service looks up weather through the client, falls back to the offline
// cache on failure and keeps the latest applied report.
type Service struct {
	mu      sync.RWMutex
	client  Client
	cache   Cache
	history History
	ttl     time.Duration
	now     func() time.Time

	generation atomic.Uint64
	latest     *Report
}

// NewService creates a new Service. cache and history may be nil. If ttl is
// <= 0, DefaultCacheTTL is used.
func NewService(client Client, cache Cache, history History, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		client:  client,
		cache:   cache,
		history: history,
		ttl:     ttl,
		now:     time.Now,
	}
}

// UseClient replaces the client, e.g. after the API key changed.
func (s *Service) UseClient(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c
}

func (s *Service) currentClient() Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Lookup fetches current conditions and forecast for loc. When the fetch fails
// and the offline cache holds a fresh entry for the same city, the cached data
// is returned with a notice instead of the error.
//
// Every call takes a new generation; the result becomes the latest report only
// if no newer Lookup was issued in the meantime. Older results are still
// returned to their caller, marked Superseded.
func (s *Service) Lookup(ctx context.Context, loc Locator, opts Options) (Report, error) {
	gen := s.generation.Add(1)

	report, err := s.lookup(ctx, loc, opts, true)
	if err != nil {
		return Report{}, err
	}
	report.Generation = gen

	s.mu.Lock()
	if gen == s.generation.Load() {
		r := report
		s.latest = &r
	} else {
		report.Superseded = true
		log.Printf("DEBUG: weather: discarding superseded response for %s (generation %d)", loc, gen)
	}
	s.mu.Unlock()

	return report, nil
}

// Generation returns the generation of the most recently issued Lookup.
func (s *Service) Generation() uint64 {
	return s.generation.Load()
}

// Latest returns the most recently applied report.
func (s *Service) Latest() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return Report{}, false
	}
	return *s.latest, true
}

// Refresh fetches city and stores the result in the offline cache without
// touching the latest report or the search history.
func (s *Service) Refresh(ctx context.Context, city string, opts Options) (Snapshot, error) {
	loc := ByCity(city)
	current, forecast, err := s.fetch(ctx, loc, opts)
	if err != nil {
		return Snapshot{}, err
	}
	s.store(loc, current, forecast)
	return current, nil
}

// Dashboard looks up several cities concurrently. Results keep the order of cities.
func (s *Service) Dashboard(ctx context.Context, cities []string, opts Options) []DashboardItem {
	items := make([]DashboardItem, len(cities))

	var wg sync.WaitGroup
	for i, city := range cities {
		i, city := i, city
		wg.Add(1)
		go func() {
			defer wg.Done()

			item := DashboardItem{City: city}
			report, err := s.lookup(ctx, ByCity(city), opts, false)
			if err != nil {
				item.Kind = Kind(err)
				item.Error = UserMessage(err)
			} else {
				item.Report = &report
			}
			items[i] = item
		}()
	}
	wg.Wait()

	return items
}

func (s *Service) lookup(ctx context.Context, loc Locator, opts Options, record bool) (Report, error) {
	if err := loc.Validate(); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrLocationNotFound, err)
	}

	current, forecast, err := s.fetch(ctx, loc, opts)
	if err == nil {
		s.store(loc, current, forecast)
		if record && s.history != nil {
			city := loc.City
			if loc.Coords != nil {
				city = current.Name
			}
			if herr := s.history.Record(city); herr != nil {
				log.Printf("WARN: weather: could not record search for %s: %v", city, herr)
			}
		}
		return Report{
			Query:     loc,
			Current:   current,
			Forecast:  forecast,
			FetchedAt: s.now().UTC(),
		}, nil
	}

	log.Printf("WARN: weather: fetch failed for %s: %v", loc, err)

	key := loc.CacheKey()
	if s.cache == nil || key == "" {
		return Report{}, err
	}
	entry, ok := s.cache.Get(key, s.ttl)
	if !ok {
		return Report{}, err
	}

	log.Printf("INFO: weather: serving cached data for %s (age %s)", key, entry.Age(s.now()).Round(time.Second))
	return Report{
		Query:     loc,
		Current:   entry.Current,
		Forecast:  entry.Forecast,
		FromCache: true,
		FetchedAt: time.UnixMilli(entry.FetchedAt).UTC(),
		Notice:    CachedNotice,
	}, nil
}

// fetch requests current conditions and forecast concurrently. The current
// conditions error wins when both fail.
func (s *Service) fetch(ctx context.Context, loc Locator, opts Options) (Snapshot, Forecast, error) {
	client := s.currentClient()
	if client == nil {
		return Snapshot{}, Forecast{}, ErrMissingCredential
	}

	var (
		wg          sync.WaitGroup
		current     Snapshot
		forecast    Forecast
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = client.FetchCurrent(ctx, loc, opts)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = client.FetchForecast(ctx, loc, opts)
	}()
	wg.Wait()

	if currentErr != nil {
		return Snapshot{}, Forecast{}, currentErr
	}
	if forecastErr != nil {
		return Snapshot{}, Forecast{}, forecastErr
	}
	return current, forecast, nil
}

func (s *Service) store(loc Locator, current Snapshot, forecast Forecast) {
	if s.cache == nil {
		return
	}
	key := loc.CacheKey()
	if key == "" {
		key = common.CityKey(current.Name)
	}
	if key == "" {
		return
	}
	s.cache.Put(key, current, forecast)
}
