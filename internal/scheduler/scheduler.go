package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/cloudcast/internal/preferences"
	"github.com/i474232898/cloudcast/internal/weather"
)

const refreshTimeout = 30 * time.Second

// Refresher fetches and caches current weather for a city.
type Refresher interface {
	Refresh(ctx context.Context, city string, opts weather.Options) (weather.Snapshot, error)
}

// PreferencesSource supplies the favorite cities and notification setting.
type PreferencesSource interface {
	Current() preferences.Preferences
}

// Notifier delivers extreme weather alerts.
type Notifier interface {
	Notify(a weather.Alert)
}

// LogNotifier writes alerts to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(a weather.Alert) {
	log.Printf("WARN: alert: %s: %s", a.Title, a.Message)
}

// Scheduler periodically refreshes the user's favorite cities so the
// offline cache stays warm.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	prefs     PreferencesSource
	notifier  Notifier
	interval  time.Duration
}

// New creates a new Scheduler. notifier may be nil.
func New(service Refresher, prefs PreferencesSource, notifier Notifier, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		prefs:     prefs,
		notifier:  notifier,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every favorite city concurrently and returns the number
// of successful refreshes.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	prefs := s.prefs.Current()
	if len(prefs.FavoriteCities) == 0 {
		log.Println("DEBUG: scheduler: no favorite cities; nothing to refresh")
		return 0
	}
	log.Printf("INFO: scheduler: refreshing %d favorite cities", len(prefs.FavoriteCities))

	opts := weather.Options{Language: prefs.Language}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, city := range prefs.FavoriteCities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
			defer cancel()

			snap, err := s.service.Refresh(ctx, city, opts)
			if err != nil {
				log.Printf("WARN: scheduler: refresh failed for %s: %v", city, err)
				return
			}

			mu.Lock()
			ok++
			mu.Unlock()

			if !prefs.NotificationsEnabled || s.notifier == nil {
				return
			}
			if alert, extreme := weather.ExtremeAlert(snap); extreme {
				s.notifier.Notify(alert)
			}
		}()
	}
	wg.Wait()

	log.Printf("INFO: scheduler: refreshed %d/%d favorite cities", ok, len(prefs.FavoriteCities))
	return ok
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
