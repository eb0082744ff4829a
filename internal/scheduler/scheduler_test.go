package scheduler

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/cloudcast/internal/preferences"
	"github.com/i474232898/cloudcast/internal/weather"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls []string
	langs []string
	snaps map[string]weather.Snapshot
}

func (f *fakeRefresher) Refresh(_ context.Context, city string, opts weather.Options) (weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, city)
	f.langs = append(f.langs, opts.Language)
	snap, ok := f.snaps[city]
	if !ok {
		return weather.Snapshot{}, weather.ErrServiceUnavailable
	}
	return snap, nil
}

func (f *fakeRefresher) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	sort.Strings(out)
	return out
}

type staticPrefs preferences.Preferences

func (p staticPrefs) Current() preferences.Preferences { return preferences.Preferences(p) }

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []weather.Alert
}

func (n *recordingNotifier) Notify(a weather.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
}

func favorites(notify bool, cities ...string) staticPrefs {
	p := preferences.Defaults()
	p.FavoriteCities = cities
	p.NotificationsEnabled = notify
	p.Language = "fr"
	return staticPrefs(p)
}

func testSnaps() map[string]weather.Snapshot {
	return map[string]weather.Snapshot{
		"Paris":  {Name: "Paris", Temperature: 18, ConditionID: 800, Description: "clear sky"},
		"Dubai":  {Name: "Dubai", Temperature: 41, ConditionID: 800, Description: "clear sky"},
		"Denver": {Name: "Denver", Temperature: -2, ConditionID: 601, Description: "snow"},
	}
}

func TestRunOnceRefreshesFavorites(t *testing.T) {
	ref := &fakeRefresher{snaps: testSnaps()}
	s := New(ref, favorites(false, "Paris", "Dubai", "Atlantis"), nil, time.Minute)

	ok := s.RunOnce(context.Background())

	assert.Equal(t, 2, ok)
	assert.Equal(t, []string{"Atlantis", "Dubai", "Paris"}, ref.called())
	assert.Equal(t, []string{"fr", "fr", "fr"}, ref.langs)
}

func TestRunOnceNotifiesExtremeWeather(t *testing.T) {
	ref := &fakeRefresher{snaps: testSnaps()}
	n := &recordingNotifier{}
	s := New(ref, favorites(true, "Paris", "Dubai", "Denver"), n, time.Minute)

	s.RunOnce(context.Background())

	var cities []string
	for _, a := range n.alerts {
		cities = append(cities, a.City)
	}
	sort.Strings(cities)
	assert.Equal(t, []string{"Denver", "Dubai"}, cities)
}

func TestRunOnceSilentWhenNotificationsOff(t *testing.T) {
	ref := &fakeRefresher{snaps: testSnaps()}
	n := &recordingNotifier{}
	s := New(ref, favorites(false, "Dubai"), n, time.Minute)

	s.RunOnce(context.Background())
	assert.Empty(t, n.alerts)
}

func TestRunOnceNoFavorites(t *testing.T) {
	ref := &fakeRefresher{}
	s := New(ref, favorites(true), nil, time.Minute)

	assert.Zero(t, s.RunOnce(context.Background()))
	assert.Empty(t, ref.called())
}

func TestStartStop(t *testing.T) {
	s := New(&fakeRefresher{}, favorites(false), LogNotifier{}, time.Minute)
	require.NoError(t, s.Start())
	s.Stop()
}
