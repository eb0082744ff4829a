package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/cloudcast/internal/cache"
	"github.com/i474232898/cloudcast/internal/preferences"
	"github.com/i474232898/cloudcast/internal/store"
	"github.com/i474232898/cloudcast/internal/weather"
)

var testSecret = []byte("s3cret")

type fakeClient struct {
	mu     sync.Mutex
	err    error
	places map[string]weather.Snapshot
}

func (f *fakeClient) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeClient) resolve(loc weather.Locator) (weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return weather.Snapshot{}, f.err
	}
	if loc.Coords != nil {
		return f.places["paris"], nil
	}
	s, ok := f.places[strings.ToLower(loc.City)]
	if !ok {
		return weather.Snapshot{}, weather.ErrLocationNotFound
	}
	return s, nil
}

func (f *fakeClient) FetchCurrent(_ context.Context, loc weather.Locator, _ weather.Options) (weather.Snapshot, error) {
	return f.resolve(loc)
}

func (f *fakeClient) FetchForecast(_ context.Context, loc weather.Locator, _ weather.Options) (weather.Forecast, error) {
	s, err := f.resolve(loc)
	if err != nil {
		return weather.Forecast{}, err
	}
	fc := weather.Forecast{City: s.Name, Country: s.Country, UTCOffset: s.UTCOffset}
	for i := 0; i < 16; i++ {
		fc.Entries = append(fc.Entries, weather.ForecastEntry{
			Time:        s.ObservedAt + int64(i)*3*3600,
			Temperature: s.Temperature + float64(i%4),
			Condition:   s.Condition,
			Description: s.Description,
			Icon:        s.Icon,
			PrecipProb:  0.2,
		})
	}
	return fc, nil
}

type fakeCredentials struct {
	key string
	err error
}

func (c *fakeCredentials) SetAPIKey(key string) error {
	if c.err != nil {
		return c.err
	}
	c.key = key
	return nil
}

type fixture struct {
	app    *fiber.App
	client *fakeClient
	cache  *cache.Offline
	prefs  *preferences.Store
	creds  *fakeCredentials
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	f.client = &fakeClient{places: map[string]weather.Snapshot{
		"paris": {
			Name: "Paris", Country: "FR", ObservedAt: f.now.Unix(),
			Temperature: 18.4, FeelsLike: 17.9, Humidity: 60, WindSpeed: 3.6, WindDeg: 225,
			ConditionID: 800, Condition: "Clear", Description: "clear sky", Icon: "01d",
			Sunrise: f.now.Add(-6 * time.Hour).Unix(), Sunset: f.now.Add(8 * time.Hour).Unix(),
			UTCOffset: 7200,
		},
		"são paulo": {
			Name: "São Paulo", Country: "BR", ObservedAt: f.now.Unix(),
			Temperature: 24, ConditionID: 500, Condition: "Rain", Description: "light rain",
			UTCOffset: -10800,
		},
	}}

	kv := store.NewMemoryStore()
	clock := func() time.Time { return f.now }
	f.cache = cache.NewOffline(kv, cache.WithClock(clock))
	history := store.NewHistory(kv, 10)
	svc := weather.NewService(f.client, f.cache, history, weather.DefaultCacheTTL)
	f.prefs = preferences.NewStore(kv, nil)
	f.creds = &fakeCredentials{}

	f.app = NewApp(0)
	RegisterRoutes(f.app, Deps{
		Weather:       svc,
		Cache:         f.cache,
		Preferences:   f.prefs,
		History:       history,
		Flags:         kv,
		Credentials:   f.creds,
		SessionSecret: testSecret,
		CacheTTL:      weather.DefaultCacheTTL,
		Now:           clock,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string, headers ...string) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestWeatherByCity(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/weather?city=Paris", "")
	require.Equal(t, http.StatusOK, code, body)

	w := body["weather"].(map[string]any)
	assert.Equal(t, "Paris", w["city"])
	assert.EqualValues(t, 18, w["temperature"])
	assert.Equal(t, "°C", w["unit"])
	assert.Equal(t, false, w["fromCache"])
	assert.EqualValues(t, 1, body["generation"])
}

func TestWeatherUnitOverride(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/weather?city=Paris&unit=fahrenheit", "")
	require.Equal(t, http.StatusOK, code)
	w := body["weather"].(map[string]any)
	assert.EqualValues(t, 65, w["temperature"])
	assert.Equal(t, "°F", w["unit"])
}

func TestWeatherByCoordinates(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/weather?lat=48.85&lon=2.35", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Paris", body["weather"].(map[string]any)["city"])
}

func TestWeatherQueryValidation(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{
		"/api/v1/weather",
		"/api/v1/weather?lat=10",
		"/api/v1/weather?lat=abc&lon=2",
		"/api/v1/weather?lat=91&lon=2",
		"/api/v1/weather?city=Paris&lat=1&lon=2",
		"/api/v1/weather?city=Paris&unit=kelvin",
		"/api/v1/weather?city=Paris&lang=tlh",
	} {
		code, body := f.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.Equal(t, true, body["error"], target)
		assert.Equal(t, "InvalidRequest", body["kind"], target)
	}
}

func TestWeatherErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{weather.ErrMissingCredential, http.StatusPreconditionFailed, "MissingCredential"},
		{weather.ErrInvalidCredential, http.StatusUnauthorized, "InvalidCredential"},
		{weather.ErrServiceUnavailable, http.StatusServiceUnavailable, "ServiceUnavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			f := newFixture(t)
			f.client.fail(tc.err)

			code, body := f.do(t, http.MethodGet, "/api/v1/weather?city=Paris", "")
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.kind, body["kind"])
			assert.Equal(t, weather.UserMessage(tc.err), body["message"])
		})
	}
}

func TestWeatherNotFound(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/weather?city=Atlantis", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "LocationNotFound", body["kind"])
}

func TestWeatherFallsBackToCache(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/v1/weather?city=Paris", "")
	require.Equal(t, http.StatusOK, code)

	f.client.fail(weather.ErrServiceUnavailable)
	f.now = f.now.Add(10 * time.Minute)

	code, body := f.do(t, http.MethodGet, "/api/v1/weather?city=paris", "")
	require.Equal(t, http.StatusOK, code)
	w := body["weather"].(map[string]any)
	assert.Equal(t, true, w["fromCache"])
	assert.Equal(t, weather.CachedNotice, w["notice"])
}

func TestLatest(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/v1/weather/latest", "")
	assert.Equal(t, http.StatusNotFound, code)

	f.do(t, http.MethodGet, "/api/v1/weather?city=Paris", "")
	code, body := f.do(t, http.MethodGet, "/api/v1/weather/latest", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Paris", body["weather"].(map[string]any)["city"])
}

func TestDaily(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/weather/daily?city=Paris", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Paris", body["city"])
	days := body["days"].([]any)
	assert.NotEmpty(t, days)
	assert.LessOrEqual(t, len(days), weather.MaxForecastDays)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.prefs.AddFavorite(ctx, "Paris")
	require.NoError(t, err)
	_, err = f.prefs.AddFavorite(ctx, "Atlantis")
	require.NoError(t, err)

	code, body := f.do(t, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, code)

	cities := body["cities"].([]any)
	require.Len(t, cities, 2)
	first := cities[0].(map[string]any)
	assert.Equal(t, "Paris", first["city"])
	assert.NotNil(t, first["weather"])
	second := cities[1].(map[string]any)
	assert.Equal(t, "Atlantis", second["city"])
	assert.Equal(t, "LocationNotFound", second["kind"])
}

func TestPreferences(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/preferences", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "celsius", body["temperature_unit"])

	code, body = f.do(t, http.MethodPatch, "/api/v1/preferences",
		`{"temperature_unit":"fahrenheit","notifications_enabled":true}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "fahrenheit", body["temperature_unit"])
	assert.Equal(t, true, body["notifications_enabled"])
	assert.Equal(t, "system", body["theme_preference"])

	code, body = f.do(t, http.MethodPatch, "/api/v1/preferences", `{"temperature_unit":"kelvin"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "InvalidRequest", body["kind"])

	code, _ = f.do(t, http.MethodPatch, "/api/v1/preferences", `{"colour":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, weather.Fahrenheit, f.prefs.Current().TemperatureUnit)
}

func TestFavoritesRoutes(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/v1/preferences/favorites/S%C3%A3o%20Paulo", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"São Paulo"}, body["favorite_cities"])

	code, body = f.do(t, http.MethodPost, "/api/v1/preferences/favorites/S%C3%A3o%20Paulo", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"São Paulo"}, body["favorite_cities"])

	code, body = f.do(t, http.MethodDelete, "/api/v1/preferences/favorites/S%C3%A3o%20Paulo", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["favorite_cities"])
}

func TestSession(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()

	code, _ := f.do(t, http.MethodPost, "/api/v1/session", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := f.do(t, http.MethodPost, "/api/v1/session", "", fiber.HeaderAuthorization, "Bearer nope")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PermissionDenied", body["kind"])

	token, err := preferences.IssueSessionToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	code, body = f.do(t, http.MethodPost, "/api/v1/session", "", fiber.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, user.String(), body["userId"])

	id, ok := f.prefs.Session()
	assert.True(t, ok)
	assert.Equal(t, user, id)

	code, _ = f.do(t, http.MethodDelete, "/api/v1/session", "")
	assert.Equal(t, http.StatusNoContent, code)
	_, ok = f.prefs.Session()
	assert.False(t, ok)
}

func TestCredentials(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPut, "/api/v1/credentials", `{"apiKey":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPut, "/api/v1/credentials", `{"apiKey":"abc123"}`)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, "abc123", f.creds.key)

	f.creds.err = weather.ErrStorageUnavailable
	code, body := f.do(t, http.MethodPut, "/api/v1/credentials", `{"apiKey":"def"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "StorageUnavailable", body["kind"])
}

func TestCacheAndForeground(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/v1/weather?city=Paris", "")

	code, body := f.do(t, http.MethodGet, "/api/v1/cache", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"paris"}, body["cities"])
	assert.EqualValues(t, cache.DefaultCapacity, body["capacity"])

	code, body = f.do(t, http.MethodPost, "/api/v1/foreground", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["removed"])

	f.now = f.now.Add(31 * time.Minute)
	code, body = f.do(t, http.MethodPost, "/api/v1/foreground", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["removed"])
	assert.EqualValues(t, 0, body["remaining"])
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/v1/weather?city=Paris", "")
	f.do(t, http.MethodGet, "/api/v1/weather?city=S%C3%A3o%20Paulo", "")
	f.do(t, http.MethodGet, "/api/v1/weather?city=Atlantis", "")

	code, body := f.do(t, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"São Paulo", "Paris"}, body["searches"])
	assert.Equal(t, "São Paulo", body["lastCity"])
}

func TestFlags(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/flags/install-banner", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["dismissed"])

	code, _ = f.do(t, http.MethodPost, "/api/v1/flags/install-banner", "")
	require.Equal(t, http.StatusOK, code)

	_, body = f.do(t, http.MethodGet, "/api/v1/flags/install-banner", "")
	assert.Equal(t, true, body["dismissed"])
}
