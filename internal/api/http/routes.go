package httpapi

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/cloudcast/internal/cache"
	"github.com/i474232898/cloudcast/internal/preferences"
	"github.com/i474232898/cloudcast/internal/store"
	"github.com/i474232898/cloudcast/internal/weather"
)

var validate = validator.New()

// CredentialStore persists the weather API key and activates it.
type CredentialStore interface {
	SetAPIKey(key string) error
}

// Deps are the components the HTTP handlers operate on.
type Deps struct {
	Weather       *weather.Service
	Cache         *cache.Offline
	Preferences   *preferences.Store
	History       *store.History
	Flags         store.KV
	Credentials   CredentialStore
	SessionSecret []byte
	CacheTTL      time.Duration
	Now           func() time.Time
}

type handlers struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = weather.DefaultCacheTTL
	}
	h := &handlers{Deps: deps}

	v1 := app.Group("/api/v1")

	v1.Get("/weather", h.weather)
	v1.Get("/weather/latest", h.latest)
	v1.Get("/weather/daily", h.daily)
	v1.Get("/dashboard", h.dashboard)

	v1.Get("/preferences", h.getPreferences)
	v1.Patch("/preferences", h.patchPreferences)
	v1.Post("/preferences/favorites/:city", h.addFavorite)
	v1.Delete("/preferences/favorites/:city", h.removeFavorite)

	v1.Post("/session", h.signIn)
	v1.Delete("/session", h.signOut)
	v1.Put("/credentials", h.setCredentials)

	v1.Get("/cache", h.cacheEntries)
	v1.Post("/foreground", h.foreground)
	v1.Get("/history", h.history)

	v1.Get("/flags/:name", h.getFlag)
	v1.Post("/flags/:name", h.dismissFlag)
}

func (h *handlers) weather(c *fiber.Ctx) error {
	q, err := parseWeatherQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	prefs := h.Preferences.Current()

	report, err := h.Weather.Lookup(c.UserContext(), q.locator(), q.options(prefs))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"generation": report.Generation,
		"superseded": report.Superseded,
		"weather":    weather.BuildView(report, q.unit(prefs), h.Now()),
	})
}

func (h *handlers) latest(c *fiber.Ctx) error {
	report, ok := h.Weather.Latest()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no weather has been looked up yet")
	}
	unit := h.Preferences.Current().TemperatureUnit
	return c.JSON(fiber.Map{
		"generation": report.Generation,
		"weather":    weather.BuildView(report, unit, h.Now()),
	})
}

func (h *handlers) daily(c *fiber.Ctx) error {
	q, err := parseWeatherQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	prefs := h.Preferences.Current()

	report, err := h.Weather.Lookup(c.UserContext(), q.locator(), q.options(prefs))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"city":      report.Forecast.City,
		"fromCache": report.FromCache,
		"notice":    report.Notice,
		"days":      weather.DailySummaries(report.Forecast),
	})
}

type dashboardEntry struct {
	City    string        `json:"city"`
	Weather *weather.View `json:"weather,omitempty"`
	Kind    string        `json:"kind,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func (h *handlers) dashboard(c *fiber.Ctx) error {
	prefs := h.Preferences.Current()
	now := h.Now()

	items := h.Weather.Dashboard(c.UserContext(), prefs.FavoriteCities, weather.Options{Language: prefs.Language})
	entries := make([]dashboardEntry, 0, len(items))
	for _, it := range items {
		e := dashboardEntry{City: it.City, Kind: it.Kind, Error: it.Error}
		if it.Report != nil {
			v := weather.BuildView(*it.Report, prefs.TemperatureUnit, now)
			e.Weather = &v
		}
		entries = append(entries, e)
	}

	return c.JSON(fiber.Map{"cities": entries})
}

func (h *handlers) getPreferences(c *fiber.Ctx) error {
	return c.JSON(h.Preferences.Current())
}

func (h *handlers) patchPreferences(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	patch, err := preferences.DecodePatch(body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	prefs, err := h.Preferences.Update(c.UserContext(), patch)
	if err != nil {
		return err
	}
	return c.JSON(prefs)
}

func (h *handlers) addFavorite(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}
	prefs, err := h.Preferences.AddFavorite(c.UserContext(), city)
	if err != nil {
		return err
	}
	return c.JSON(prefs)
}

func (h *handlers) removeFavorite(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}
	prefs, err := h.Preferences.RemoveFavorite(c.UserContext(), city)
	if err != nil {
		return err
	}
	return c.JSON(prefs)
}

func (h *handlers) signIn(c *fiber.Ctx) error {
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	userID, err := preferences.ParseSessionToken(strings.TrimSpace(token), h.SessionSecret)
	if err != nil {
		return err
	}

	prefs, err := h.Preferences.SignIn(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"userId":      userID,
		"preferences": prefs,
	})
}

func (h *handlers) signOut(c *fiber.Ctx) error {
	h.Preferences.SignOut()
	return c.SendStatus(fiber.StatusNoContent)
}

type credentialsBody struct {
	APIKey string `json:"apiKey" validate:"required"`
}

func (h *handlers) setCredentials(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	body.APIKey = strings.TrimSpace(body.APIKey)
	if err := validate.Struct(body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.Credentials.SetAPIKey(body.APIKey); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) cacheEntries(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"cities":   h.Cache.Cities(),
		"ttl":      h.CacheTTL.String(),
		"capacity": h.Cache.Capacity(),
	})
}

func (h *handlers) foreground(c *fiber.Ctx) error {
	removed := h.Cache.SweepExpired(h.CacheTTL)
	return c.JSON(fiber.Map{
		"removed":   removed,
		"remaining": h.Cache.Len(),
	})
}

func (h *handlers) history(c *fiber.Ctx) error {
	last, _ := h.History.LastCity()
	return c.JSON(fiber.Map{
		"searches": h.History.List(),
		"lastCity": last,
	})
}

func (h *handlers) getFlag(c *fiber.Ctx) error {
	name := utils.CopyString(c.Params("name"))
	return c.JSON(fiber.Map{
		"name":      name,
		"dismissed": store.IsDismissed(h.Flags, name),
	})
}

func (h *handlers) dismissFlag(c *fiber.Ctx) error {
	name := utils.CopyString(c.Params("name"))
	if err := store.Dismiss(h.Flags, name); err != nil {
		return errors.Join(weather.ErrStorageUnavailable, err)
	}
	return c.JSON(fiber.Map{
		"name":      name,
		"dismissed": true,
	})
}

// weatherQuery holds query parameters identifying a place by name or
// coordinates, plus display overrides.
type weatherQuery struct {
	City   string `validate:"omitempty,max=100"`
	Coords *coordsQuery
	Lang   string `validate:"omitempty,oneof=en es fr de it pt ru zh"`
	Unit   string `validate:"omitempty,oneof=celsius fahrenheit"`
}

type coordsQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	q := weatherQuery{
		City: strings.TrimSpace(utils.CopyString(c.Query("city"))),
		Lang: utils.CopyString(c.Query("lang")),
		Unit: utils.CopyString(c.Query("unit")),
	}

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr != "" || lonStr != "" {
		if latStr == "" || lonStr == "" {
			return q, errors.New("lat and lon must be given together")
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return q, errors.New("invalid lat")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return q, errors.New("invalid lon")
		}
		q.Coords = &coordsQuery{Lat: lat, Lon: lon}
	}

	switch {
	case q.City == "" && q.Coords == nil:
		return q, errors.New("city or lat and lon query parameters are required")
	case q.City != "" && q.Coords != nil:
		return q, errors.New("use either city or lat and lon, not both")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (q weatherQuery) locator() weather.Locator {
	if q.Coords != nil {
		return weather.ByCoords(q.Coords.Lat, q.Coords.Lon)
	}
	return weather.ByCity(q.City)
}

func (q weatherQuery) options(p preferences.Preferences) weather.Options {
	if q.Lang != "" {
		return weather.Options{Language: q.Lang}
	}
	return weather.Options{Language: p.Language}
}

func (q weatherQuery) unit(p preferences.Preferences) weather.TemperatureUnit {
	if q.Unit != "" {
		return weather.TemperatureUnit(q.Unit)
	}
	return p.TemperatureUnit
}

func cityParam(c *fiber.Ctx) (string, error) {
	city, err := url.PathUnescape(utils.CopyString(c.Params("city")))
	if err != nil || strings.TrimSpace(city) == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid city")
	}
	return strings.TrimSpace(city), nil
}
