package store

import "errors"

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("no value for key")
)

// Keys used by the application. They mirror the keys the dashboard used in
// browser local storage so exported data stays recognisable.
const (
	KeyAPIKey          = "weatherApiKey"
	KeyLastCity        = "lastSearchedCity"
	KeyTemperatureUnit = "temperatureUnit"
	KeyWeatherCache    = "weather_cache"
	KeySearchHistory   = "searchHistory"
	KeyPreferences     = "user_preferences"

	dismissedPrefix = "dismissed:"
)

// KV is string-keyed, string-valued durable storage.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Dismiss records that the user dismissed a one-off UI element (banner, tip).
func Dismiss(kv KV, flag string) error {
	return kv.Set(dismissedPrefix+flag, "true")
}

// IsDismissed reports whether flag was dismissed. Read errors count as not dismissed.
func IsDismissed(kv KV, flag string) bool {
	v, err := kv.Get(dismissedPrefix + flag)
	return err == nil && v == "true"
}
