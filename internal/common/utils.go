package common

import "strings"

// CityKey normalizes a city name into the key used for cache lookups.
func CityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
