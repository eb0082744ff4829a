package weather

import (
	"fmt"
	"strconv"
	"time"

	"github.com/i474232898/cloudcast/internal/common"
)

// TemperatureUnit is the unit temperatures are displayed in. Data is always
// fetched and stored in Celsius.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

// Category is the closed set of display categories used for background theming.
type Category string

const (
	CategoryClear  Category = "clear"
	CategoryClouds Category = "clouds"
	CategoryRain   Category = "rain"
	CategoryStorm  Category = "storm"
	CategorySnow   Category = "snow"
	CategoryMist   Category = "mist"
	CategoryNight  Category = "night"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Locator identifies what to look up: either a free-text city name or a
// latitude/longitude pair. Exactly one of City or Coords is set.
type Locator struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// ByCity returns a locator for a city name.
func ByCity(city string) Locator {
	return Locator{City: city}
}

// ByCoords returns a locator for a coordinate pair.
func ByCoords(lat, lon float64) Locator {
	return Locator{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// CacheKey returns the offline cache key for a city locator and "" for
// coordinate locators.
func (l Locator) CacheKey() string {
	if l.Coords != nil {
		return ""
	}
	return common.CityKey(l.City)
}

func (l Locator) String() string {
	if l.Coords != nil {
		return strconv.FormatFloat(l.Coords.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(l.Coords.Lon, 'f', 4, 64)
	}
	return l.City
}

// Validate checks that the locator names a place.
func (l Locator) Validate() error {
	if l.Coords != nil {
		if l.Coords.Lat < -90 || l.Coords.Lat > 90 || l.Coords.Lon < -180 || l.Coords.Lon > 180 {
			return fmt.Errorf("coordinates out of range: %s", l)
		}
		return nil
	}
	if common.CityKey(l.City) == "" {
		return fmt.Errorf("city name is required")
	}
	return nil
}

// Snapshot is one city's conditions at fetch time.
type Snapshot struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Coords      Coordinates `json:"coord"`
	ObservedAt  int64       `json:"dt"` // epoch seconds
	Temperature float64     `json:"tempC"`
	FeelsLike   float64     `json:"feelsLikeC"`
	Humidity    int         `json:"humidity"`
	Pressure    int         `json:"pressureHpa"`
	WindSpeed   float64     `json:"windSpeed"` // m/s
	WindDeg     int         `json:"windDeg"`
	WindGust    float64     `json:"windGust,omitempty"`
	Visibility  int         `json:"visibility"` // metres
	ConditionID int         `json:"conditionId"`
	Condition   string      `json:"condition"` // raw name, e.g. "Rain"
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Sunrise     int64       `json:"sunrise"`
	Sunset      int64       `json:"sunset"`
	UTCOffset   int         `json:"timezone"` // seconds east of UTC
}

// ForecastEntry is one 3-hour step of a Forecast.
type ForecastEntry struct {
	Time        int64   `json:"dt"` // epoch seconds
	Temperature float64 `json:"tempC"`
	FeelsLike   float64 `json:"feelsLikeC"`
	TempMin     float64 `json:"tempMinC"`
	TempMax     float64 `json:"tempMaxC"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	ConditionID int     `json:"conditionId"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	PrecipProb  float64 `json:"pop"` // 0..1
}

// Forecast is an ordered sequence of 3-hour entries, usually ~40 covering 5 days.
// Entries are expected to be ordered by Time ascending.
type Forecast struct {
	City      string          `json:"city"`
	Country   string          `json:"country"`
	UTCOffset int             `json:"timezone"`
	Entries   []ForecastEntry `json:"list"`
}

// CacheEntry is the offline cache's record for one city.
type CacheEntry struct {
	CityKey   string   `json:"city"`
	Current   Snapshot `json:"weather"`
	Forecast  Forecast `json:"forecast"`
	FetchedAt int64    `json:"timestamp"` // epoch milliseconds
}

// Age returns how long ago the entry was fetched, relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.FetchedAt) * time.Millisecond
}

// Options carries per-request preferences for the weather API.
type Options struct {
	Language string
}
