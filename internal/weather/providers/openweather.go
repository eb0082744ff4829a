package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cloudcast/internal/weather"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeather implements weather.Client for OpenWeatherMap.
type OpenWeather struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeather creates a client. An empty baseURL selects DefaultBaseURL.
// The key may be empty; fetches then fail with weather.ErrMissingCredential.
func NewOpenWeather(client *http.Client, baseURL, apiKey string) *OpenWeather {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &OpenWeather{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newBreaker("openweather"),
	}
}

// WithAPIKey returns a copy of the client using key. The copy shares the
// HTTP client and circuit breaker.
func (p *OpenWeather) WithAPIKey(key string) *OpenWeather {
	cp := *p
	cp.apiKey = key
	return &cp
}

// HasAPIKey reports whether a key is configured.
func (p *OpenWeather) HasAPIKey() bool {
	return p.apiKey != ""
}

func (p *OpenWeather) FetchCurrent(ctx context.Context, loc weather.Locator, opts weather.Options) (weather.Snapshot, error) {
	u, err := p.endpoint("/weather", loc, opts)
	if err != nil {
		return weather.Snapshot{}, err
	}

	var payload currentPayload
	if err := getJSON(ctx, p.client, p.circuit, u, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	return payload.snapshot(), nil
}

func (p *OpenWeather) FetchForecast(ctx context.Context, loc weather.Locator, opts weather.Options) (weather.Forecast, error) {
	u, err := p.endpoint("/forecast", loc, opts)
	if err != nil {
		return weather.Forecast{}, err
	}

	var payload forecastPayload
	if err := getJSON(ctx, p.client, p.circuit, u, &payload); err != nil {
		return weather.Forecast{}, err
	}

	return payload.forecast(), nil
}

func (p *OpenWeather) endpoint(path string, loc weather.Locator, opts weather.Options) (string, error) {
	if p.apiKey == "" {
		return "", weather.ErrMissingCredential
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	if loc.Coords != nil {
		values.Set("lat", strconv.FormatFloat(loc.Coords.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(loc.Coords.Lon, 'f', -1, 64))
	} else {
		values.Set("q", strings.TrimSpace(loc.City))
	}
	if opts.Language != "" {
		values.Set("lang", opts.Language)
	}

	return fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode()), nil
}

type conditionPayload struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainPayload struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type windPayload struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust"`
}

type currentPayload struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather    []conditionPayload `json:"weather"`
	Main       mainPayload        `json:"main"`
	Visibility int                `json:"visibility"`
	Wind       windPayload        `json:"wind"`
	Dt         int64              `json:"dt"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

func (c currentPayload) snapshot() weather.Snapshot {
	s := weather.Snapshot{
		Name:        c.Name,
		Country:     c.Sys.Country,
		Coords:      weather.Coordinates{Lat: c.Coord.Lat, Lon: c.Coord.Lon},
		ObservedAt:  c.Dt,
		Temperature: c.Main.Temp,
		FeelsLike:   c.Main.FeelsLike,
		Humidity:    c.Main.Humidity,
		Pressure:    c.Main.Pressure,
		WindSpeed:   c.Wind.Speed,
		WindDeg:     c.Wind.Deg,
		WindGust:    c.Wind.Gust,
		Visibility:  c.Visibility,
		Sunrise:     c.Sys.Sunrise,
		Sunset:      c.Sys.Sunset,
		UTCOffset:   c.Timezone,
	}
	if len(c.Weather) > 0 {
		s.ConditionID = c.Weather[0].ID
		s.Condition = c.Weather[0].Main
		s.Description = c.Weather[0].Description
		s.Icon = c.Weather[0].Icon
	}
	return s
}

type forecastPayload struct {
	List []struct {
		Dt      int64              `json:"dt"`
		Main    mainPayload        `json:"main"`
		Weather []conditionPayload `json:"weather"`
		Wind    windPayload        `json:"wind"`
		Pop     float64            `json:"pop"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

func (f forecastPayload) forecast() weather.Forecast {
	out := weather.Forecast{
		City:      f.City.Name,
		Country:   f.City.Country,
		UTCOffset: f.City.Timezone,
		Entries:   make([]weather.ForecastEntry, 0, len(f.List)),
	}
	for _, item := range f.List {
		e := weather.ForecastEntry{
			Time:        item.Dt,
			Temperature: item.Main.Temp,
			FeelsLike:   item.Main.FeelsLike,
			TempMin:     item.Main.TempMin,
			TempMax:     item.Main.TempMax,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			PrecipProb:  item.Pop,
		}
		if len(item.Weather) > 0 {
			e.ConditionID = item.Weather[0].ID
			e.Condition = item.Weather[0].Main
			e.Description = item.Weather[0].Description
			e.Icon = item.Weather[0].Icon
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}
