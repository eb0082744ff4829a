package weather

import (
	"math"
	"strings"
	"time"
)

// ConvertTemperature converts a Celsius reading to unit, rounded to the nearest integer.
func ConvertTemperature(celsius float64, unit TemperatureUnit) int {
	if unit == Fahrenheit {
		return round(celsius*9/5 + 32)
	}
	return round(celsius)
}

// round rounds half-way values up (-0.5 becomes 0), matching the dashboard's
// display rounding.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// TemperatureSymbol returns the display symbol for unit.
func TemperatureSymbol(unit TemperatureUnit) string {
	if unit == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// IsDaytime reports whether now lies within [sunrise, sunset], all epoch
// seconds shifted by the location's UTC offset. Both bounds are inclusive.
func IsDaytime(now, sunrise, sunset, utcOffset int64) bool {
	local := now + utcOffset
	return local >= sunrise+utcOffset && local <= sunset+utcOffset
}

// ClassifyCondition maps a raw condition name to a display category. At night
// every condition collapses into CategoryNight.
func ClassifyCondition(raw string, isDay bool) Category {
	if !isDay {
		return CategoryNight
	}

	switch strings.ToLower(raw) {
	case "clear":
		return CategoryClear
	case "clouds":
		return CategoryClouds
	case "rain", "drizzle":
		return CategoryRain
	case "thunderstorm":
		return CategoryStorm
	case "snow":
		return CategorySnow
	case "mist", "fog", "haze", "dust", "sand", "ash", "squall", "tornado":
		return CategoryMist
	default:
		return CategoryClear
	}
}

// FormatLocalTime renders now as wall-clock time at the given UTC offset,
// whatever the host timezone is.
func FormatLocalTime(now time.Time, utcOffset int) string {
	return now.In(time.FixedZone("", utcOffset)).Format("03:04 PM")
}

// FormatClock renders an epoch timestamp (e.g. sunrise) as wall-clock time at
// the given UTC offset.
func FormatClock(epoch int64, utcOffset int) string {
	return FormatLocalTime(time.Unix(epoch, 0), utcOffset)
}

// WindSpeed converts m/s into the unit that goes with the temperature unit:
// km/h for Celsius, mph for Fahrenheit.
func WindSpeed(ms float64, unit TemperatureUnit) (int, string) {
	if unit == Fahrenheit {
		return round(ms * 2.237), "mph"
	}
	return round(ms * 3.6), "km/h"
}

var compass = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection returns the 16-point compass direction for degrees.
func WindDirection(degrees int) string {
	i := int(math.Round(float64(degrees)/22.5)) % len(compass)
	if i < 0 {
		i += len(compass)
	}
	return compass[i]
}

// CapitalizeWords upper-cases the first letter of every word and lower-cases the rest.
func CapitalizeWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}
