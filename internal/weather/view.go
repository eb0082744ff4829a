package weather

import (
	"fmt"
	"time"
)

// View is the presentation model the dashboard renders for a report.
type View struct {
	City        string       `json:"city"`
	Country     string       `json:"country"`
	Unit        string       `json:"unit"`
	Temperature int          `json:"temperature"`
	FeelsLike   int          `json:"feelsLike"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Category    Category     `json:"category"`
	IsDay       bool         `json:"isDay"`
	LocalTime   string       `json:"localTime"`
	Sunrise     string       `json:"sunrise"`
	Sunset      string       `json:"sunset"`
	Humidity    int          `json:"humidity"`
	Wind        string       `json:"wind"`
	Hourly      []HourView   `json:"hourly"`
	Daily       []DaySummary `json:"daily"`
	FromCache   bool         `json:"fromCache"`
	FetchedAt   time.Time    `json:"fetchedAt"`
	Notice      string       `json:"notice,omitempty"`
	Alert       *Alert       `json:"alert,omitempty"`
}

// HourView is one entry of the next-24-hours strip.
type HourView struct {
	Time        string  `json:"time"`
	Temperature int     `json:"temperature"`
	Icon        string  `json:"icon"`
	PrecipProb  int     `json:"pop"` // percent
	WindSpeed   float64 `json:"windSpeed"`
}

// hourlySteps is 24 hours of 3-hour forecast steps.
const hourlySteps = 8

// BuildView converts r into display units as seen at now.
func BuildView(r Report, unit TemperatureUnit, now time.Time) View {
	c := r.Current
	isDay := IsDaytime(now.Unix(), c.Sunrise, c.Sunset, int64(c.UTCOffset))
	speed, speedUnit := WindSpeed(c.WindSpeed, unit)

	v := View{
		City:        c.Name,
		Country:     c.Country,
		Unit:        TemperatureSymbol(unit),
		Temperature: ConvertTemperature(c.Temperature, unit),
		FeelsLike:   ConvertTemperature(c.FeelsLike, unit),
		Description: CapitalizeWords(c.Description),
		Icon:        c.Icon,
		Category:    ClassifyCondition(c.Condition, isDay),
		IsDay:       isDay,
		LocalTime:   FormatLocalTime(now, c.UTCOffset),
		Sunrise:     FormatClock(c.Sunrise, c.UTCOffset),
		Sunset:      FormatClock(c.Sunset, c.UTCOffset),
		Humidity:    c.Humidity,
		Wind:        formatWind(speed, speedUnit, c.WindDeg),
		Daily:       DailySummaries(r.Forecast),
		FromCache:   r.FromCache,
		FetchedAt:   r.FetchedAt,
		Notice:      r.Notice,
	}

	for i, e := range r.Forecast.Entries {
		if i >= hourlySteps {
			break
		}
		v.Hourly = append(v.Hourly, HourView{
			Time:        FormatClock(e.Time, r.Forecast.UTCOffset),
			Temperature: ConvertTemperature(e.Temperature, unit),
			Icon:        e.Icon,
			PrecipProb:  round(e.PrecipProb * 100),
			WindSpeed:   e.WindSpeed,
		})
	}

	if alert, ok := ExtremeAlert(c); ok {
		v.Alert = &alert
	}
	return v
}

func formatWind(speed int, unit string, deg int) string {
	return fmt.Sprintf("%d %s %s", speed, unit, WindDirection(deg))
}
