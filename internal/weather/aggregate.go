package weather

import (
	"sort"
	"time"
)

// MaxForecastDays is the number of days a forecast covers.
const MaxForecastDays = 5

// DaySummary aggregates the 3-hour forecast entries that fall on one local day.
type DaySummary struct {
	Date        string  `json:"date"` // YYYY-MM-DD in the city's timezone
	TempMin     float64 `json:"tempMinC"`
	TempMax     float64 `json:"tempMaxC"`
	TempMean    float64 `json:"tempMeanC"`
	Humidity    float64 `json:"humidity"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	PrecipProb  float64 `json:"pop"`
	Entries     int     `json:"entries"`
}

// DailySummaries groups forecast entries by local date and aggregates each day.
// Temperatures and humidity are averaged; the condition is selected by majority
// (earliest seen wins a tie). At most MaxForecastDays days are returned.
func DailySummaries(f Forecast) []DaySummary {
	if len(f.Entries) == 0 {
		return nil
	}

	zone := time.FixedZone("", f.UTCOffset)
	byDay := make(map[string][]ForecastEntry)
	for _, e := range f.Entries {
		day := time.Unix(e.Time, 0).In(zone).Format("2006-01-02")
		byDay[day] = append(byDay[day], e)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]DaySummary, 0, MaxForecastDays)
	for _, d := range days {
		if len(out) >= MaxForecastDays {
			break
		}
		out = append(out, summarizeDay(d, byDay[d]))
	}
	return out
}

func summarizeDay(date string, entries []ForecastEntry) DaySummary {
	s := DaySummary{
		Date:    date,
		TempMin: entries[0].TempMin,
		TempMax: entries[0].TempMax,
		Entries: len(entries),
	}

	var (
		sumTemp     float64
		sumHumidity float64
	)

	conditionCounts := make(map[string]int)
	var order []string

	for _, e := range entries {
		sumTemp += e.Temperature
		sumHumidity += float64(e.Humidity)

		if e.TempMin < s.TempMin {
			s.TempMin = e.TempMin
		}
		if e.TempMax > s.TempMax {
			s.TempMax = e.TempMax
		}
		if e.PrecipProb > s.PrecipProb {
			s.PrecipProb = e.PrecipProb
		}

		if _, seen := conditionCounts[e.Condition]; !seen {
			order = append(order, e.Condition)
		}
		conditionCounts[e.Condition]++
	}

	n := float64(len(entries))
	s.TempMean = sumTemp / n
	s.Humidity = sumHumidity / n

	// Pick majority condition.
	bestCount := 0
	for _, cond := range order {
		if conditionCounts[cond] > bestCount {
			bestCount = conditionCounts[cond]
			s.Condition = cond
		}
	}
	for _, e := range entries {
		if e.Condition == s.Condition {
			s.Description = e.Description
			s.Icon = e.Icon
			break
		}
	}

	return s
}
