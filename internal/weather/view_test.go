package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildView(t *testing.T) {
	r := Report{
		Current: Snapshot{
			Name:        "Paris",
			Country:     "FR",
			Temperature: 20,
			FeelsLike:   19.6,
			Humidity:    55,
			WindSpeed:   5,
			WindDeg:     90,
			Condition:   "Rain",
			Description: "light rain",
			Icon:        "10d",
			Sunrise:     1700000000,
			Sunset:      1700030000,
			UTCOffset:   3600,
		},
		Forecast: Forecast{
			UTCOffset: 3600,
			Entries: []ForecastEntry{
				{Time: 1700010000, Temperature: 10, Condition: "Rain", PrecipProb: 0.35},
			},
		},
		FromCache: true,
		Notice:    CachedNotice,
	}

	day := BuildView(r, Fahrenheit, time.Unix(1700010000, 0))
	assert.Equal(t, 68, day.Temperature)
	assert.Equal(t, 67, day.FeelsLike)
	assert.Equal(t, "°F", day.Unit)
	assert.True(t, day.IsDay)
	assert.Equal(t, CategoryRain, day.Category)
	assert.Equal(t, "Light Rain", day.Description)
	assert.Equal(t, "11 mph E", day.Wind)
	assert.True(t, day.FromCache)
	assert.Equal(t, CachedNotice, day.Notice)
	require.Len(t, day.Hourly, 1)
	assert.Equal(t, 35, day.Hourly[0].PrecipProb)
	assert.Equal(t, 50, day.Hourly[0].Temperature)
	require.Len(t, day.Daily, 1)
	assert.Nil(t, day.Alert)

	night := BuildView(r, Celsius, time.Unix(1700040000, 0))
	assert.False(t, night.IsDay)
	assert.Equal(t, CategoryNight, night.Category)
	assert.Equal(t, 20, night.Temperature)
	assert.Equal(t, "18 km/h E", night.Wind)
}
