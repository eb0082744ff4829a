package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/cloudcast/internal/weather"
)

var (
	weatherLat  float64
	weatherLon  float64
	weatherUnit string
	weatherLang string
)

var weatherCmd = &cobra.Command{
	Use:   "weather [city]",
	Short: "Show current conditions and the forecast for a city or coordinates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var loc weather.Locator
		coords := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
		switch {
		case coords && len(args) > 0:
			return errors.New("give either a city or --lat/--lon, not both")
		case coords:
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return errors.New("--lat and --lon must be given together")
			}
			loc = weather.ByCoords(weatherLat, weatherLon)
		case len(args) == 1:
			loc = weather.ByCity(args[0])
		default:
			return errors.New("a city or --lat/--lon is required")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		prefs := a.Prefs.Current()
		unit := prefs.TemperatureUnit
		if weatherUnit != "" {
			unit = weather.TemperatureUnit(weatherUnit)
			if unit != weather.Celsius && unit != weather.Fahrenheit {
				return fmt.Errorf("unknown unit %q", weatherUnit)
			}
		}
		lang := prefs.Language
		if weatherLang != "" {
			lang = weatherLang
		}

		report, err := a.Weather.Lookup(cmd.Context(), loc, weather.Options{Language: lang})
		if err != nil {
			return errors.New(weather.UserMessage(err))
		}

		printView(cmd, weather.BuildView(report, unit, time.Now()), unit)
		return nil
	},
}

func printView(cmd *cobra.Command, v weather.View, unit weather.TemperatureUnit) {
	out := cmd.OutOrStdout()

	if v.Notice != "" {
		fmt.Fprintf(out, "(%s)\n", v.Notice)
	}
	fmt.Fprintf(out, "%s, %s  %s\n", v.City, v.Country, v.LocalTime)
	fmt.Fprintf(out, "%d%s  %s (feels like %d%s)\n", v.Temperature, v.Unit, v.Description, v.FeelsLike, v.Unit)
	fmt.Fprintf(out, "Humidity %d%%  Wind %s\n", v.Humidity, v.Wind)
	fmt.Fprintf(out, "Sunrise %s  Sunset %s\n", v.Sunrise, v.Sunset)
	if v.Alert != nil {
		fmt.Fprintf(out, "! %s: %s\n", v.Alert.Title, v.Alert.Message)
	}

	if len(v.Hourly) > 0 {
		hours := make([]string, 0, len(v.Hourly))
		for _, h := range v.Hourly {
			hours = append(hours, fmt.Sprintf("%s %d%s", h.Time, h.Temperature, v.Unit))
		}
		fmt.Fprintf(out, "\nNext hours: %s\n", strings.Join(hours, " | "))
	}

	if len(v.Daily) > 0 {
		fmt.Fprintln(out, "\nForecast:")
		for _, d := range v.Daily {
			lo := weather.ConvertTemperature(d.TempMin, unit)
			hi := weather.ConvertTemperature(d.TempMax, unit)
			fmt.Fprintf(out, "  %s  %d/%d%s  %s\n", d.Date, lo, hi, v.Unit, weather.CapitalizeWords(d.Description))
		}
	}
}

func init() {
	weatherCmd.Flags().Float64Var(&weatherLat, "lat", 0, "latitude")
	weatherCmd.Flags().Float64Var(&weatherLon, "lon", 0, "longitude")
	weatherCmd.Flags().StringVar(&weatherUnit, "unit", "", "celsius or fahrenheit (default: saved preference)")
	weatherCmd.Flags().StringVar(&weatherLang, "lang", "", "description language (default: saved preference)")
	rootCmd.AddCommand(weatherCmd)
}
