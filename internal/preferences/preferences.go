// Package preferences holds the user's dashboard settings: stored on this
// device first and mirrored to a per-user remote row while signed in.
package preferences

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/i474232898/cloudcast/internal/weather"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Languages lists the supported interface languages.
var Languages = []string{"en", "es", "fr", "de", "it", "pt", "ru", "zh"}

var validate = validator.New()

// Preferences are the user-level settings.
type Preferences struct {
	FavoriteCities       []string                `json:"favorite_cities"`
	DefaultCity          string                  `json:"default_city,omitempty"`
	TemperatureUnit      weather.TemperatureUnit `json:"temperature_unit"`
	ThemePreference      Theme                   `json:"theme_preference"`
	Language             string                  `json:"language"`
	NotificationsEnabled bool                    `json:"notifications_enabled"`
}

// Defaults returns the settings of a first run.
func Defaults() Preferences {
	return Preferences{
		FavoriteCities:  []string{},
		TemperatureUnit: weather.Celsius,
		ThemePreference: ThemeSystem,
		Language:        "en",
	}
}

// HasFavorite reports whether city is a favorite, compared as entered.
func (p Preferences) HasFavorite(city string) bool {
	return slices.Contains(p.FavoriteCities, city)
}

func (p Preferences) clone() Preferences {
	p.FavoriteCities = slices.Clone(p.FavoriteCities)
	if p.FavoriteCities == nil {
		p.FavoriteCities = []string{}
	}
	return p
}

// normalize replaces unknown enum values with the package defaults and
// removes blank or duplicate favorites, keeping the first occurrence.
func normalize(p Preferences) Preferences {
	return normalizeWith(p, Defaults())
}

func normalizeWith(p Preferences, d Preferences) Preferences {
	if p.TemperatureUnit != weather.Celsius && p.TemperatureUnit != weather.Fahrenheit {
		p.TemperatureUnit = d.TemperatureUnit
	}
	switch p.ThemePreference {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		p.ThemePreference = d.ThemePreference
	}
	if !slices.Contains(Languages, p.Language) {
		p.Language = d.Language
	}
	p.DefaultCity = strings.TrimSpace(p.DefaultCity)
	p.FavoriteCities = uniqueCities(p.FavoriteCities)
	return p
}

func uniqueCities(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Patch is a partial update. Nil fields are left untouched; a non-nil empty
// FavoriteCities clears the list.
type Patch struct {
	FavoriteCities       []string `mapstructure:"favorite_cities" json:"favorite_cities,omitempty" validate:"omitempty,dive,required"`
	DefaultCity          *string  `mapstructure:"default_city" json:"default_city,omitempty"`
	TemperatureUnit      *string  `mapstructure:"temperature_unit" json:"temperature_unit,omitempty" validate:"omitempty,oneof=celsius fahrenheit"`
	ThemePreference      *string  `mapstructure:"theme_preference" json:"theme_preference,omitempty" validate:"omitempty,oneof=light dark system"`
	Language             *string  `mapstructure:"language" json:"language,omitempty" validate:"omitempty,oneof=en es fr de it pt ru zh"`
	NotificationsEnabled *bool    `mapstructure:"notifications_enabled" json:"notifications_enabled,omitempty"`
}

// DecodePatch builds a Patch from loosely typed input such as a decoded JSON
// object or key=value pairs from the command line. Strings are accepted for
// booleans and comma-separated strings for the favorites list. Unknown keys
// are rejected.
func DecodePatch(input map[string]any) (Patch, error) {
	var p Patch

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return Patch{}, err
	}
	if err := dec.Decode(input); err != nil {
		return Patch{}, fmt.Errorf("invalid preferences: %w", err)
	}

	if p.FavoriteCities != nil {
		for i, c := range p.FavoriteCities {
			p.FavoriteCities[i] = strings.TrimSpace(c)
		}
	}

	if err := p.Validate(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

// Validate checks the enumerated fields.
func (p Patch) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}

// Apply returns base with the fields present in p replaced.
func (p Patch) Apply(base Preferences) Preferences {
	next := base.clone()
	if p.FavoriteCities != nil {
		next.FavoriteCities = slices.Clone(p.FavoriteCities)
	}
	if p.DefaultCity != nil {
		next.DefaultCity = *p.DefaultCity
	}
	if p.TemperatureUnit != nil {
		next.TemperatureUnit = weather.TemperatureUnit(*p.TemperatureUnit)
	}
	if p.ThemePreference != nil {
		next.ThemePreference = Theme(*p.ThemePreference)
	}
	if p.Language != nil {
		next.Language = *p.Language
	}
	if p.NotificationsEnabled != nil {
		next.NotificationsEnabled = *p.NotificationsEnabled
	}
	return normalize(next)
}
