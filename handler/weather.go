package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/intentmesh/core"
)

// Defaults used when a request names no place or an unknown place.
const (
	DefaultLocation = "default location"
	DefaultReport   = "Temperature: 25°C, Partly cloudy (default)"
)

// Store looks up the weather report for a city. found is false for unknown
// cities; err is reserved for store failures.
type Store interface {
	Lookup(ctx context.Context, city string) (report string, found bool, err error)
}

// DefaultTable returns the built-in weather reports keyed by lower-case city.
func DefaultTable() map[string]string {
	return map[string]string{
		"india":    "Temperature: 30°C, Sunny and hot",
		"new york": "Temperature: 22°C, Partly cloudy",
		"london":   "Temperature: 18°C, Rainy",
		"tokyo":    "Temperature: 25°C, Clear skies",
		"paris":    "Temperature: 20°C, Cloudy",
		"berlin":   "Temperature: 19°C, Overcast",
	}
}

// MapStore is an in-memory Store with case-insensitive keys.
type MapStore map[string]string

// NewMapStore copies table into a MapStore normalising the keys.
func NewMapStore(table map[string]string) MapStore {
	s := make(MapStore, len(table))
	for city, report := range table {
		s[normalizeCity(city)] = report
	}
	return s
}

// Lookup implements Store.
func (s MapStore) Lookup(_ context.Context, city string) (string, bool, error) {
	report, ok := s[normalizeCity(city)]
	return report, ok, nil
}

// Cities lists the known cities.
func (s MapStore) Cities() []string {
	out := make([]string, 0, len(s))
	for city := range s {
		out = append(out, city)
	}
	return out
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

// WeatherOptions configures the Weather handler.
type WeatherOptions struct {
	DefaultLocation string
	DefaultReport   string
}

// Weather answers weather questions from a Store.
type Weather struct {
	store Store
	opts  WeatherOptions
}

// NewWeather creates a Weather handler backed by store.
func NewWeather(store Store, optFns ...func(o *WeatherOptions)) *Weather {
	opts := WeatherOptions{DefaultLocation: DefaultLocation, DefaultReport: DefaultReport}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Weather{store: store, opts: opts}
}

// Description implements core.Describer.
func (w *Weather) Description() string { return "Reports current weather conditions for a city" }

// Handle implements core.Handler. Unknown cities get the default report.
func (w *Weather) Handle(ctx context.Context, params core.Params) (string, error) {
	locations := params.Locations
	if len(locations) == 0 {
		locations = []string{w.opts.DefaultLocation}
	}

	lines := make([]string, 0, len(locations))
	for _, city := range locations {
		report, found, err := w.store.Lookup(ctx, city)
		if err != nil {
			return "", &core.HandlerError{
				Code:    "LOOKUP_FAILED",
				Message: fmt.Sprintf("weather lookup for %s failed", city),
				Cause:   err,
			}
		}
		if !found {
			report = w.opts.DefaultReport
		}
		lines = append(lines, fmt.Sprintf("Weather in %s: %s", city, report))
	}
	return strings.Join(lines, "\n"), nil
}
