package core

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoWeather is returned when no weather service is configured.
var ErrNoWeather = errors.New("weather service is not configured")

type (
	// WeatherConditions are the current conditions in a city.
	// Code follows the OpenWeatherMap condition codes.
	WeatherConditions struct {
		City        string  `json:"city"`
		Code        int     `json:"code"`
		Description string  `json:"description"`
		Icon        string  `json:"icon"`
		Temp        float64 `json:"temp"`
	}

	// WeatherService is any service that can tell the current weather
	WeatherService interface {
		Current(ctx context.Context, city string) (WeatherConditions, error)
	}
)

// IconURL returns the address of the condition icon, or "" if there is none.
func (w WeatherConditions) IconURL() string {
	if w.Icon == "" {
		return ""
	}
	return "http://openweathermap.org/img/wn/" + w.Icon + "@2x.png"
}
