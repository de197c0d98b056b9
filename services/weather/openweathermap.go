package weathersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
)

const (
	endpoint = "/data/2.5/weather"

	// responses are a few hundred bytes
	maxResponseSize = 1 << 20
)

// ErrCityRequired is returned when no city is given.
var ErrCityRequired = errors.New("city is required")

// APIError is a non-200 answer of the weather API.
type APIError struct {
	Status  int
	Message string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("weather api: status %d", err.Status)
	}
	return fmt.Sprintf("weather api: status %d: %s", err.Status, err.Message)
}

type openWeatherMap struct {
	key     string
	baseURL string
	units   string
	lang    string
	client  *http.Client
}

var _ core.WeatherService = (*openWeatherMap)(nil)

// NewOpenWeatherMap returns a client for the OpenWeatherMap current weather API.
// It returns nil if no API key is configured.
func NewOpenWeatherMap(conf *core.Config) core.WeatherService {
	if conf.Weather.APIKey == "" {
		return nil
	}
	return &openWeatherMap{
		key:     conf.Weather.APIKey,
		baseURL: strings.TrimRight(conf.Weather.BaseURL, "/"),
		units:   conf.Weather.Units,
		lang:    conf.Weather.Lang,
		client:  &http.Client{Timeout: conf.Weather.Timeout},
	}
}

type currentWeather struct {
	Name    string `json:"name"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Message string `json:"message"`
}

func (svc *openWeatherMap) Current(ctx context.Context, city string) (core.WeatherConditions, error) {
	city = core.CleanString(city)
	if city == "" {
		return core.WeatherConditions{}, ErrCityRequired
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", svc.key)
	q.Set("units", svc.units)
	q.Set("lang", svc.lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return core.WeatherConditions{}, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return core.WeatherConditions{}, errors.Wrap(err, "fetching weather")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize+1))
	if err != nil {
		return core.WeatherConditions{}, errors.Wrap(err, "reading weather")
	}
	if len(body) > maxResponseSize {
		return core.WeatherConditions{}, errors.Errorf("reading weather: response larger than %d bytes", maxResponseSize)
	}

	var data currentWeather
	if res.StatusCode != http.StatusOK {
		_ = json.Unmarshal(body, &data)
		return core.WeatherConditions{}, &APIError{Status: res.StatusCode, Message: data.Message}
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return core.WeatherConditions{}, errors.Wrap(err, "decoding weather")
	}
	if len(data.Weather) == 0 {
		return core.WeatherConditions{}, errors.New("decoding weather: no conditions")
	}

	name := data.Name
	if name == "" {
		name = city
	}
	return core.WeatherConditions{
		City:        name,
		Code:        data.Weather[0].ID,
		Description: data.Weather[0].Description,
		Icon:        data.Weather[0].Icon,
		Temp:        data.Main.Temp,
	}, nil
}
