package weathersvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/core"
)

func newTestService(t *testing.T, h http.HandlerFunc) core.WeatherService {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conf := &core.Config{}
	conf.Weather.APIKey = "secret"
	conf.Weather.BaseURL = srv.URL + "/"
	conf.Weather.Units = "metric"
	conf.Weather.Lang = "pl"
	conf.Weather.Timeout = time.Second
	return NewOpenWeatherMap(conf)
}

func TestNewOpenWeatherMap_noKey(t *testing.T) {
	assert.Nil(t, NewOpenWeatherMap(&core.Config{}))
}

func TestOpenWeatherMap_Current(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Kraków", q.Get("q"))
		assert.Equal(t, "secret", q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "pl", q.Get("lang"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Krakow","weather":[{"id":501,"description":"umiarkowany deszcz","icon":"10d"}],"main":{"temp":12.5}}`))
	})

	got, err := svc.Current(context.Background(), "  Kraków ")
	require.NoError(t, err)
	assert.Equal(t, core.WeatherConditions{
		City:        "Krakow",
		Code:        501,
		Description: "umiarkowany deszcz",
		Icon:        "10d",
		Temp:        12.5,
	}, got)
	assert.Equal(t, "http://openweathermap.org/img/wn/10d@2x.png", got.IconURL())
}

func TestOpenWeatherMap_Current_errors(t *testing.T) {
	tests := []struct {
		name       string
		city       string
		status     int
		body       string
		wantAPIErr *APIError
	}{
		{name: "unknown city", city: "Atlantis", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`, wantAPIErr: &APIError{Status: 404, Message: "city not found"}},
		{name: "bad key", city: "Warsaw", status: http.StatusUnauthorized, body: `{"cod":401,"message":"Invalid API key"}`, wantAPIErr: &APIError{Status: 401, Message: "Invalid API key"}},
		{name: "not json", city: "Warsaw", status: http.StatusBadGateway, body: `<html></html>`, wantAPIErr: &APIError{Status: 502}},
		{name: "no conditions", city: "Warsaw", status: http.StatusOK, body: `{"weather":[]}`},
		{name: "garbage", city: "Warsaw", status: http.StatusOK, body: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.Current(context.Background(), tt.city)
			require.Error(t, err)
			if tt.wantAPIErr != nil {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantAPIErr, apiErr)
			}
		})
	}
}

func TestOpenWeatherMap_Current_noCity(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := svc.Current(context.Background(), " ")
	assert.Equal(t, ErrCityRequired, err)
}

func TestOpenWeatherMap_Current_cancelled(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Current(ctx, "Warsaw")
	assert.Error(t, err)
}

func TestOpenWeatherMap_Current_oversizedResponse(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		// valid JSON, padded past the limit
		_, _ = w.Write([]byte(`{"name":"Warsaw","weather":[{"id":800}]}`))
		_, _ = w.Write([]byte(strings.Repeat(" ", maxResponseSize)))
	})

	_, err := svc.Current(context.Background(), "Warsaw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response larger than")
}
