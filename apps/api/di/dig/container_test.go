package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/attendly/attendly/apps/api/echo"
	"github.com/attendly/attendly/core"
)

func TestNew(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_STORAGE_ENGINE", "memory")
	t.Setenv("TEST_WEATHER_APIKEY", "")
	t.Setenv("OPENWEATHERMAP_API_KEY", "")

	c := New()
	err := c.Invoke(func(conf *core.Config, weather core.WeatherService, server *echoapi.Server) {
		assert.True(t, conf.TestMode)
		assert.Nil(t, weather)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
	require.NoError(t, err)
}
