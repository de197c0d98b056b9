package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	. "github.com/attendly/attendly/apps/api/echo"
	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
	weathersvc "github.com/attendly/attendly/services/weather"
	inmemdb "github.com/attendly/attendly/storage/database/inmem"
	testutil "github.com/attendly/attendly/tests"
)

// 2024-01-01 is a Monday
var monday = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type fakeWeather struct {
	conditions core.WeatherConditions
	err        error
	cities     []string
}

func (w *fakeWeather) Current(_ context.Context, city string) (core.WeatherConditions, error) {
	w.cities = append(w.cities, city)
	if w.err != nil {
		return core.WeatherConditions{}, w.err
	}
	c := w.conditions
	c.City = city
	return c, nil
}

type testApp struct {
	server *Server
	svc    *course.Service
	logger *testutil.Logger
}

func setup(t *testing.T, weather core.WeatherService) testApp {
	logger := &testutil.Logger{}
	validate, translator := testutil.NewValidatorWithTranslator()
	svc := course.NewService(inmemdb.NewStateRepository(inmemdb.Open()), validate, logger)
	require.NoError(t, svc.Load(context.Background()))

	conf := &core.Config{TestMode: true}
	server := NewServer(conf, Deps{
		CourseSvc:  svc,
		WeatherSvc: weather,
		Translator: translator,
		Logger:     logger,
		Now:        func() time.Time { return monday },
	})
	return testApp{server: server, svc: svc, logger: logger}
}

func (app testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHome(t *testing.T) {
	app := setup(t, nil)
	rec := app.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCourses(t *testing.T) {
	app := setup(t, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		wantCode int
		wantBody string
	}{
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/v1/courses",
			body:     course.NewCourse{Name: " Data Science ", Days: []string{"Mon", "śr"}, MaxAbsences: 4},
			wantCode: http.StatusOK,
			wantBody: `"name":"Data Science","days":["Mon","Wed"]`,
		},
		{
			name:     "invalid course",
			method:   http.MethodPost,
			path:     "/v1/courses",
			body:     course.NewCourse{Name: "X", Days: []string{"someday"}, MaxAbsences: -1},
			wantCode: http.StatusBadRequest,
			wantBody: `"max_absences":"max_absences cannot be negative"`,
		},
		{
			name:     "malformed body",
			method:   http.MethodPost,
			path:     "/v1/courses",
			body:     "not an object",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     "/v1/courses/Data%20Science",
			wantCode: http.StatusOK,
			wantBody: `"name":"Data Science"`,
		},
		{
			name:     "retrieve is case-sensitive",
			method:   http.MethodGet,
			path:     "/v1/courses/data%20science",
			wantCode: http.StatusNotFound,
			wantBody: `did you mean \"Data Science\"?`,
		},
		{
			name:     "add grade",
			method:   http.MethodPost,
			path:     "/v1/courses/Data%20Science/grades",
			body:     course.NewGrade{Value: "4.5", Date: "2024-01-10"},
			wantCode: http.StatusCreated,
			wantBody: `"value":"4.5"`,
		},
		{
			name:     "invalid grade",
			method:   http.MethodPost,
			path:     "/v1/courses/Data%20Science/grades",
			body:     course.NewGrade{Value: "5", Date: "10/01/2024"},
			wantCode: http.StatusBadRequest,
			wantBody: `"date"`,
		},
		{
			name:     "grade of unknown course",
			method:   http.MethodPost,
			path:     "/v1/courses/Nope/grades",
			body:     course.NewGrade{Value: "5"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "update grade",
			method:   http.MethodPut,
			path:     "/v1/courses/Data%20Science/grades/0",
			body:     course.NewGrade{Value: "5", Note: "retake"},
			wantCode: http.StatusOK,
			wantBody: `"note":"retake"`,
		},
		{
			name:     "update grade out of range",
			method:   http.MethodPut,
			path:     "/v1/courses/Data%20Science/grades/3",
			body:     course.NewGrade{Value: "5"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "bad index",
			method:   http.MethodDelete,
			path:     "/v1/courses/Data%20Science/grades/first",
			wantCode: http.StatusBadRequest,
			wantBody: `"index":"must be an integer"`,
		},
		{
			name:     "remove grade",
			method:   http.MethodDelete,
			path:     "/v1/courses/Data%20Science/grades/0",
			wantCode: http.StatusOK,
			wantBody: `"value":"5"`,
		},
		{
			name:     "remove grade again",
			method:   http.MethodDelete,
			path:     "/v1/courses/Data%20Science/grades/0",
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}

	rec := app.do(t, http.MethodGet, "/v1/courses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []course.Course
	decode(t, rec, &courses)
	require.Len(t, courses, 1)
	assert.Equal(t, []course.Grade{}, courses[0].Grades)
}

func TestToday(t *testing.T) {
	app := setup(t, nil)
	testutil.CreateCourse(t, app.svc, "Math", false, "Mon")
	testutil.CreateCourse(t, app.svc, "Law", true, "Tue")

	tests := []struct {
		query     string
		wantCode  int
		wantDay   string
		wantNames []string
	}{
		{query: "", wantCode: http.StatusOK, wantDay: "Mon", wantNames: []string{"Math"}},
		{query: "?day=wt", wantCode: http.StatusOK, wantDay: "Tue", wantNames: []string{"Law"}},
		{query: "?day=Sunday", wantCode: http.StatusOK, wantDay: "Sun", wantNames: nil},
		{query: "?day=funday", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := app.do(t, http.MethodGet, "/v1/today"+tt.query, nil)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var res struct {
				Day     string          `json:"day"`
				Courses []course.Course `json:"courses"`
			}
			decode(t, rec, &res)
			assert.Equal(t, tt.wantDay, res.Day)
			var names []string
			for _, c := range res.Courses {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

type adviceBody struct {
	Day     string                  `json:"day"`
	Weather *core.WeatherConditions `json:"weather"`
	Report  struct {
		Weather *struct {
			Kind string `json:"kind"`
		} `json:"weather"`
		Mood struct {
			Kind string `json:"kind"`
		} `json:"mood"`
		Verdict string `json:"verdict"`
	} `json:"report"`
	Text string `json:"text"`
}

func TestAdvise(t *testing.T) {
	weather := &fakeWeather{conditions: core.WeatherConditions{Code: 800, Description: "clear sky"}}
	app := setup(t, weather)
	testutil.CreateCourse(t, app.svc, "Math", false, "Mon")
	testutil.AddGrades(t, app.svc, "Math", "2.0", "2.5")

	// no city: no weather lookup
	rec := app.do(t, http.MethodPost, "/v1/advice", map[string]interface{}{"mood": 6})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res adviceBody
	decode(t, rec, &res)
	assert.Equal(t, "Mon", res.Day)
	assert.Nil(t, res.Weather)
	assert.Nil(t, res.Report.Weather)
	assert.Equal(t, "mood_fine", res.Report.Mood.Kind)
	assert.Equal(t, "attend", res.Report.Verdict)
	assert.Contains(t, res.Text, "Your grades are weak")
	assert.Empty(t, weather.cities)

	// weather of the profile city
	city := "Kraków"
	_, err := app.svc.UpdateProfile(context.Background(), course.UpdateProfile{City: &city})
	require.NoError(t, err)

	rec = app.do(t, http.MethodPost, "/v1/advice", map[string]interface{}{"mood": 6})
	require.Equal(t, http.StatusOK, rec.Code)
	res = adviceBody{}
	decode(t, rec, &res)
	require.NotNil(t, res.Weather)
	assert.Equal(t, "Kraków", res.Weather.City)
	require.NotNil(t, res.Report.Weather)
	assert.Equal(t, "weather_clear", res.Report.Weather.Kind)
	assert.Equal(t, []string{"Kraków"}, weather.cities)

	// a given code wins over the lookup
	rec = app.do(t, http.MethodPost, "/v1/advice", map[string]interface{}{"mood": 2, "day": "Mon", "weather_code": 501})
	require.Equal(t, http.StatusOK, rec.Code)
	res = adviceBody{}
	decode(t, rec, &res)
	assert.Equal(t, "weather_rain", res.Report.Weather.Kind)
	assert.Equal(t, "stay_home", res.Report.Verdict)
	assert.Len(t, weather.cities, 1)

	// a failing lookup only drops the weather
	weather.err = &weathersvc.APIError{Status: http.StatusUnauthorized, Message: "Invalid API key"}
	rec = app.do(t, http.MethodPost, "/v1/advice", map[string]interface{}{"mood": 9})
	require.Equal(t, http.StatusOK, rec.Code)
	res = adviceBody{}
	decode(t, rec, &res)
	assert.Nil(t, res.Report.Weather)
	assert.Equal(t, "mood_great", res.Report.Mood.Kind)
	assert.Contains(t, strings.Join(app.logger.Lines(), "\n"), "Invalid API key")

	// nothing on sunday
	rec = app.do(t, http.MethodPost, "/v1/advice", map[string]interface{}{"mood": 5, "day": "niedz", "weather_code": 804})
	require.Equal(t, http.StatusOK, rec.Code)
	res = adviceBody{}
	decode(t, rec, &res)
	assert.Equal(t, "", res.Report.Verdict)
	assert.Contains(t, res.Text, "You have no classes today")
}

func TestAdvise_invalid(t *testing.T) {
	app := setup(t, nil)

	tests := []struct {
		name     string
		body     interface{}
		wantBody string
	}{
		{name: "mood too low", body: map[string]interface{}{"mood": 0}, wantBody: `"mood":"must be between 1 and 10"`},
		{name: "mood too high", body: map[string]interface{}{"mood": 11}, wantBody: `"mood"`},
		{name: "unknown day", body: map[string]interface{}{"mood": 5, "day": "x"}, wantBody: `"day"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/v1/advice", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestWeather(t *testing.T) {
	rec := setup(t, nil).do(t, http.MethodGet, "/v1/weather?city=Warsaw", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	weather := &fakeWeather{conditions: core.WeatherConditions{Code: 500, Icon: "10d"}}
	app := setup(t, weather)
	rec = app.do(t, http.MethodGet, "/v1/weather?city=Warsaw", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var w core.WeatherConditions
	decode(t, rec, &w)
	assert.Equal(t, core.WeatherConditions{City: "Warsaw", Code: 500, Icon: "10d"}, w)

	weather.err = &weathersvc.APIError{Status: http.StatusNotFound, Message: "city not found"}
	rec = app.do(t, http.MethodGet, "/v1/weather?city=Atlantis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "city not found")

	weather.err = weathersvc.ErrCityRequired
	rec = app.do(t, http.MethodGet, "/v1/weather", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile(t *testing.T) {
	app := setup(t, nil)

	rec := app.do(t, http.MethodGet, "/v1/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"","profile_pic":"","city":"","style":"Windows XP"}`, rec.Body.String())

	rec = app.do(t, http.MethodPut, "/v1/profile", map[string]string{"name": " Ala ", "city": "Gdańsk", "style": "Fusion"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Ala","profile_pic":"","city":"Gdańsk","style":"Fusion"}`, rec.Body.String())

	// omitted fields are kept
	rec = app.do(t, http.MethodPut, "/v1/profile", map[string]string{"profile_pic": "ala.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Ala","profile_pic":"ala.png","city":"Gdańsk","style":"Fusion"}`, rec.Body.String())
}

func TestExport(t *testing.T) {
	app := setup(t, nil)
	testutil.CreateCourse(t, app.svc, "Math", false, "Mon")
	testutil.AddGrades(t, app.svc, "Math", "5")

	rec := app.do(t, http.MethodGet, "/v1/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "courses.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Courses", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Math", v)
}

func TestExportCalendar(t *testing.T) {
	app := setup(t, nil)
	testutil.CreateCourse(t, app.svc, "Math", false, "Mon", "Thu")

	rec := app.do(t, http.MethodGet, "/v1/export.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "SUMMARY:Math")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20240101")
}

func TestGradesByID(t *testing.T) {
	app := setup(t, nil)
	testutil.CreateCourse(t, app.svc, "Math", false, "Mon")
	testutil.AddGrades(t, app.svc, "Math", "2", "3")
	math, err := app.svc.Get("Math")
	require.NoError(t, err)
	first, second := math.Grades[0].ID, math.Grades[1].ID

	rec := app.do(t, http.MethodDelete, "/v1/courses/Math/grades/by-id/"+first, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"value":"2"`)

	rec = app.do(t, http.MethodPut, "/v1/courses/Math/grades/by-id/"+second, course.NewGrade{Value: "4"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var g course.Grade
	decode(t, rec, &g)
	assert.Equal(t, course.Grade{ID: second, Value: "4"}, g)

	rec = app.do(t, http.MethodDelete, "/v1/courses/Math/grades/by-id/"+first, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPut, "/v1/courses/Math/grades/by-id/"+second, course.NewGrade{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
