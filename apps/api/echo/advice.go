package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/advice"
	"github.com/attendly/attendly/core/course"
	exportsvc "github.com/attendly/attendly/services/export"
)

type (
	adviceApi struct {
		Deps
	}

	adviceRequest struct {
		Mood        int    `json:"mood"`
		Day         string `json:"day"`
		WeatherCode *int   `json:"weather_code"`
	}

	adviceResponse struct {
		Day     course.Weekday          `json:"day"`
		Weather *core.WeatherConditions `json:"weather,omitempty"`
		Report  advice.Report           `json:"report"`
		Text    string                  `json:"text"`
	}

	todayResponse struct {
		Day     course.Weekday  `json:"day"`
		Courses []course.Course `json:"courses"`
	}

	profileResponse struct {
		course.Profile
		Style string `json:"style"`
	}
)

func registerAdviceAPI(g *echo.Group, deps Deps) {
	api := adviceApi{Deps: deps}

	g.GET("/today", api.today)
	g.POST("/advice", api.advise)
	g.GET("/weather", api.weather)
	g.GET("/profile", api.profile)
	g.PUT("/profile", api.updateProfile)
	g.GET("/export.xlsx", api.export)
	g.GET("/export.ics", api.exportCalendar)
}

// day parses the requested day, defaulting to today.
func (api *adviceApi) day(s string) (course.Weekday, error) {
	if core.CleanString(s) == "" {
		return course.WeekdayOf(api.Now()), nil
	}
	d, err := course.ParseWeekday(s)
	if err != nil {
		return 0, core.NewValidationError(err, core.FieldError{Field: "day", Error: err.Error()})
	}
	return d, nil
}

// Handlers

func (api *adviceApi) today(ctx echo.Context) error {
	day, err := api.day(ctx.QueryParam("day"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, todayResponse{Day: day, Courses: api.CourseSvc.Today(day)})
}

func (api *adviceApi) advise(ctx echo.Context) error {
	var data adviceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to adviceRequest")
	}
	day, err := api.day(data.Day)
	if err != nil {
		return err
	}

	res := adviceResponse{Day: day}
	in := advice.Input{Today: day, Mood: data.Mood, WeatherCode: data.WeatherCode}
	if in.WeatherCode == nil && api.WeatherSvc != nil {
		if city := api.CourseSvc.Profile().City; city != "" {
			// advice is still given without the weather
			if w, err := api.WeatherSvc.Current(ctx.Request().Context(), city); err != nil {
				api.Logger.Warn(fmt.Sprintf("fetching weather for %s: %v", city, err))
			} else {
				res.Weather = &w
				in.WeatherCode = &w.Code
			}
		}
	}

	rep, err := advice.Analyze(api.CourseSvc.List(), in)
	if err != nil {
		return err
	}
	for _, o := range rep.Skipped {
		api.Logger.Warn(fmt.Sprintf("course %s left out of the advice: %s", o.Course, o.Reason))
	}
	res.Report = rep
	res.Text = rep.String()
	return ctx.JSON(http.StatusOK, res)
}

func (api *adviceApi) weather(ctx echo.Context) error {
	if api.WeatherSvc == nil {
		return core.ErrNoWeather
	}
	city := ctx.QueryParam("city")
	if core.CleanString(city) == "" {
		city = api.CourseSvc.Profile().City
	}
	w, err := api.WeatherSvc.Current(ctx.Request().Context(), city)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *adviceApi) profile(ctx echo.Context) error {
	state := api.CourseSvc.Snapshot()
	return ctx.JSON(http.StatusOK, profileResponse{Profile: state.Profile, Style: state.Style})
}

func (api *adviceApi) updateProfile(ctx echo.Context) error {
	var data course.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if _, err := api.CourseSvc.UpdateProfile(ctx.Request().Context(), data); err != nil {
		return err
	}
	return api.profile(ctx)
}

func (api *adviceApi) export(ctx echo.Context) error {
	buf := new(bytes.Buffer)
	if err := exportsvc.WriteXLSX(buf, api.CourseSvc.List()); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="courses.xlsx"`)
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}

func (api *adviceApi) exportCalendar(ctx echo.Context) error {
	buf := new(bytes.Buffer)
	if err := exportsvc.WriteICS(buf, api.CourseSvc.List(), api.Now()); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="courses.ics"`)
	return ctx.Blob(http.StatusOK, exportsvc.CalendarContentType, buf.Bytes())
}
