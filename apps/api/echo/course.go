package echoapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
)

type courseApi struct {
	svc course.ServiceInterface
}

func registerCourseAPI(g *echo.Group, svc course.ServiceInterface) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.upsert)
	cg.GET("/:name", api.retrieve)

	gg := cg.Group("/:name/grades")
	gg.POST("", api.addGrade)
	gg.PUT("/:index", api.updateGrade)
	gg.DELETE("/:index", api.removeGrade)
	gg.PUT("/by-id/:id", api.updateGradeByID)
	gg.DELETE("/by-id/:id", api.removeGradeByID)
}

// nameParam returns the decoded course name of the request path.
func nameParam(ctx echo.Context) string {
	name := ctx.Param("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func indexParam(ctx echo.Context) (int, error) {
	idx, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return 0, core.NewValidationError(err, core.FieldError{Field: "index", Error: "must be an integer"})
	}
	return idx, nil
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.List())
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(nameParam(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) upsert(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	c, err := api.svc.Upsert(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) addGrade(ctx echo.Context) error {
	var data course.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	g, err := api.svc.AddGrade(ctx.Request().Context(), nameParam(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *courseApi) updateGrade(ctx echo.Context) error {
	idx, err := indexParam(ctx)
	if err != nil {
		return err
	}
	var data course.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	g, err := api.svc.UpdateGrade(ctx.Request().Context(), nameParam(ctx), idx, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *courseApi) removeGrade(ctx echo.Context) error {
	idx, err := indexParam(ctx)
	if err != nil {
		return err
	}
	g, err := api.svc.RemoveGrade(ctx.Request().Context(), nameParam(ctx), idx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *courseApi) updateGradeByID(ctx echo.Context) error {
	var data course.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	g, err := api.svc.UpdateGradeByID(ctx.Request().Context(), nameParam(ctx), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *courseApi) removeGradeByID(ctx echo.Context) error {
	g, err := api.svc.RemoveGradeByID(ctx.Request().Context(), nameParam(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}
