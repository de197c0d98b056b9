package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
	weathersvc "github.com/attendly/attendly/services/weather"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *weathersvc.APIError:
			code = http.StatusBadGateway
			if origErr.Status == http.StatusNotFound {
				code = http.StatusNotFound
			}
			message = origErr.Error()
		default:
			switch {
			case core.IsValidationError(err):
				code = http.StatusBadRequest
				message = core.FieldErrors(err, translator)
			case cause == course.ErrNotFound, cause == course.ErrGradeOutOfRange:
				code = http.StatusNotFound
				message = err.Error()
			case cause == weathersvc.ErrCityRequired:
				code = http.StatusBadRequest
				message = err.Error()
			case cause == core.ErrNoWeather:
				code = http.StatusServiceUnavailable
				message = err.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
