package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/attendly/attendly/core"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "{0} must be a day of the week (Mon..Sun)"

	gteTag  = "gte"
	gteText = "{0} cannot be negative"
)

// InitValidators registers the course validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)
	core.RegisterCustomTranslation(validate, translator, gteTag, gteText, true)
}

// weekdayValidation only allows tokens understood by ParseWeekday.
func weekdayValidation(fl validator.FieldLevel) bool {
	_, err := ParseWeekday(fl.Field().String())
	return err == nil
}
