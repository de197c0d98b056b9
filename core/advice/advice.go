// Package advice answers "should I go to class today?".
//
// Analyze is a pure function of its inputs: it never mutates the courses and performs no I/O.
// The weather condition code follows the OpenWeatherMap convention
// (below 600 precipitation, 800 clear, above 800 clouds).
package advice

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
)

const (
	MinMood = 1
	MaxMood = 10

	criticalAbsenceRatio = .8
	halfAbsenceRatio     = .5

	goodGradeAverage    = 4.0
	averageGradeAverage = 3.0

	weatherClearCode        = 800
	weatherPrecipitationMax = 600 // exclusive
)

type Input struct {
	Today course.Weekday `json:"today"`
	Mood  int            `json:"mood"`
	// WeatherCode is nil when the weather is unknown.
	WeatherCode *int `json:"weather_code,omitempty"`
}

func (in Input) validate() error {
	if in.Mood < MinMood || in.Mood > MaxMood {
		return core.NewValidationError(
			errors.Errorf("mood must be between %d and %d", MinMood, MaxMood),
			core.FieldError{Field: "mood", Error: fmt.Sprintf("must be between %d and %d", MinMood, MaxMood)},
		)
	}
	if !in.Today.Valid() {
		return core.NewValidationError(course.ErrUnknownWeekday, core.FieldError{Field: "day", Error: course.ErrUnknownWeekday.Error()})
	}
	return nil
}

// Analyze builds the report for the courses scheduled on in.Today, in the given order.
// Malformed courses are skipped and listed in Report.Skipped rather than failing the report.
func Analyze(courses []course.Course, in Input) (Report, error) {
	if err := in.validate(); err != nil {
		return Report{}, err
	}

	var rep Report
	rep.Courses = make([]CourseAdvice, 0)

	if in.WeatherCode != nil {
		if rm, ok := weatherRemark(*in.WeatherCode); ok {
			rep.Weather = &rm
		}
	}

	today := make([]course.Course, 0)
	var anyMandatory bool
	for _, c := range courses {
		if !c.IsScheduledOn(in.Today) {
			continue
		}
		if reason := malformed(c); reason != "" {
			rep.Skipped = append(rep.Skipped, Omission{Course: c.Name, Reason: reason})
			continue
		}
		today = append(today, c)
		anyMandatory = anyMandatory || c.Mandatory
	}

	rep.Mood = moodRemark(in.Mood, anyMandatory)

	if len(today) == 0 {
		rm := remark(NothingScheduled)
		rep.Schedule = &rm
		return rep, nil
	}

	for _, c := range today {
		rep.Courses = append(rep.Courses, CourseAdvice{
			Course: c.Name,
			Remarks: []Remark{
				mandatoryRemark(c),
				absenceRemark(c),
				gradesRemark(c),
			},
		})
	}
	rep.Verdict = verdict(in.Mood, anyMandatory)
	return rep, nil
}

// weatherRemark returns no remark for codes between 600 and 799 (snow, atmosphere).
func weatherRemark(code int) (Remark, bool) {
	switch {
	case code < weatherPrecipitationMax:
		return remark(WeatherRain), true
	case code == weatherClearCode:
		return remark(WeatherClear), true
	case code > weatherClearCode:
		return remark(WeatherClouds), true
	}
	return Remark{}, false
}

func moodRemark(mood int, anyMandatory bool) Remark {
	switch {
	case mood < 3:
		return remark(MoodVeryLow)
	case mood < 5:
		if anyMandatory {
			return remark(MoodLowMandatory)
		}
		return remark(MoodLow)
	case mood < 7:
		return remark(MoodFine)
	}
	return remark(MoodGreat)
}

func malformed(c course.Course) string {
	switch {
	case c.MaxAbsences < 0:
		return "negative max_absences"
	case c.CurrentAbsences < 0:
		return "negative current_absences"
	}
	return ""
}

func mandatoryRemark(c course.Course) Remark {
	if c.Mandatory {
		return remark(CourseMandatory)
	}
	return remark(CourseOptional)
}

func absenceRemark(c course.Course) Remark {
	ratio := c.AbsenceRatio()
	switch {
	case ratio > criticalAbsenceRatio:
		return remark(AbsenceCritical)
	case ratio > halfAbsenceRatio:
		return remark(AbsenceHalf)
	}
	return remark(AbsenceOK)
}

func gradesRemark(c course.Course) Remark {
	if len(c.Grades) == 0 {
		return remark(GradesNone)
	}
	avg, ok := c.GradeAverage()
	switch {
	case !ok:
		return remark(GradesNoNumeric)
	case avg >= goodGradeAverage:
		return remark(GradesGood)
	case avg >= averageGradeAverage:
		return remark(GradesAverage)
	}
	return remark(GradesWeak)
}

// verdict gives mandatory courses priority over mood.
func verdict(mood int, anyMandatory bool) Verdict {
	switch {
	case anyMandatory:
		return VerdictMustAttend
	case mood < 3:
		return VerdictStayHome
	case mood < 5:
		return VerdictMayStay
	}
	return VerdictAttend
}
