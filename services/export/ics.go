package exportsvc

import (
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/attendly/attendly/core/course"
)

const CalendarContentType = "text/calendar; charset=utf-8"

// indexed by course.Weekday
var icsDays = [...]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// WriteICS writes the weekly timetable as an iCalendar file: one all-day event per course,
// repeating every week on the course days starting from the week of now.
// Courses without days are left out.
func WriteICS(w io.Writer, courses []course.Course, now time.Time) error {
	cal := ics.NewCalendarFor("attendly")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName("Courses")

	y, m, d := now.Date()
	monday := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -int(course.WeekdayOf(now)))
	for _, c := range courses {
		days := c.Days.List()
		if len(days) == 0 {
			continue
		}
		byDay := make([]string, 0, len(days))
		for _, day := range days {
			byDay = append(byDay, icsDays[day])
		}

		// stable across exports so calendar apps update instead of duplicating
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("attendly:"+strings.ToLower(c.Name)))
		event := cal.AddEvent(id.String())
		event.SetDtStampTime(now)
		event.SetSummary(c.Name)
		event.SetDescription(eventDescription(c))
		start := monday.AddDate(0, 0, int(days[0]))
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(start.AddDate(0, 0, 1))
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + strings.Join(byDay, ","))
	}

	if err := cal.SerializeTo(w); err != nil {
		return errors.Wrap(err, "writing calendar")
	}
	return nil
}

func eventDescription(c course.Course) string {
	parts := make([]string, 0, 3)
	if c.Lecturer != "" {
		parts = append(parts, "Lecturer: "+c.Lecturer)
	}
	if c.Mandatory {
		parts = append(parts, "Attendance is mandatory")
	}
	if c.MaxAbsences > 0 {
		parts = append(parts, "Absences: "+strconv.Itoa(c.CurrentAbsences)+"/"+strconv.Itoa(c.MaxAbsences))
	}
	return strings.Join(parts, ". ")
}
