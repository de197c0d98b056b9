package exportsvc

import (
	"bytes"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/core/course"
)

func TestWriteICS(t *testing.T) {
	courses := []course.Course{
		{Name: "Math", Days: course.NewDays(course.Mon, course.Wed), Lecturer: "Kowalski", MaxAbsences: 10, CurrentAbsences: 2},
		{Name: "Law", Days: course.NewDays(course.Fri), Mandatory: true},
		{Name: "Unscheduled"},
	}
	wednesday := time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)

	buf := new(bytes.Buffer)
	require.NoError(t, WriteICS(buf, courses, wednesday))

	cal, err := ics.ParseCalendar(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	value := func(e *ics.VEvent, p ics.ComponentProperty) string {
		prop := e.GetProperty(p)
		require.NotNil(t, prop, p)
		return prop.Value
	}

	tests := []struct {
		event       *ics.VEvent
		summary     string
		start       string
		rrule       string
		description string
	}{
		{events[0], "Math", "20240101", "FREQ=WEEKLY;BYDAY=MO,WE", "Lecturer: Kowalski. Absences: 2/10"},
		{events[1], "Law", "20240105", "FREQ=WEEKLY;BYDAY=FR", "Attendance is mandatory"},
	}
	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.summary, value(tt.event, ics.ComponentPropertySummary))
			assert.Equal(t, tt.start, value(tt.event, ics.ComponentPropertyDtStart))
			assert.Equal(t, tt.rrule, value(tt.event, ics.ComponentPropertyRrule))
			assert.Equal(t, tt.description, value(tt.event, ics.ComponentPropertyDescription))
		})
	}

	// event ids survive a re-export
	again := new(bytes.Buffer)
	require.NoError(t, WriteICS(again, courses[:1], wednesday.AddDate(0, 0, 30)))
	cal2, err := ics.ParseCalendar(again)
	require.NoError(t, err)
	require.Len(t, cal2.Events(), 1)
	assert.Equal(t, events[0].Id(), cal2.Events()[0].Id())
}

func TestWriteICS_empty(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteICS(buf, nil, time.Now()))
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.NotContains(t, buf.String(), "BEGIN:VEVENT")
}
