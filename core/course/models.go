package course

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/attendly/attendly/core"
)

// DefaultName is given to stored courses that lost their name.
const DefaultName = "Unnamed Course"

type Course struct {
	Name            string  `json:"name"`
	Days            Days    `json:"days"`
	Lecturer        string  `json:"lecturer"`
	MaxAbsences     int     `json:"max_absences"`
	CurrentAbsences int     `json:"current_absences"` // may exceed MaxAbsences
	Mandatory       bool    `json:"mandatory"`
	Grades          []Grade `json:"grades"`
}

type Grade struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
	Note  string `json:"note"`
	Date  string `json:"date"` // YYYY-MM-DD or empty
}

// Clone returns a deep copy of c.
func (c Course) Clone() Course {
	if c.Grades != nil {
		grades := make([]Grade, len(c.Grades))
		copy(grades, c.Grades)
		c.Grades = grades
	}
	return c
}

// IsScheduledOn reports whether the course takes place on day.
func (c Course) IsScheduledOn(day Weekday) bool {
	return c.Days.Has(day)
}

// AbsenceRatio is CurrentAbsences / MaxAbsences, or 0 when no absence is allowed at all.
func (c Course) AbsenceRatio() float64 {
	if c.MaxAbsences <= 0 {
		return 0
	}
	return float64(c.CurrentAbsences) / float64(c.MaxAbsences)
}

// GradeAverage returns the arithmetic mean of the numeric grades.
// ok is false when the course has no numeric grade.
func (c Course) GradeAverage() (avg float64, ok bool) {
	var sum float64
	var n int
	for _, g := range c.Grades {
		if v, isNum := g.Numeric(); isNum {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Numeric parses the grade value as a decimal number. A single comma is accepted as decimal separator.
func (g Grade) Numeric() (float64, bool) {
	s := strings.TrimSpace(g.Value)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NewCourse contains information needed to create or replace a Course.
type NewCourse struct {
	Name            string   `json:"name" validate:"required"`
	Days            []string `json:"days" validate:"omitempty,dive,weekday"`
	Lecturer        string   `json:"lecturer"`
	MaxAbsences     int      `json:"max_absences" validate:"gte=0"`
	CurrentAbsences int      `json:"current_absences" validate:"gte=0"`
	Mandatory       bool     `json:"mandatory"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Lecturer = core.CleanString(nc.Lecturer)
	days := nc.Days[:0]
	for _, d := range nc.Days {
		if d = core.CleanString(d); d != "" {
			days = append(days, d)
		}
	}
	nc.Days = days
	return validate.Struct(nc)
}

// Course builds the Course described by a validated NewCourse.
func (nc NewCourse) Course() Course {
	var days Days
	for _, token := range nc.Days {
		if d, err := ParseWeekday(token); err == nil {
			days = days.With(d)
		}
	}
	return Course{
		Name:            nc.Name,
		Days:            days,
		Lecturer:        nc.Lecturer,
		MaxAbsences:     nc.MaxAbsences,
		CurrentAbsences: nc.CurrentAbsences,
		Mandatory:       nc.Mandatory,
	}
}

// NewGrade contains information needed to add or replace a Grade.
type NewGrade struct {
	Value string `json:"value" validate:"required"`
	Note  string `json:"note"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Value = core.CleanString(ng.Value)
	ng.Note = core.CleanString(ng.Note)
	ng.Date = core.CleanString(ng.Date)
	return validate.Struct(ng)
}

func (ng NewGrade) Grade() Grade {
	return Grade{Value: ng.Value, Note: ng.Note, Date: ng.Date}
}

type Profile struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic"`
	City       string `json:"city"`
}

// UpdateProfile defines what may be changed on the Profile; nil fields are kept.
type UpdateProfile struct {
	Name       *string `json:"name"`
	ProfilePic *string `json:"profile_pic"`
	City       *string `json:"city"`
	Style      *string `json:"style"`
}

// State is everything that gets persisted.
type State struct {
	Courses []Course `json:"courses"`
	Profile Profile  `json:"user_data"`
	Style   string   `json:"style"`
}

// DefaultStyle is the style of a fresh installation.
const DefaultStyle = "Windows XP"
