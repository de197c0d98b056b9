package advice

import (
	"fmt"
	"strings"
)

// Kind identifies a remark independently of its wording.
type Kind string

const (
	WeatherRain   Kind = "weather_rain"
	WeatherClear  Kind = "weather_clear"
	WeatherClouds Kind = "weather_clouds"

	MoodVeryLow      Kind = "mood_very_low"
	MoodLow          Kind = "mood_low"
	MoodLowMandatory Kind = "mood_low_mandatory"
	MoodFine         Kind = "mood_fine"
	MoodGreat        Kind = "mood_great"
	NothingScheduled Kind = "nothing_scheduled"
	CourseMandatory  Kind = "course_mandatory"
	CourseOptional   Kind = "course_optional"
	AbsenceCritical  Kind = "absence_critical"
	AbsenceHalf      Kind = "absence_half"
	AbsenceOK        Kind = "absence_ok"
	GradesGood       Kind = "grades_good"
	GradesAverage    Kind = "grades_average"
	GradesWeak       Kind = "grades_weak"
	GradesNoNumeric  Kind = "grades_no_numeric"
	GradesNone       Kind = "grades_none"
)

// Tone tells presentation layers how to highlight a remark.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneNeutral Tone = "neutral"
	ToneWarn    Tone = "warn"
	ToneBad     Tone = "bad"
)

type Remark struct {
	Kind Kind   `json:"kind"`
	Tone Tone   `json:"tone"`
	Text string `json:"text"`
}

var remarks = map[Kind]Remark{
	WeatherRain:   {Tone: ToneWarn, Text: "Heads up: it is raining today. Take an umbrella or dress for the weather."},
	WeatherClear:  {Tone: ToneGood, Text: "The weather is nice, a good day for classes!"},
	WeatherClouds: {Tone: ToneNeutral, Text: "It is cloudy today, but that should not keep you from class."},

	MoodVeryLow:      {Tone: ToneBad, Text: "You feel very bad. If you can, consider staying home and resting."},
	MoodLow:          {Tone: ToneWarn, Text: "You do not feel well. As none of today's classes is mandatory, you may consider skipping."},
	MoodLowMandatory: {Tone: ToneWarn, Text: "You do not feel well, but some of today's classes are mandatory."},
	MoodFine:         {Tone: ToneNeutral, Text: "You feel fine. You should be able to go to class."},
	MoodGreat:        {Tone: ToneGood, Text: "You feel great! A perfect day for studying."},

	NothingScheduled: {Tone: ToneGood, Text: "You have no classes today. Time to rest!"},

	CourseMandatory: {Tone: ToneBad, Text: "Mandatory: you must attend"},
	CourseOptional:  {Tone: ToneNeutral, Text: "Not mandatory: you may consider skipping"},

	AbsenceCritical: {Tone: ToneBad, Text: "Careful! You have almost exhausted your absence limit"},
	AbsenceHalf:     {Tone: ToneWarn, Text: "You have used more than half of your absences"},
	AbsenceOK:       {Tone: ToneGood, Text: "You still have plenty of absences left"},

	GradesGood:      {Tone: ToneGood, Text: "Your grades are good, you can afford an absence"},
	GradesAverage:   {Tone: ToneWarn, Text: "Your grades are average, better attend"},
	GradesWeak:      {Tone: ToneBad, Text: "Your grades are weak, you must attend"},
	GradesNoNumeric: {Tone: ToneNeutral, Text: "No numeric grades to analyze"},
	GradesNone:      {Tone: ToneNeutral, Text: "No grades to analyze"},
}

func remark(k Kind) Remark {
	r := remarks[k]
	r.Kind = k
	return r
}

// Verdict is the single top-level recommendation.
type Verdict string

const (
	// VerdictNone is given when nothing is scheduled.
	VerdictNone       Verdict = ""
	VerdictMustAttend Verdict = "must_attend"
	VerdictStayHome   Verdict = "stay_home"
	VerdictMayStay    Verdict = "may_stay_home"
	VerdictAttend     Verdict = "attend"
)

var verdictTexts = map[Verdict]string{
	VerdictMustAttend: "You must go to class (mandatory courses)",
	VerdictStayHome:   "Stay home and rest",
	VerdictMayStay:    "You may stay home, but consider going to class",
	VerdictAttend:     "Go to class",
}

func (v Verdict) Text() string { return verdictTexts[v] }

func (v Verdict) Tone() Tone {
	switch v {
	case VerdictMustAttend:
		return ToneBad
	case VerdictStayHome, VerdictMayStay:
		return ToneWarn
	case VerdictAttend:
		return ToneGood
	}
	return ToneNeutral
}

type CourseAdvice struct {
	Course  string   `json:"course"`
	Remarks []Remark `json:"remarks"`
}

// Omission records a course left out of the report.
type Omission struct {
	Course string `json:"course"`
	Reason string `json:"reason"`
}

type Report struct {
	Weather *Remark        `json:"weather,omitempty"`
	Mood    Remark         `json:"mood"`
	Courses []CourseAdvice `json:"courses"`
	// Schedule is set to the NothingScheduled remark when no course takes place today.
	Schedule *Remark    `json:"schedule,omitempty"`
	Verdict  Verdict    `json:"verdict"`
	Skipped  []Omission `json:"skipped,omitempty"`
}

// Remarks returns every remark of the report in reading order.
func (r Report) Remarks() []Remark {
	all := make([]Remark, 0, 2+3*len(r.Courses))
	if r.Weather != nil {
		all = append(all, *r.Weather)
	}
	all = append(all, r.Mood)
	if r.Schedule != nil {
		all = append(all, *r.Schedule)
	}
	for _, ca := range r.Courses {
		all = append(all, ca.Remarks...)
	}
	return all
}

// Has reports whether a remark of kind k is part of the report.
func (r Report) Has(k Kind) bool {
	for _, rm := range r.Remarks() {
		if rm.Kind == k {
			return true
		}
	}
	return false
}

// Format renders the report as text, passing every line through style with its tone.
func (r Report) Format(style func(Tone, string) string) string {
	if style == nil {
		style = func(_ Tone, s string) string { return s }
	}
	var b strings.Builder
	b.WriteString("Analysis:\n")
	if r.Weather != nil {
		fmt.Fprintln(&b, style(r.Weather.Tone, r.Weather.Text))
	}
	fmt.Fprintln(&b, style(r.Mood.Tone, r.Mood.Text))
	if r.Schedule != nil {
		fmt.Fprintln(&b, style(r.Schedule.Tone, r.Schedule.Text))
		return b.String()
	}

	b.WriteString("\nToday's classes:\n")
	for _, ca := range r.Courses {
		fmt.Fprintln(&b, ca.Course)
		for _, rm := range ca.Remarks {
			fmt.Fprintln(&b, "- "+style(rm.Tone, rm.Text))
		}
	}
	if r.Verdict != VerdictNone {
		fmt.Fprintln(&b, "\n"+style(r.Verdict.Tone(), "Recommendation: "+r.Verdict.Text()))
	}
	return b.String()
}

func (r Report) String() string { return r.Format(nil) }
