package course

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/core"
)

func TestGrade_Numeric(t *testing.T) {
	tests := []struct {
		value  string
		want   float64
		wantOk bool
	}{
		{"4", 4, true},
		{" 3.5 ", 3.5, true},
		{"4,5", 4.5, true},
		{"N/A", 0, false},
		{"4+", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := Grade{Value: tt.value}.Numeric()
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCourse_GradeAverage(t *testing.T) {
	c := Course{Grades: []Grade{{Value: "4.0"}, {Value: "3.5"}, {Value: "N/A"}}}
	avg, ok := c.GradeAverage()
	require.True(t, ok)
	assert.InDelta(t, 3.75, avg, 1e-9)

	_, ok = Course{Grades: []Grade{{Value: "N/A"}}}.GradeAverage()
	assert.False(t, ok)
}

func TestCourse_AbsenceRatio(t *testing.T) {
	assert.Equal(t, 0.0, Course{MaxAbsences: 0, CurrentAbsences: 4}.AbsenceRatio())
	assert.Equal(t, 0.9, Course{MaxAbsences: 10, CurrentAbsences: 9}.AbsenceRatio())
	// not clamped
	assert.Equal(t, 1.5, Course{MaxAbsences: 2, CurrentAbsences: 3}.AbsenceRatio())
}

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestNewCourse_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name      string
		nc        NewCourse
		wantField string
	}{
		{name: "valid", nc: NewCourse{Name: " Math ", Days: []string{"pon", " ", "Fri"}, MaxAbsences: 2}},
		{name: "missing name", nc: NewCourse{Name: "  "}, wantField: "name"},
		{name: "bad day", nc: NewCourse{Name: "Math", Days: []string{"someday"}}, wantField: "days[0]"},
		{name: "negative max", nc: NewCourse{Name: "Math", MaxAbsences: -2}, wantField: "max_absences"},
		{name: "negative current", nc: NewCourse{Name: "Math", CurrentAbsences: -1}, wantField: "current_absences"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nc.Validate(validate)
			if tt.wantField == "" {
				require.NoError(t, err)
				c := tt.nc.Course()
				assert.Equal(t, "Math", c.Name)
				assert.Equal(t, NewDays(Mon, Fri), c.Days)
				return
			}
			flds := core.FieldErrors(err, nil)
			assert.Contains(t, flds, tt.wantField)
		})
	}
}

func TestNewGrade_Validate(t *testing.T) {
	validate := newValidator()

	ng := NewGrade{Value: " 5 ", Date: "2024-03-01"}
	require.NoError(t, ng.Validate(validate))
	assert.Equal(t, "5", ng.Value)

	assert.Contains(t, core.FieldErrors((&NewGrade{Value: ""}).Validate(validate), nil), "value")
	assert.Contains(t, core.FieldErrors((&NewGrade{Value: "5", Date: "01.03.2024"}).Validate(validate), nil), "date")
}
