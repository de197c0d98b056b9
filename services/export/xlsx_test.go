package exportsvc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/attendly/attendly/core/course"
)

func TestWriteXLSX(t *testing.T) {
	courses := []course.Course{
		{
			Name:            "Math",
			Days:            course.NewDays(course.Mon, course.Wed),
			Lecturer:        "Kowalski",
			MaxAbsences:     10,
			CurrentAbsences: 9,
			Grades:          []course.Grade{{Value: "2.0"}, {Value: "2.5", Note: "retake", Date: "2024-05-02"}},
		},
		{Name: "Law", Mandatory: true, Grades: []course.Grade{{Value: "N/A"}}},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, WriteXLSX(buf, courses))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{CoursesSheet, GradesSheet}, f.GetSheetList())

	cellValue := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		sheet, axis, want string
	}{
		{CoursesSheet, "A1", "Name"},
		{CoursesSheet, "A2", "Math"},
		{CoursesSheet, "B2", "Mon, Wed"},
		{CoursesSheet, "C2", "Kowalski"},
		{CoursesSheet, "D2", "10"},
		{CoursesSheet, "E2", "9"},
		{CoursesSheet, "F2", "90%"},
		{CoursesSheet, "G2", "no"},
		{CoursesSheet, "H2", "2.25"},
		{CoursesSheet, "A3", "Law"},
		{CoursesSheet, "F3", ""},
		{CoursesSheet, "G3", "yes"},
		{CoursesSheet, "H3", ""},
		{GradesSheet, "A1", "Course"},
		{GradesSheet, "A2", "Math"},
		{GradesSheet, "B2", "1"},
		{GradesSheet, "C2", "2.0"},
		{GradesSheet, "C3", "2.5"},
		{GradesSheet, "D3", "retake"},
		{GradesSheet, "E3", "2024-05-02"},
		{GradesSheet, "A4", "Law"},
		{GradesSheet, "C4", "N/A"},
		{GradesSheet, "A5", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cellValue(tt.sheet, tt.axis), "%s!%s", tt.sheet, tt.axis)
	}
}

func TestWriteXLSX_empty(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteXLSX(buf, nil))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(GradesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
