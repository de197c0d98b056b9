package exportsvc

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/attendly/attendly/core/course"
)

const (
	CoursesSheet = "Courses"
	GradesSheet  = "Grades"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	courseHeader = []interface{}{"Name", "Days", "Lecturer", "Max absences", "Current absences", "Absences used", "Mandatory", "Average grade"}
	gradeHeader  = []interface{}{"Course", "#", "Value", "Note", "Date"}
)

// WriteXLSX writes a workbook listing the courses and their grades.
func WriteXLSX(w io.Writer, courses []course.Course) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CoursesSheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}
	if _, err := f.NewSheet(GradesSheet); err != nil {
		return errors.Wrap(err, "creating sheet")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}

	if err := writeRow(f, CoursesSheet, 1, courseHeader); err != nil {
		return err
	}
	if err := writeRow(f, GradesSheet, 1, gradeHeader); err != nil {
		return err
	}
	_ = f.SetCellStyle(CoursesSheet, "A1", cell(len(courseHeader), 1), headerStyle)
	_ = f.SetCellStyle(GradesSheet, "A1", cell(len(gradeHeader), 1), headerStyle)
	_ = f.SetColWidth(CoursesSheet, "A", "C", 22)
	_ = f.SetColWidth(GradesSheet, "A", "A", 22)

	gradeRow := 2
	for i, c := range courses {
		avg := ""
		if a, ok := c.GradeAverage(); ok {
			avg = strconv.FormatFloat(a, 'f', 2, 64)
		}
		used := ""
		if c.MaxAbsences > 0 {
			used = fmt.Sprintf("%.0f%%", c.AbsenceRatio()*100)
		}
		mandatory := "no"
		if c.Mandatory {
			mandatory = "yes"
		}
		row := []interface{}{c.Name, c.Days.String(), c.Lecturer, c.MaxAbsences, c.CurrentAbsences, used, mandatory, avg}
		if err := writeRow(f, CoursesSheet, i+2, row); err != nil {
			return err
		}

		for j, g := range c.Grades {
			if err := writeRow(f, GradesSheet, gradeRow, []interface{}{c.Name, j + 1, g.Value, g.Note, g.Date}); err != nil {
				return err
			}
			gradeRow++
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
		return errors.Wrapf(err, "writing %s row %d", sheet, row)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
