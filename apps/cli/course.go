package main

import (
	"context"
	"strings"

	"github.com/attendly/attendly/core/course"
)

func (cli *commandLine) upsertCourse(args []string) error {
	cmd := cli.newFlagSet("course")
	name := cmd.String("name", "", "The course name. An existing course with the same name (any case) is replaced, keeping its grades.")
	days := cmd.String("days", "", "Comma-separated days, e.g. Mon,Wed.")
	lecturer := cmd.String("lecturer", "", "The lecturer.")
	maxAbsences := cmd.Int("max", 0, "How many absences are allowed (0: no limit).")
	absences := cmd.Int("absences", 0, "How many absences were used so far.")
	mandatory := cmd.Bool("mandatory", false, "Attendance is mandatory.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *name == "" {
		cmd.Usage()
		return errHelp
	}

	c, err := cli.svc.Upsert(context.Background(), course.NewCourse{
		Name:            *name,
		Days:            splitList(*days),
		Lecturer:        *lecturer,
		MaxAbsences:     *maxAbsences,
		CurrentAbsences: *absences,
		Mandatory:       *mandatory,
	})
	if err != nil {
		return err
	}
	cli.printf("Saved course %s\n", c.Name)
	return nil
}

func (cli *commandLine) grade(args []string) error {
	cmd := cli.newFlagSet("grade")
	name := cmd.String("course", "", "The course name.")
	value := cmd.String("value", "", "The grade, e.g. 4.5 or zal.")
	note := cmd.String("note", "", "A note.")
	date := cmd.String("date", "", "The date (YYYY-MM-DD).")
	idx := cmd.Int("index", -1, "The position of the grade to replace (0 first). A new grade is added if omitted.")
	id := cmd.String("id", "", "The id of the grade to replace (see list -ids).")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *name == "" || (*id != "" && *idx >= 0) {
		cmd.Usage()
		return errHelp
	}

	ng := course.NewGrade{Value: *value, Note: *note, Date: *date}
	if *id != "" {
		g, err := cli.svc.UpdateGradeByID(context.Background(), *name, *id, ng)
		if err != nil {
			return err
		}
		cli.printf("Replaced grade %s of %s with %s\n", g.ID, *name, g.Value)
		return nil
	}
	if *idx < 0 {
		g, err := cli.svc.AddGrade(context.Background(), *name, ng)
		if err != nil {
			return err
		}
		cli.printf("Added grade %s to %s\n", g.Value, *name)
		return nil
	}
	g, err := cli.svc.UpdateGrade(context.Background(), *name, *idx, ng)
	if err != nil {
		return err
	}
	cli.printf("Replaced grade %d of %s with %s\n", *idx, *name, g.Value)
	return nil
}

func (cli *commandLine) removeGrade(args []string) error {
	cmd := cli.newFlagSet("rmgrade")
	name := cmd.String("course", "", "The course name.")
	idx := cmd.Int("index", -1, "The position of the grade to remove (0 first).")
	id := cmd.String("id", "", "The id of the grade to remove (see list -ids).")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *name == "" || (*idx < 0) == (*id == "") {
		cmd.Usage()
		return errHelp
	}

	var g course.Grade
	var err error
	if *id != "" {
		g, err = cli.svc.RemoveGradeByID(context.Background(), *name, *id)
	} else {
		g, err = cli.svc.RemoveGrade(context.Background(), *name, *idx)
	}
	if err != nil {
		return err
	}
	cli.printf("Removed grade %s from %s\n", g.Value, *name)
	return nil
}

func (cli *commandLine) list(args []string) error {
	cmd := cli.newFlagSet("list")
	ids := cmd.Bool("ids", false, "Show grade ids.")
	if err := parse(cmd, args); err != nil {
		return err
	}

	courses := cli.svc.List()
	if len(courses) == 0 {
		cli.println("No courses yet. Add one with: attendly course -name NAME")
		return nil
	}
	for _, c := range courses {
		cli.printCourse(c, *ids)
	}
	return nil
}

func (cli *commandLine) today(args []string) error {
	cmd := cli.newFlagSet("today")
	dayFlag := cmd.String("day", "", "The day (default: today).")
	if err := parse(cmd, args); err != nil {
		return err
	}
	day, err := cli.day(*dayFlag)
	if err != nil {
		return err
	}

	courses := cli.svc.Today(day)
	if len(courses) == 0 {
		cli.printf("No classes on %s\n", day)
		return nil
	}
	cli.printf("Classes on %s:\n", day)
	for _, c := range courses {
		cli.printCourse(c, false)
	}
	return nil
}

func (cli *commandLine) printCourse(c course.Course, ids bool) {
	mandatory := "optional"
	if c.Mandatory {
		mandatory = cli.color.Red("mandatory")
	}
	cli.printf("%s (%s) %s\n", cli.color.Bold(c.Name), c.Days, mandatory)
	if c.Lecturer != "" {
		cli.printf("  lecturer: %s\n", c.Lecturer)
	}
	cli.printf("  absences: %d/%d\n", c.CurrentAbsences, c.MaxAbsences)
	if len(c.Grades) > 0 {
		values := make([]string, 0, len(c.Grades))
		for _, g := range c.Grades {
			if ids {
				values = append(values, g.Value+" ["+g.ID+"]")
				continue
			}
			values = append(values, g.Value)
		}
		cli.printf("  grades: %s\n", strings.Join(values, ", "))
	}
}

// day parses a day flag, defaulting to today.
func (cli *commandLine) day(s string) (course.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return course.WeekdayOf(cli.now()), nil
	}
	return course.ParseWeekday(s)
}
