package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/attendly/attendly/core/course"
)

const profileID = 1

type (
	courseRow struct {
		Name            string `db:"name"`
		Days            string `db:"days"`
		Lecturer        string `db:"lecturer"`
		MaxAbsences     int    `db:"max_absences"`
		CurrentAbsences int    `db:"current_absences"`
		Mandatory       bool   `db:"mandatory"`
	}

	gradeRow struct {
		CourseName string      `db:"course_name"`
		ID         string      `db:"id"`
		Value      string      `db:"value"`
		Note       null.String `db:"note"`
		GradedOn   null.String `db:"graded_on"`
	}

	profileRow struct {
		Name       string `db:"name"`
		ProfilePic string `db:"profile_pic"`
		City       string `db:"city"`
		Style      string `db:"style"`
	}
)

type stateRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*stateRepository)(nil) // interface compliance check

// NewStateRepository stores the state in the course, grade and profile tables.
// The tables must exist (see database.Migrate).
func NewStateRepository(db *sqlx.DB) course.Repository {
	return &stateRepository{db: db}
}

func (repo *stateRepository) Load(ctx context.Context) (course.State, error) {
	var courses []courseRow
	q := `SELECT name, days, lecturer, max_absences, current_absences, mandatory FROM course ORDER BY position`
	if err := repo.db.SelectContext(ctx, &courses, q); err != nil {
		return course.State{}, errors.Wrap(err, "selecting courses")
	}

	var grades []gradeRow
	q = `SELECT course_name, id, value, note, graded_on FROM grade ORDER BY course_name, position`
	if err := repo.db.SelectContext(ctx, &grades, q); err != nil {
		return course.State{}, errors.Wrap(err, "selecting grades")
	}
	gradesByCourse := make(map[string][]course.Grade, len(courses))
	for _, g := range grades {
		gradesByCourse[g.CourseName] = append(gradesByCourse[g.CourseName], course.Grade{
			ID:    g.ID,
			Value: g.Value,
			Note:  g.Note.String,
			Date:  g.GradedOn.String,
		})
	}

	state := course.State{Courses: make([]course.Course, 0, len(courses)), Style: course.DefaultStyle}
	for _, row := range courses {
		days, err := course.ParseDays(row.Days)
		if err != nil {
			return course.State{}, errors.Wrapf(err, "course %q", row.Name)
		}
		c := course.Course{
			Name:            row.Name,
			Days:            days,
			Lecturer:        row.Lecturer,
			MaxAbsences:     row.MaxAbsences,
			CurrentAbsences: row.CurrentAbsences,
			Mandatory:       row.Mandatory,
			Grades:          gradesByCourse[row.Name],
		}
		if c.Grades == nil {
			c.Grades = []course.Grade{}
		}
		state.Courses = append(state.Courses, c)
	}

	var p profileRow
	q = repo.db.Rebind(`SELECT name, profile_pic, city, style FROM profile WHERE id = ?`)
	switch err := repo.db.GetContext(ctx, &p, q, profileID); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return course.State{}, errors.Wrap(err, "selecting profile")
	default:
		state.Profile = course.Profile{Name: p.Name, ProfilePic: p.ProfilePic, City: p.City}
		if p.Style != "" {
			state.Style = p.Style
		}
	}
	return state, nil
}

// Save replaces every stored row in a single transaction.
func (repo *stateRepository) Save(ctx context.Context, state course.State) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM grade`, `DELETE FROM course`, `DELETE FROM profile`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "clearing state")
		}
	}

	insertCourse := tx.Rebind(`INSERT INTO course (position, name, days, lecturer, max_absences, current_absences, mandatory)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	insertGrade := tx.Rebind(`INSERT INTO grade (course_name, position, id, value, note, graded_on) VALUES (?, ?, ?, ?, ?, ?)`)
	for i, c := range state.Courses {
		days := c.Days.String()
		if _, err = tx.ExecContext(ctx, insertCourse, i, c.Name, days, c.Lecturer, c.MaxAbsences, c.CurrentAbsences, c.Mandatory); err != nil {
			return errors.Wrapf(err, "inserting course %q", c.Name)
		}
		for j, g := range c.Grades {
			note := null.NewString(g.Note, g.Note != "")
			date := null.NewString(g.Date, g.Date != "")
			if _, err = tx.ExecContext(ctx, insertGrade, c.Name, j, g.ID, g.Value, note, date); err != nil {
				return errors.Wrapf(err, "inserting grade %d of %q", j, c.Name)
			}
		}
	}

	insertProfile := tx.Rebind(`INSERT INTO profile (id, name, profile_pic, city, style) VALUES (?, ?, ?, ?, ?)`)
	p := state.Profile
	if _, err = tx.ExecContext(ctx, insertProfile, profileID, p.Name, p.ProfilePic, p.City, state.Style); err != nil {
		return errors.Wrap(err, "inserting profile")
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing state")
	}
	return nil
}
