package course

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/attendly/attendly/core"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrGradeOutOfRange = errors.New("grade index out of range")
)

// suggestions below this similarity are not worth showing
const minSuggestRatio = .6

// Store is an ordered collection of courses.
// Course names are unique once case-folded.
// A Store is not safe for concurrent use.
type Store struct {
	courses []*Course
}

// NewStore returns a Store holding copies of courses, in order.
// Later duplicates (case-folded name) replace earlier ones the way Upsert does, keeping the first grades.
func NewStore(courses ...Course) *Store {
	s := &Store{courses: make([]*Course, 0, len(courses))}
	for _, c := range courses {
		c = c.Clone()
		if c.Grades == nil {
			c.Grades = []Grade{}
		}
		for i := range c.Grades {
			if c.Grades[i].ID == "" {
				c.Grades[i].ID = newGradeID()
			}
		}
		if idx := s.indexFold(c.Name); idx >= 0 {
			c.Grades = s.courses[idx].Grades
			s.courses[idx] = &c
			continue
		}
		s.courses = append(s.courses, &c)
	}
	return s
}

func newGradeID() string {
	return uuid.New().String()
}

func (s *Store) indexFold(name string) int {
	for i, c := range s.courses {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Upsert stores c. If a course with the same case-folded name exists, all its fields but the grades are
// replaced; otherwise c is appended with no grades.
func (s *Store) Upsert(c Course) (*Course, error) {
	c.Name = core.CleanString(c.Name)
	if c.Name == "" {
		return nil, core.NewValidationError(errors.New("course name is required"), core.FieldError{Field: "name", Error: "this field is required"})
	}
	if c.MaxAbsences < 0 {
		return nil, core.NewValidationError(errors.New("max_absences cannot be negative"), core.FieldError{Field: "max_absences", Error: "cannot be negative"})
	}
	if c.CurrentAbsences < 0 {
		return nil, core.NewValidationError(errors.New("current_absences cannot be negative"), core.FieldError{Field: "current_absences", Error: "cannot be negative"})
	}

	if idx := s.indexFold(c.Name); idx >= 0 {
		c.Grades = s.courses[idx].Grades
		s.courses[idx] = &c
		return &c, nil
	}
	c.Grades = []Grade{}
	s.courses = append(s.courses, &c)
	return &c, nil
}

// FindByName does an exact, case-sensitive lookup.
func (s *Store) FindByName(name string) (*Course, bool) {
	for _, c := range s.courses {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s *Store) find(name string) (*Course, error) {
	if c, ok := s.FindByName(name); ok {
		return c, nil
	}
	if sugg := s.Suggest(name); sugg != "" {
		return nil, errors.Wrapf(ErrNotFound, "%q (did you mean %q?)", name, sugg)
	}
	return nil, errors.Wrapf(ErrNotFound, "%q", name)
}

// AddGrade appends g to the grades of the course called name.
func (s *Store) AddGrade(name string, g Grade) (Grade, error) {
	c, err := s.find(name)
	if err != nil {
		return Grade{}, err
	}
	if err := checkGrade(g); err != nil {
		return Grade{}, err
	}
	g.ID = newGradeID()
	c.Grades = append(c.Grades, g)
	return g, nil
}

// UpdateGradeAt replaces the grade at position idx. The grade keeps its ID.
func (s *Store) UpdateGradeAt(name string, idx int, g Grade) (Grade, error) {
	c, err := s.find(name)
	if err != nil {
		return Grade{}, err
	}
	if idx < 0 || idx >= len(c.Grades) {
		return Grade{}, errors.Wrapf(ErrGradeOutOfRange, "%s: %d", c.Name, idx)
	}
	if err := checkGrade(g); err != nil {
		return Grade{}, err
	}
	g.ID = c.Grades[idx].ID
	c.Grades[idx] = g
	return g, nil
}

// RemoveGradeAt deletes the grade at position idx, keeping the order of the others.
func (s *Store) RemoveGradeAt(name string, idx int) (Grade, error) {
	c, err := s.find(name)
	if err != nil {
		return Grade{}, err
	}
	if idx < 0 || idx >= len(c.Grades) {
		return Grade{}, errors.Wrapf(ErrGradeOutOfRange, "%s: %d", c.Name, idx)
	}
	removed := c.Grades[idx]
	c.Grades = append(c.Grades[:idx], c.Grades[idx+1:]...)
	return removed, nil
}

// GradeIndex resolves the current position of the grade identified by id.
func (s *Store) GradeIndex(name, id string) (int, error) {
	c, err := s.find(name)
	if err != nil {
		return -1, err
	}
	for i, g := range c.Grades {
		if g.ID == id {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrGradeOutOfRange, "%s: no grade %s", c.Name, id)
}

// CoursesScheduledOn returns the courses taking place on day, in store order.
func (s *Store) CoursesScheduledOn(day Weekday) []*Course {
	courses := make([]*Course, 0)
	for _, c := range s.courses {
		if c.IsScheduledOn(day) {
			courses = append(courses, c)
		}
	}
	return courses
}

// Courses returns copies of all courses, in store order.
func (s *Store) Courses() []Course {
	courses := make([]Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c.Clone())
	}
	return courses
}

func (s *Store) Len() int { return len(s.courses) }

// Suggest returns the stored name closest to name, or "" if none is close enough.
func (s *Store) Suggest(name string) string {
	name = strings.ToLower(core.CleanString(name))
	if name == "" {
		return ""
	}
	var best string
	var bestRatio float64
	for _, c := range s.courses {
		ratio := difflib.NewMatcher(strings.Split(name, ""), strings.Split(strings.ToLower(c.Name), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = c.Name, ratio
		}
	}
	if bestRatio < minSuggestRatio {
		return ""
	}
	return best
}

func checkGrade(g Grade) error {
	if core.CleanString(g.Value) == "" {
		return core.NewValidationError(errors.New("grade value is required"), core.FieldError{Field: "value", Error: "this field is required"})
	}
	return nil
}
