package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
)

const (
	BackupSuffix = ".backup"
	TmpSuffix    = ".tmp.json"

	filePerm = 0o644
)

type repository struct {
	mu     sync.Mutex
	path   string
	logger core.Logger
}

var _ course.Repository = (*repository)(nil) // interface compliance check

// NewRepository stores the state in the JSON file at path.
// Records it cannot make sense of are reported through logger and dropped.
func NewRepository(path string, logger core.Logger) course.Repository {
	return &repository{path: path, logger: logger}
}

// The file is decoded loosely: every field is coerced on its own so one bad value
// never costs the rest of its course.
type fileState struct {
	Courses interface{} `json:"courses"`
	Profile interface{} `json:"user_data"`
	Style   interface{} `json:"style"`
}

// Load returns an empty State if the file does not exist.
func (repo *repository) Load(_ context.Context) (course.State, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	data, err := os.ReadFile(repo.path)
	if err != nil {
		if os.IsNotExist(err) {
			return course.State{Courses: []course.Course{}, Style: course.DefaultStyle}, nil
		}
		return course.State{}, errors.Wrapf(err, "reading %s", repo.path)
	}

	var fs fileState
	if err := json.Unmarshal(data, &fs); err != nil {
		return course.State{}, errors.Wrapf(err, "decoding %s", repo.path)
	}

	root := fixer{logger: repo.logger, where: filepath.Base(repo.path)}
	state := course.State{
		Courses: []course.Course{},
		Profile: root.profile(fs.Profile),
		Style:   root.str("style", fs.Style, course.DefaultStyle),
	}
	if core.CleanString(state.Style) == "" {
		state.Style = course.DefaultStyle
	}

	var records []interface{}
	switch v := fs.Courses.(type) {
	case nil:
	case []interface{}:
		records = v
	default:
		root.repaired("courses", v, "[]")
	}
	for i, rec := range records {
		c, err := repo.normalizeCourse(rec)
		if err != nil {
			repo.logger.Warn(fmt.Sprintf("skipping course #%d: %v", i, err))
			continue
		}
		state.Courses = append(state.Courses, c)
	}
	return state, nil
}

func (repo *repository) normalizeCourse(rec interface{}) (course.Course, error) {
	obj, ok := rec.(map[string]interface{})
	if !ok {
		return course.Course{}, errors.Errorf("not an object: %s", jsonText(rec))
	}

	c := course.Course{Name: course.DefaultName}
	if name := core.CleanString(fixer{logger: repo.logger, where: "course"}.str("name", obj["name"], "")); name != "" {
		c.Name = name
	}
	f := fixer{logger: repo.logger, where: c.Name}
	c.Lecturer = core.CleanString(f.str("lecturer", obj["lecturer"], ""))
	c.MaxAbsences = f.integer("max_absences", obj["max_absences"])
	c.CurrentAbsences = f.integer("current_absences", obj["current_absences"])
	c.Mandatory = f.boolean("mandatory", obj["mandatory"])

	for _, token := range dayTokens(obj["days"]) {
		d, err := course.ParseWeekday(token)
		if err != nil {
			repo.logger.Warn(fmt.Sprintf("%s: ignoring day %q", c.Name, token))
			continue
		}
		c.Days = c.Days.With(d)
	}

	var grades []interface{}
	switch v := obj["grades"].(type) {
	case nil:
	case []interface{}:
		grades = v
	default:
		f.repaired("grades", v, "[]")
	}
	c.Grades = make([]course.Grade, 0, len(grades))
	for i, rg := range grades {
		g, ok := normalizeGrade(rg)
		if !ok {
			repo.logger.Warn(fmt.Sprintf("%s: dropping invalid grade #%d: %s", c.Name, i, jsonText(rg)))
			continue
		}
		c.Grades = append(c.Grades, g)
	}
	return c, nil
}

// dayTokens accepts a comma-separated string or a list of strings.
func dayTokens(raw interface{}) []string {
	var tokens []string
	switch v := raw.(type) {
	case string:
		tokens = strings.Split(v, ",")
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				tokens = append(tokens, strings.Split(s, ",")...)
			}
		}
	}
	cleaned := tokens[:0]
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned
}

// normalizeGrade accepts grade objects and the bare values older files stored.
func normalizeGrade(v interface{}) (course.Grade, bool) {
	switch gv := v.(type) {
	case string, float64:
		value, _ := scalar(gv)
		return course.Grade{Value: value}, core.CleanString(value) != ""
	case map[string]interface{}:
		var g course.Grade
		g.Value, _ = scalar(gv["value"])
		if core.CleanString(g.Value) == "" {
			return course.Grade{}, false
		}
		g.ID, _ = gv["id"].(string)
		g.Note, _ = scalar(gv["note"])
		g.Date, _ = gv["date"].(string)
		return g, true
	}
	return course.Grade{}, false
}

// scalar converts decoded strings and numbers to text.
func scalar(v interface{}) (string, bool) {
	switch sv := v.(type) {
	case string:
		return sv, true
	case float64:
		return strconv.FormatFloat(sv, 'f', -1, 64), true
	}
	return "", false
}

func jsonText(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// fixer coerces loosely typed values to the expected type and reports every repair.
type fixer struct {
	logger core.Logger
	where  string
}

func (f fixer) repaired(field string, v interface{}, used string) {
	f.logger.Warn(fmt.Sprintf("%s: invalid %s %s, using %s", f.where, field, jsonText(v), used))
}

// str accepts strings; numbers become their text, anything else def.
func (f fixer) str(field string, v interface{}, def string) string {
	switch sv := v.(type) {
	case nil:
		return def
	case string:
		return sv
	case float64:
		s, _ := scalar(sv)
		f.repaired(field, v, strconv.Quote(s))
		return s
	}
	f.repaired(field, v, strconv.Quote(def))
	return def
}

// integer accepts whole numbers and numeric strings; anything else is 0.
func (f fixer) integer(field string, v interface{}) int {
	switch iv := v.(type) {
	case nil:
		return 0
	case float64:
		if iv == math.Trunc(iv) && math.Abs(iv) <= math.MaxInt32 {
			return int(iv)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(iv)); err == nil {
			f.repaired(field, v, strconv.Itoa(n))
			return n
		}
	}
	f.repaired(field, v, "0")
	return 0
}

var truthy = map[string]bool{
	"true": true, "yes": true, "y": true, "1": true, "tak": true,
	"false": false, "no": false, "n": false, "0": false, "nie": false, "": false,
}

// boolean accepts booleans, yes/no style strings and numbers; anything else is false.
func (f fixer) boolean(field string, v interface{}) bool {
	switch bv := v.(type) {
	case nil:
		return false
	case bool:
		return bv
	case string:
		if b, ok := truthy[strings.ToLower(strings.TrimSpace(bv))]; ok {
			f.repaired(field, v, strconv.FormatBool(b))
			return b
		}
	case float64:
		f.repaired(field, v, strconv.FormatBool(bv != 0))
		return bv != 0
	}
	f.repaired(field, v, "false")
	return false
}

func (f fixer) profile(v interface{}) course.Profile {
	obj, ok := v.(map[string]interface{})
	if !ok {
		if v != nil {
			f.repaired("user_data", v, "{}")
		}
		return course.Profile{}
	}
	pf := fixer{logger: f.logger, where: "user_data"}
	return course.Profile{
		Name:       pf.str("name", obj["name"], ""),
		ProfilePic: pf.str("profile_pic", obj["profile_pic"], ""),
		City:       pf.str("city", obj["city"], ""),
	}
}

// Save writes the state to a temporary file first, keeping the previous file as a backup.
func (repo *repository) Save(_ context.Context, state course.State) error {
	if state.Courses == nil {
		state.Courses = []course.Course{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if dir := filepath.Dir(repo.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}

	tmpFile := repo.path + TmpSuffix
	if err := os.WriteFile(tmpFile, data, filePerm); err != nil {
		return errors.Wrapf(err, "writing %s", tmpFile)
	}
	if _, err := os.Stat(repo.path); err == nil {
		if err := os.Rename(repo.path, repo.path+BackupSuffix); err != nil {
			repo.logger.Warn(fmt.Sprintf("failed to create backup: %v", err))
		}
	}
	if err := os.Rename(tmpFile, repo.path); err != nil {
		return errors.Wrapf(err, "replacing %s", repo.path)
	}
	return nil
}
