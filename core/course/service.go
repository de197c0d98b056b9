package course

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
)

type (
	// Repository persists the whole State at once.
	Repository interface {
		// Load returns an empty State if nothing was saved yet.
		Load(ctx context.Context) (State, error)
		Save(ctx context.Context, state State) error
	}

	ServiceInterface interface {
		Load(ctx context.Context) error
		List() []Course
		Get(name string) (Course, error)
		Today(day Weekday) []Course
		Upsert(ctx context.Context, nc NewCourse) (Course, error)
		AddGrade(ctx context.Context, name string, ng NewGrade) (Grade, error)
		UpdateGrade(ctx context.Context, name string, idx int, ng NewGrade) (Grade, error)
		RemoveGrade(ctx context.Context, name string, idx int) (Grade, error)
		UpdateGradeByID(ctx context.Context, name, id string, ng NewGrade) (Grade, error)
		RemoveGradeByID(ctx context.Context, name, id string) (Grade, error)
		Profile() Profile
		UpdateProfile(ctx context.Context, up UpdateProfile) (Profile, error)
		Snapshot() State
	}

	// Service owns the Store and saves the State after every change.
	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger

		mu      sync.RWMutex
		store   *Store
		profile Profile
		style   string
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
		store:    NewStore(),
		style:    DefaultStyle,
	}
}

// Load replaces the in-memory state with the persisted one.
func (svc *Service) Load(ctx context.Context) error {
	state, err := svc.repo.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading state")
	}

	svc.logMerges(state.Courses)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.store = NewStore(state.Courses...)
	svc.profile = state.Profile
	svc.style = state.Style
	if svc.style == "" {
		svc.style = DefaultStyle
	}
	svc.logger.Info(fmt.Sprintf("loaded %d courses, user: %q", svc.store.Len(), svc.profile.Name))
	return nil
}

// logMerges reports the records NewStore folds into an earlier course of the same name.
func (svc *Service) logMerges(courses []Course) {
	names := make([]string, 0, len(courses))
	for _, c := range courses {
		merged := false
		for _, name := range names {
			if strings.EqualFold(name, c.Name) {
				merged = true
				values := make([]string, 0, len(c.Grades))
				for _, g := range c.Grades {
					values = append(values, g.Value)
				}
				svc.logger.Warn(fmt.Sprintf("merging duplicate course %q into %q, dropping grades [%s]", c.Name, name, strings.Join(values, ", ")))
				break
			}
		}
		if !merged {
			names = append(names, c.Name)
		}
	}
}

// save must be called with mu held.
func (svc *Service) save(ctx context.Context) error {
	if err := svc.repo.Save(ctx, svc.snapshot()); err != nil {
		return errors.Wrap(err, "saving state")
	}
	return nil
}

// commit saves the state, putting prev back in memory when that fails. mu must be held.
func (svc *Service) commit(ctx context.Context, prev State) error {
	if err := svc.save(ctx); err != nil {
		svc.store = NewStore(prev.Courses...)
		svc.profile = prev.Profile
		svc.style = prev.Style
		return err
	}
	return nil
}

func (svc *Service) snapshot() State {
	return State{
		Courses: svc.store.Courses(),
		Profile: svc.profile,
		Style:   svc.style,
	}
}

func (svc *Service) Snapshot() State {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.snapshot()
}

func (svc *Service) List() []Course {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.store.Courses()
}

func (svc *Service) Get(name string) (Course, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	c, err := svc.store.find(name)
	if err != nil {
		return Course{}, err
	}
	return c.Clone(), nil
}

func (svc *Service) Today(day Weekday) []Course {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	scheduled := svc.store.CoursesScheduledOn(day)
	courses := make([]Course, 0, len(scheduled))
	for _, c := range scheduled {
		courses = append(courses, c.Clone())
	}
	return courses
}

func (svc *Service) Upsert(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	prev := svc.snapshot()
	c, err := svc.store.Upsert(nc.Course())
	if err != nil {
		return Course{}, err
	}
	if err := svc.commit(ctx, prev); err != nil {
		return Course{}, err
	}
	svc.logger.Info(fmt.Sprintf("course saved: %s", c.Name))
	return c.Clone(), nil
}

func (svc *Service) AddGrade(ctx context.Context, name string, ng NewGrade) (Grade, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Grade{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	prev := svc.snapshot()
	g, err := svc.store.AddGrade(name, ng.Grade())
	if err != nil {
		return Grade{}, err
	}
	if err := svc.commit(ctx, prev); err != nil {
		return Grade{}, err
	}
	svc.logger.Info(fmt.Sprintf("grade added to %s: %s", name, g.Value))
	return g, nil
}

func (svc *Service) UpdateGrade(ctx context.Context, name string, idx int, ng NewGrade) (Grade, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Grade{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.updateGrade(ctx, name, idx, ng)
}

// UpdateGradeByID replaces the grade identified by id, wherever it sits now.
func (svc *Service) UpdateGradeByID(ctx context.Context, name, id string, ng NewGrade) (Grade, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Grade{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	idx, err := svc.store.GradeIndex(name, id)
	if err != nil {
		return Grade{}, err
	}
	return svc.updateGrade(ctx, name, idx, ng)
}

// updateGrade must be called with mu held.
func (svc *Service) updateGrade(ctx context.Context, name string, idx int, ng NewGrade) (Grade, error) {
	prev := svc.snapshot()
	g, err := svc.store.UpdateGradeAt(name, idx, ng.Grade())
	if err != nil {
		return Grade{}, err
	}
	if err := svc.commit(ctx, prev); err != nil {
		return Grade{}, err
	}
	svc.logger.Info(fmt.Sprintf("grade %d of %s updated: %s", idx, name, g.Value))
	return g, nil
}

func (svc *Service) RemoveGrade(ctx context.Context, name string, idx int) (Grade, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.removeGrade(ctx, name, idx)
}

// RemoveGradeByID deletes the grade identified by id.
func (svc *Service) RemoveGradeByID(ctx context.Context, name, id string) (Grade, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	idx, err := svc.store.GradeIndex(name, id)
	if err != nil {
		return Grade{}, err
	}
	return svc.removeGrade(ctx, name, idx)
}

// removeGrade must be called with mu held.
func (svc *Service) removeGrade(ctx context.Context, name string, idx int) (Grade, error) {
	prev := svc.snapshot()
	g, err := svc.store.RemoveGradeAt(name, idx)
	if err != nil {
		return Grade{}, err
	}
	if err := svc.commit(ctx, prev); err != nil {
		return Grade{}, err
	}
	svc.logger.Info(fmt.Sprintf("grade %d of %s removed: %s", idx, name, g.Value))
	return g, nil
}

func (svc *Service) Profile() Profile {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.profile
}

func (svc *Service) UpdateProfile(ctx context.Context, up UpdateProfile) (Profile, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	prev := svc.snapshot()
	if up.Name != nil {
		svc.profile.Name = core.CleanString(*up.Name)
	}
	if up.ProfilePic != nil {
		svc.profile.ProfilePic = core.CleanString(*up.ProfilePic)
	}
	if up.City != nil {
		svc.profile.City = core.CleanString(*up.City)
	}
	if up.Style != nil {
		if style := core.CleanString(*up.Style); style != "" {
			svc.style = style
		}
	}
	if err := svc.commit(ctx, prev); err != nil {
		return Profile{}, err
	}
	return svc.profile, nil
}
