package inmemdb

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/attendly/attendly/core/course"
)

// DB keeps the last saved state as JSON so callers never share memory with it.
type DB struct {
	sync.RWMutex
	data  []byte
	saves int
}

func Open() *DB {
	return &DB{}
}

type stateRepository struct {
	db *DB
}

var _ course.Repository = (*stateRepository)(nil) // interface compliance check

func NewStateRepository(db *DB) course.Repository {
	return &stateRepository{db: db}
}

func (repo *stateRepository) Load(_ context.Context) (course.State, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var state course.State
	if repo.db.data == nil {
		return state, nil
	}
	if err := json.Unmarshal(repo.db.data, &state); err != nil {
		return course.State{}, errors.Wrap(err, "decoding state")
	}
	return state, nil
}

func (repo *stateRepository) Save(_ context.Context, state course.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}

	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.data = data
	repo.db.saves++
	return nil
}

// Saves returns how many times the state was saved.
func (db *DB) Saves() int {
	db.RLock()
	defer db.RUnlock()
	return db.saves
}
