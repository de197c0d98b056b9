package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
)

const defaultSQLiteDSN = "attendly.db"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS course (
		position         INTEGER NOT NULL,
		name             TEXT PRIMARY KEY,
		days             TEXT NOT NULL DEFAULT '',
		lecturer         TEXT NOT NULL DEFAULT '',
		max_absences     INTEGER NOT NULL DEFAULT 0,
		current_absences INTEGER NOT NULL DEFAULT 0,
		mandatory        BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS grade (
		course_name TEXT NOT NULL REFERENCES course (name) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		id          TEXT NOT NULL,
		value       TEXT NOT NULL,
		note        TEXT NULL,
		graded_on   TEXT NULL,
		PRIMARY KEY (course_name, position)
	)`,
	`CREATE TABLE IF NOT EXISTS profile (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		profile_pic TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		style       TEXT NOT NULL DEFAULT ''
	)`,
}

// Open connects to the configured sql engine and waits until it answers.
func Open(conf *core.Config) (*sqlx.DB, error) {
	dsn := conf.Storage.DSN
	switch conf.Storage.Engine {
	case core.StorageSQLite:
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
	case core.StoragePostgres:
		if dsn == "" {
			return nil, errors.New("storage.dsn is required for postgres")
		}
	default:
		return nil, errors.Errorf("unsupported sql engine %q", conf.Storage.Engine)
	}

	db, err := sqlx.Open(conf.Storage.Engine, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.Storage.Engine == core.StorageSQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate creates the tables that do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrating database")
		}
	}
	return nil
}
