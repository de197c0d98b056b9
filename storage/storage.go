// Package storage picks the course.Repository matching the configuration.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
	"github.com/attendly/attendly/storage/database"
	sqlxrepos "github.com/attendly/attendly/storage/database/sqlx"
	inmemdb "github.com/attendly/attendly/storage/database/inmem"
	"github.com/attendly/attendly/storage/jsonfile"
)

const StorageMemory = "memory"

// Open returns the repository of conf.Storage.Engine and a func releasing its resources.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (course.Repository, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Engine {
	case "", core.StorageJSON:
		return jsonfile.NewRepository(conf.DataFile, logger), noop, nil
	case StorageMemory:
		return inmemdb.NewStateRepository(inmemdb.Open()), noop, nil
	case core.StorageSQLite, core.StoragePostgres:
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxrepos.NewStateRepository(db), db.Close, nil
	}
	return nil, nil, errors.Errorf("unsupported storage engine %q", conf.Storage.Engine)
}
