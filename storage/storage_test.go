package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
	testutil "github.com/attendly/attendly/tests"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		engine  string
		dsn     string
		wantErr bool
	}{
		{engine: ""},
		{engine: core.StorageJSON},
		{engine: StorageMemory},
		{engine: core.StorageSQLite, dsn: ":memory:"},
		{engine: "mongo", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			conf := &core.Config{DataFile: filepath.Join(t.TempDir(), "course_data.json")}
			conf.Storage.Engine = tt.engine
			conf.Storage.DSN = tt.dsn

			repo, closeFn, err := Open(context.Background(), conf, &testutil.Logger{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()

			ctx := context.Background()
			state := course.State{
				Courses: []course.Course{{Name: "Math", Days: course.NewDays(course.Mon), Grades: []course.Grade{{ID: "1", Value: "5"}}}},
				Style:   course.DefaultStyle,
			}
			require.NoError(t, repo.Save(ctx, state))
			got, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, state, got)
		})
	}
}
