package bootstrap

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/storage/redisstore"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

func TestSetupLogger(t *testing.T) {
	t.Run("prod logs JSON at info", func(t *testing.T) {
		var buf bytes.Buffer
		log := SetupLogger("prod", &buf)
		log.Debug("hidden")
		log.Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"shown"`)
	})

	t.Run("dev logs text at debug", func(t *testing.T) {
		var buf bytes.Buffer
		SetupLogger("dev", &buf).Debug("visible")
		assert.Contains(t, buf.String(), "msg=visible")
	})
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite creates the directory", func(t *testing.T) {
		cfg := &config.Config{Storage: config.Storage{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "nested", "students.db"),
			Key:    "students",
		}}
		st, err := OpenStorage(ctx, cfg)
		require.NoError(t, err)
		defer st.Close()
		assert.IsType(t, &sqlite.SQLite{}, st)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{
			Storage: config.Storage{Driver: config.DriverRedis, Key: "students"},
			Redis:   config.Redis{Addr: mr.Addr()},
		}
		st, err := OpenStorage(ctx, cfg)
		require.NoError(t, err)
		defer st.Close()
		assert.IsType(t, &redisstore.Store{}, st)
	})

	t.Run("memory", func(t *testing.T) {
		st, err := OpenStorage(ctx, &config.Config{Storage: config.Storage{Driver: config.DriverMemory}})
		require.NoError(t, err)
		assert.IsType(t, &memory.Memory{}, st)
	})

	t.Run("unknown", func(t *testing.T) {
		st, err := OpenStorage(ctx, &config.Config{Storage: config.Storage{Driver: "etcd"}})
		assert.Error(t, err)
		assert.Nil(t, st)
	})
}
