package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         "mysql",
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "catalog_sync",
			TimeoutSeconds: 2,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
		assert.Nil(t, db)
	})

	t.Run("SQLite Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
		require.NoError(t, err)

		require.NoError(t, db.Exec("CREATE TABLE ping (id INTEGER PRIMARY KEY)").Error)
		require.NoError(t, db.Exec("INSERT INTO ping (id) VALUES (1)").Error)

		var count int64
		require.NoError(t, db.Raw("SELECT COUNT(*) FROM ping").Scan(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
