package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")

	db, err := Connect(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.NoError(t, Ping(context.Background(), db))
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(context.Background(), "oracle", "")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
