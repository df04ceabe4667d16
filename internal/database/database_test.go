package database

import (
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectFallsBackToSQLite(t *testing.T) {
	db, driver, err := Connect("", filepath.Join(t.TempDir(), "learnpath.db"))
	require.NoError(t, err)
	require.Equal(t, "sqlite", driver)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	require.NoError(t, sqlDB.Close())
}

func TestConnectorsRejectEmptyTargets(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)

	_, err = ConnectSQLite("")
	require.Error(t, err)

	_, err = ConnectRedis("")
	require.Error(t, err)

	_, err = ConnectNATS("", "test")
	require.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := ConnectRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
