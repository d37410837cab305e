package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Migration_CreatesTablesAndVersion(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var version int
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)
}

func TestSQLiteStore_Load_EmptyReturnsZeroRecord(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	r, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Record{}, r)
	assert.False(t, r.Linked())
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	want := Record{ClientID: "cid", ClientSecret: "secret", ID: "app-42", Success: true}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.Linked())
}

func TestSQLiteStore_Save_Overwrites(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Record{ClientID: "old", ClientSecret: "old"}))
	require.NoError(t, s.Save(ctx, Record{ClientID: "new", ClientSecret: "new", ID: "7", Success: true}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", got.ClientID)
	assert.Equal(t, "7", got.ID)
}

func TestSQLiteStore_Clear(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Record{ClientID: "cid", ClientSecret: "secret", ID: "1", Success: true}))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.ClientID)
	assert.Empty(t, got.ClientSecret)
	assert.Empty(t, got.ID)
}

func TestSQLiteStore_OptIn(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.OptIn(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, v, "unset flag reads as empty")

	require.NoError(t, s.SetOptIn(ctx, 10, "true"))
	require.NoError(t, s.SetOptIn(ctx, 11, "false"))

	v, err = s.OptIn(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, s.SetOptIn(ctx, 10, "false"))
	v, err = s.OptIn(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "false", v)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "koraki.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Record{ClientID: "cid", ClientSecret: "sec", ID: "9", Success: true}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9", got.ID)
}

func TestDataSource(t *testing.T) {
	t.Parallel()

	dsn, err := dataSource(memoryPath)
	require.NoError(t, err)
	assert.Equal(t, memoryPath, dsn)

	path := filepath.Join(t.TempDir(), "data", "koraki.db")
	dsn, err = dataSource(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, path+"?"))
	assert.Contains(t, dsn, "journal_mode")
	assert.Contains(t, dsn, "busy_timeout")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestSQLiteStore_Reopen_DoesNotReapplyMigrations(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "koraki.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	var rows int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows))
	assert.Equal(t, len(migrations), rows)
}

func TestRecord_HasCredentials(t *testing.T) {
	t.Parallel()

	assert.True(t, Record{ClientID: "a", ClientSecret: "b"}.HasCredentials())
	assert.False(t, Record{ClientID: "a"}.HasCredentials())
	assert.False(t, Record{}.HasCredentials())
}
