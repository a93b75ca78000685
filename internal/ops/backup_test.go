package ops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
)

func openStore(t *testing.T, dir string) *outline.BadgerStore {
	t.Helper()
	store, err := outline.OpenBadger(outline.BadgerConfig{Path: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	src := openStore(t, srcDir)

	first := 1
	tx, err := src.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.PutProject(model.Project{ID: "p1", Name: "trip", OwnerID: "alice", FirstTask: &first}))
	require.NoError(t, tx.PutTask(model.Task{ID: 1, ProjectID: "p1", Value: "book flights"}))
	require.NoError(t, tx.Commit())

	archive := filepath.Join(t.TempDir(), "noject.backup.gz")
	_, err = BackupStore(src.DB(), archive)
	require.NoError(t, err)

	dst := openStore(t, t.TempDir())
	require.NoError(t, RestoreStore(dst.DB(), archive))

	tx, err = dst.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	p, err := tx.Project("p1")
	require.NoError(t, err)
	assert.Equal(t, "trip", p.Name)
	require.NotNil(t, p.FirstTask)
	assert.Equal(t, 1, *p.FirstTask)

	task, err := tx.Task("p1", 1)
	require.NoError(t, err)
	assert.Equal(t, "book flights", task.Value)
}

func TestBackupStore_RequiresPath(t *testing.T) {
	src := openStore(t, t.TempDir())
	_, err := BackupStore(src.DB(), "  ")
	assert.Error(t, err)
}

func TestRestoreStore_MissingArchive(t *testing.T) {
	dst := openStore(t, t.TempDir())
	err := RestoreStore(dst.DB(), filepath.Join(t.TempDir(), "absent.gz"))
	assert.Error(t, err)
}
