package project

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
)

func newTestService(t *testing.T) (*Service, *outline.MemoryStore) {
	t.Helper()
	store := outline.NewMemoryStore()
	return NewService(store, outline.NewGate(), nil), store
}

func TestService_CreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "groceries", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "groceries", created.Name)
	assert.Nil(t, created.FirstTask)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "alice", got.OwnerID)
}

func TestService_GetMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, outline.ErrProjectNotFound))
}

func TestService_ListFiltersByOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a", "alice")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "b", "alice")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "c", "bob")
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, p := range mine {
		assert.Equal(t, "alice", p.OwnerID)
	}
}

func TestService_DeleteRemovesTaskRows(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "doomed", "alice")
	require.NoError(t, err)

	// Attach a two-row outline directly through the store.
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	first := 1
	p, err := tx.Project(created.ID)
	require.NoError(t, err)
	p.FirstTask = &first
	require.NoError(t, tx.PutProject(p))
	next := 2
	require.NoError(t, tx.PutTask(model.Task{ID: 1, ProjectID: created.ID, Value: "one", Next: &next}))
	require.NoError(t, tx.PutTask(model.Task{ID: 2, ProjectID: created.ID, Value: "two"}))
	require.NoError(t, tx.Commit())

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, outline.ErrProjectNotFound))

	tx, err = store.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	rows, err := tx.Tasks(created.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestService_DeleteMissing(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "nope")
	assert.True(t, errors.Is(err, outline.ErrProjectNotFound))
}
