package outline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
)

const (
	projectPrefix = "project/"
	taskPrefix    = "task/"
)

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	// Path is the directory for the database files. Ignored when InMemory
	// is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites makes commits durable before returning.
	SyncWrites bool
}

// BadgerStore persists projects and task rows in BadgerDB. Keys are
// project/<id> and task/<projectID>/<taskID>, values JSON.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Begin(ctx context.Context) (Tx, error) {
	return &badgerTx{txn: s.db.NewTransaction(true)}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

// DB exposes the underlying handle for ops tooling (backup/restore).
func (s *BadgerStore) DB() *badger.DB { return s.db }

func projectKey(id string) []byte {
	return []byte(projectPrefix + id)
}

func taskKey(projectID string, taskID int) []byte {
	return []byte(fmt.Sprintf("%s%s/%08d", taskPrefix, projectID, taskID))
}

func projectTasksPrefix(projectID string) []byte {
	return []byte(taskPrefix + projectID + "/")
}

type badgerTx struct {
	txn  *badger.Txn
	done bool
}

func (tx *badgerTx) getJSON(key []byte, out any) error {
	item, err := tx.txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func (tx *badgerTx) putJSON(key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.txn.Set(key, b)
}

func (tx *badgerTx) Project(id string) (model.Project, error) {
	var p model.Project
	if err := tx.getJSON(projectKey(id), &p); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return model.Project{}, ErrProjectNotFound
		}
		return model.Project{}, fmt.Errorf("load project %s: %w", id, err)
	}
	return p, nil
}

func (tx *badgerTx) Projects() ([]model.Project, error) {
	var out []model.Project
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(projectPrefix)
	it := tx.txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		var p model.Project
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
		if err != nil {
			return nil, fmt.Errorf("decode project row: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (tx *badgerTx) PutProject(p model.Project) error {
	return tx.putJSON(projectKey(p.ID), p)
}

func (tx *badgerTx) DeleteProject(id string) error {
	return tx.txn.Delete(projectKey(id))
}

func (tx *badgerTx) Tasks(projectID string) ([]model.Task, error) {
	var out []model.Task
	opts := badger.DefaultIteratorOptions
	opts.Prefix = projectTasksPrefix(projectID)
	it := tx.txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		var t model.Task
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
		if err != nil {
			return nil, fmt.Errorf("decode task row: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (tx *badgerTx) Task(projectID string, taskID int) (model.Task, error) {
	var t model.Task
	if err := tx.getJSON(taskKey(projectID, taskID), &t); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return model.Task{}, ErrTaskNotFound
		}
		return model.Task{}, fmt.Errorf("load task %s/%d: %w", projectID, taskID, err)
	}
	return t, nil
}

func (tx *badgerTx) PutTask(t model.Task) error {
	return tx.putJSON(taskKey(t.ProjectID, t.ID), t)
}

func (tx *badgerTx) DeleteTask(projectID string, taskID int) error {
	return tx.txn.Delete(taskKey(projectID, taskID))
}

func (tx *badgerTx) Commit() error {
	if tx.done {
		return nil
	}
	tx.done = true
	return tx.txn.Commit()
}

func (tx *badgerTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.txn.Discard()
	return nil
}
