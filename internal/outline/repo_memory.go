package outline

import (
	"context"
	"sort"
	"sync"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
)

// MemoryStore is a map-backed Store for tests and local development.
// Transactions stage their writes and apply them atomically on Commit.
type MemoryStore struct {
	mu       sync.Mutex
	projects map[string]model.Project
	tasks    map[string]map[int]model.Task // projectID -> taskID -> row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: map[string]model.Project{},
		tasks:    map[string]map[int]model.Task{},
	}
}

func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	return &memTx{
		store:       s,
		putProjects: map[string]model.Project{},
		delProjects: map[string]bool{},
		putTasks:    map[string]map[int]model.Task{},
		delTasks:    map[string]map[int]bool{},
	}, nil
}

func (s *MemoryStore) Close() error { return nil }

type memTx struct {
	store *MemoryStore
	done  bool

	putProjects map[string]model.Project
	delProjects map[string]bool
	putTasks    map[string]map[int]model.Task
	delTasks    map[string]map[int]bool
}

func (tx *memTx) Project(id string) (model.Project, error) {
	if p, ok := tx.putProjects[id]; ok {
		return p, nil
	}
	if tx.delProjects[id] {
		return model.Project{}, ErrProjectNotFound
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	p, ok := tx.store.projects[id]
	if !ok {
		return model.Project{}, ErrProjectNotFound
	}
	return p, nil
}

func (tx *memTx) Projects() ([]model.Project, error) {
	tx.store.mu.Lock()
	merged := make(map[string]model.Project, len(tx.store.projects))
	for id, p := range tx.store.projects {
		merged[id] = p
	}
	tx.store.mu.Unlock()

	for id := range tx.delProjects {
		delete(merged, id)
	}
	for id, p := range tx.putProjects {
		merged[id] = p
	}

	out := make([]model.Project, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx *memTx) PutProject(p model.Project) error {
	delete(tx.delProjects, p.ID)
	tx.putProjects[p.ID] = p
	return nil
}

func (tx *memTx) DeleteProject(id string) error {
	delete(tx.putProjects, id)
	tx.delProjects[id] = true
	return nil
}

func (tx *memTx) Tasks(projectID string) ([]model.Task, error) {
	tx.store.mu.Lock()
	merged := map[int]model.Task{}
	for id, t := range tx.store.tasks[projectID] {
		merged[id] = t
	}
	tx.store.mu.Unlock()

	for id := range tx.delTasks[projectID] {
		delete(merged, id)
	}
	for id, t := range tx.putTasks[projectID] {
		merged[id] = t
	}

	out := make([]model.Task, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx *memTx) Task(projectID string, taskID int) (model.Task, error) {
	if t, ok := tx.putTasks[projectID][taskID]; ok {
		return t, nil
	}
	if tx.delTasks[projectID][taskID] {
		return model.Task{}, ErrTaskNotFound
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	t, ok := tx.store.tasks[projectID][taskID]
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	return t, nil
}

func (tx *memTx) PutTask(t model.Task) error {
	if tx.putTasks[t.ProjectID] == nil {
		tx.putTasks[t.ProjectID] = map[int]model.Task{}
	}
	delete(tx.delTasks[t.ProjectID], t.ID)
	tx.putTasks[t.ProjectID][t.ID] = t
	return nil
}

func (tx *memTx) DeleteTask(projectID string, taskID int) error {
	delete(tx.putTasks[projectID], taskID)
	if tx.delTasks[projectID] == nil {
		tx.delTasks[projectID] = map[int]bool{}
	}
	tx.delTasks[projectID][taskID] = true
	return nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return nil
	}
	tx.done = true

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	for id := range tx.delProjects {
		delete(tx.store.projects, id)
	}
	for id, p := range tx.putProjects {
		tx.store.projects[id] = p
	}
	for projectID, ids := range tx.delTasks {
		for id := range ids {
			delete(tx.store.tasks[projectID], id)
		}
	}
	for projectID, rows := range tx.putTasks {
		if tx.store.tasks[projectID] == nil {
			tx.store.tasks[projectID] = map[int]model.Task{}
		}
		for id, t := range rows {
			tx.store.tasks[projectID][id] = t
		}
	}
	return nil
}

func (tx *memTx) Rollback() error {
	tx.done = true
	return nil
}
