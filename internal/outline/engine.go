package outline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
)

// Event describes one committed mutation, in the shape the realtime hub
// fans out to the project's other collaborators.
type Event struct {
	Op        string         `json:"op"`
	ProjectID string         `json:"projectId"`
	TaskIDs   []int          `json:"taskIds,omitempty"`
	Task      *model.Task    `json:"task,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Broadcaster receives events after their transaction has committed. The
// engine is agnostic to transport and subscription membership.
type Broadcaster interface {
	Broadcast(projectID string, ev Event)
}

// Engine implements the outline mutations over a Store. All structural and
// value mutations go through the per-project gate and run inside one
// transaction; reads take neither.
type Engine struct {
	store Store
	gate  *Gate
	bcast Broadcaster
	log   *slog.Logger
}

func NewEngine(store Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, gate: NewGate(), log: log}
}

// SetBroadcaster wires the post-commit fan-out. Optional; nil disables it.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	e.bcast = b
}

// Gate exposes the per-project lock so collaborators that mutate task rows
// outside the engine (project deletion) serialize against it.
func (e *Engine) Gate() *Gate {
	return e.gate
}

// mutate runs fn under the project gate inside one transaction. On any
// failure the transaction rolls back and nothing is broadcast.
func (e *Engine) mutate(ctx context.Context, op, projectID string, taskID int, fn func(tx Tx) (Event, error)) (Event, error) {
	e.gate.Lock(projectID)
	defer e.gate.Unlock(projectID)

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return Event{}, opError(op, projectID, taskID, err)
	}

	ev, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return Event{}, opError(op, projectID, taskID, err)
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return Event{}, opError(op, projectID, taskID, err)
	}

	e.log.Debug("outline mutation committed", "op", op, "project", projectID, "tasks", ev.TaskIDs)
	if e.bcast != nil {
		e.bcast.Broadcast(projectID, ev)
	}
	return ev, nil
}

// checkProject verifies the project exists before any gate or mutation
// transaction is taken, so a plain not-found has zero side effects.
func (e *Engine) checkProject(ctx context.Context, op, projectID string) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return opError(op, projectID, 0, err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Project(projectID); err != nil {
		return opError(op, projectID, 0, err)
	}
	return nil
}

// checkTask verifies project and task exist, same discipline as checkProject.
func (e *Engine) checkTask(ctx context.Context, op, projectID string, taskID int) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return opError(op, projectID, taskID, err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Project(projectID); err != nil {
		return opError(op, projectID, taskID, err)
	}
	if _, err := tx.Task(projectID, taskID); err != nil {
		return opError(op, projectID, taskID, err)
	}
	return nil
}

// outlineState is a linearized outline inside one transaction, tracking
// which rows were modified so only those are written back.
type outlineState struct {
	project model.Project
	ordered []model.Task
	dirty   map[int]bool // index into ordered
}

func loadOutline(tx Tx, projectID string) (*outlineState, error) {
	project, err := tx.Project(projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := tx.Tasks(projectID)
	if err != nil {
		return nil, err
	}
	return &outlineState{
		project: project,
		ordered: Linearize(tasks, project.FirstTask),
		dirty:   map[int]bool{},
	}, nil
}

func (s *outlineState) markDirty(i int) {
	s.dirty[i] = true
}

// flush writes every dirty row back, bumping its timestamp.
func (s *outlineState) flush(tx Tx) error {
	for i := range s.ordered {
		if !s.dirty[i] {
			continue
		}
		s.ordered[i].Touch()
		if err := tx.PutTask(s.ordered[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetOrderedTasks returns the outline in depth order. Read-only: no gate,
// so a caller may observe an ordering that an in-flight mutation is about
// to replace.
func (e *Engine) GetOrderedTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, opError("task.list", projectID, 0, err)
	}
	defer func() { _ = tx.Rollback() }()

	state, err := loadOutline(tx, projectID)
	if err != nil {
		return nil, opError("task.list", projectID, 0, err)
	}
	return state.ordered, nil
}

// AddTask inserts a new empty task. With prevTaskID set, the new task goes
// after the last row of that task's subtree and takes that row's level, so
// "insert after X" reads as "insert as X's last child or sibling". Without
// it, the task is appended at the end of the outline at top level.
func (e *Engine) AddTask(ctx context.Context, projectID, userID string, prevTaskID *int) (model.Task, error) {
	if err := e.checkProject(ctx, "task.add", projectID); err != nil {
		return model.Task{}, err
	}

	var created model.Task
	_, err := e.mutate(ctx, "task.add", projectID, 0, func(tx Tx) (Event, error) {
		state, err := loadOutline(tx, projectID)
		if err != nil {
			return Event{}, err
		}

		// Ids are never reused within a project: 1 + max over all rows,
		// including any unreachable ones.
		all, err := tx.Tasks(projectID)
		if err != nil {
			return Event{}, err
		}
		maxID := 0
		for _, t := range all {
			if t.ID > maxID {
				maxID = t.ID
			}
		}

		now := time.Now().UTC()
		created = model.Task{
			ID:        maxID + 1,
			ProjectID: projectID,
			CreatedBy: userID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		switch {
		case prevTaskID != nil:
			prevIdx := indexOf(state.ordered, *prevTaskID)
			if prevIdx == -1 {
				return Event{}, ErrTaskNotFound
			}
			anchorIdx := lastSubtaskIndex(state.ordered, prevIdx)
			anchor := &state.ordered[anchorIdx]
			created.Level = anchor.Level
			created.Next = anchor.Next
			anchor.Next = &created.ID
			state.markDirty(anchorIdx)

			// A brand-new task is incomplete, which can invalidate a
			// completed ancestor chain above the insertion point. Ancestors
			// all sit before the insertion point, so their indexes in the
			// widened slice match state.ordered.
			inserted := append(append(append([]model.Task{}, state.ordered[:anchorIdx+1]...), created), state.ordered[anchorIdx+1:]...)
			for _, at := range uncompleteAncestors(inserted, anchorIdx+1) {
				state.ordered[at].Completed = false
				state.ordered[at].CompletedBy = nil
				state.markDirty(at)
			}

		case len(state.ordered) == 0:
			state.project.FirstTask = &created.ID
			state.project.Touch()
			if err := tx.PutProject(state.project); err != nil {
				return Event{}, err
			}

		default:
			lastIdx := len(state.ordered) - 1
			last := &state.ordered[lastIdx]
			created.Next = last.Next
			last.Next = &created.ID
			state.markDirty(lastIdx)
		}

		if err := tx.PutTask(created); err != nil {
			return Event{}, err
		}
		if err := state.flush(tx); err != nil {
			return Event{}, err
		}

		return Event{
			Op:        "task.add",
			ProjectID: projectID,
			TaskIDs:   []int{created.ID},
			Task:      &created,
		}, nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return created, nil
}

// ChangeValue replaces a task's text. No structural change, no cascade.
func (e *Engine) ChangeValue(ctx context.Context, projectID string, taskID int, newValue string) (model.Task, error) {
	if err := e.checkTask(ctx, "task.change_value", projectID, taskID); err != nil {
		return model.Task{}, err
	}

	var updated model.Task
	_, err := e.mutate(ctx, "task.change_value", projectID, taskID, func(tx Tx) (Event, error) {
		t, err := tx.Task(projectID, taskID)
		if err != nil {
			return Event{}, err
		}
		t.Value = newValue
		t.Touch()
		if err := tx.PutTask(t); err != nil {
			return Event{}, err
		}
		updated = t
		return Event{
			Op:        "task.change_value",
			ProjectID: projectID,
			TaskIDs:   []int{taskID},
			Fields:    map[string]any{"value": newValue},
		}, nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task, promotes its whole subtree one level up to
// fill the gap, and relinks the chain around it. The old parent's
// completion status is deliberately not re-evaluated.
func (e *Engine) DeleteTask(ctx context.Context, projectID string, taskID int) error {
	if err := e.checkTask(ctx, "task.delete", projectID, taskID); err != nil {
		return err
	}

	_, err := e.mutate(ctx, "task.delete", projectID, taskID, func(tx Tx) (Event, error) {
		state, err := loadOutline(tx, projectID)
		if err != nil {
			return Event{}, err
		}
		idx := indexOf(state.ordered, taskID)
		if idx == -1 {
			return Event{}, ErrTaskNotFound
		}
		target := state.ordered[idx]

		// Descendants are promoted into the removed parent's place.
		for j := idx + 1; j < len(state.ordered) && state.ordered[j].Level > target.Level; j++ {
			state.ordered[j].Level--
			state.markDirty(j)
		}

		if state.project.FirstTask != nil && *state.project.FirstTask == taskID {
			state.project.FirstTask = target.Next
			state.project.Touch()
			if err := tx.PutProject(state.project); err != nil {
				return Event{}, err
			}
		} else if idx > 0 {
			state.ordered[idx-1].Next = target.Next
			state.markDirty(idx - 1)
		}

		if err := state.flush(tx); err != nil {
			return Event{}, err
		}
		if err := tx.DeleteTask(projectID, taskID); err != nil {
			return Event{}, err
		}

		return Event{
			Op:        "task.delete",
			ProjectID: projectID,
			TaskIDs:   []int{taskID},
		}, nil
	})
	return err
}

// findTarget is the shared lookup for the level and completion mutations.
func findTarget(state *outlineState, taskID int) (int, error) {
	idx := indexOf(state.ordered, taskID)
	if idx == -1 {
		return -1, ErrTaskNotFound
	}
	return idx, nil
}
