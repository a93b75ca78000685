package outline

import (
	"context"
)

// IncreaseLevel indents a task one step, making its linear predecessor its
// new parent. Fails with ErrMaxLevel when there is no valid parent at the
// deeper level: the task is first in the outline, or the row above is
// already its parent.
func (e *Engine) IncreaseLevel(ctx context.Context, projectID string, taskID int) error {
	if err := e.checkTask(ctx, "task.indent", projectID, taskID); err != nil {
		return err
	}

	_, err := e.mutate(ctx, "task.indent", projectID, taskID, func(tx Tx) (Event, error) {
		state, err := loadOutline(tx, projectID)
		if err != nil {
			return Event{}, err
		}
		idx, err := findTarget(state, taskID)
		if err != nil {
			return Event{}, err
		}
		if idx == 0 || state.ordered[idx-1].Level < state.ordered[idx].Level {
			return Event{}, ErrMaxLevel
		}

		state.ordered[idx].Level++
		state.markDirty(idx)
		changed := []int{taskID}

		// The task hangs under a new parent now; completion state has to be
		// re-settled in both directions.
		if !state.ordered[idx].Completed {
			// An incomplete task under a completed chain breaks the chain.
			for _, at := range uncompleteAncestors(state.ordered, idx) {
				state.ordered[at].CompletedBy = nil
				state.markDirty(at)
				changed = append(changed, state.ordered[at].ID)
			}
		} else {
			// A completed task may be the last missing piece of its new
			// parent's subtree, and transitively of ancestors above it.
			completedBy := state.ordered[idx].CompletedBy
			for a := parentIndex(state.ordered, idx); a != -1; a = parentIndex(state.ordered, a) {
				if !allChildrenCompleted(state.ordered, a) {
					break
				}
				if !state.ordered[a].Completed {
					state.ordered[a].Completed = true
					state.ordered[a].CompletedBy = completedBy
					state.markDirty(a)
					changed = append(changed, state.ordered[a].ID)
				}
			}
		}

		if err := state.flush(tx); err != nil {
			return Event{}, err
		}
		return Event{
			Op:        "task.indent",
			ProjectID: projectID,
			TaskIDs:   changed,
			Fields:    map[string]any{"level": state.ordered[idx].Level},
		}, nil
	})
	return err
}

// DecreaseLevel outdents a task and its whole subtree one step, preserving
// relative nesting. Fails with ErrMinLevel on a top-level task. Afterwards
// the old parent is re-checked once: with the outdented subtree gone from
// under it, its remaining direct children may all be complete. The re-check
// intentionally stops there and does not cascade further up.
func (e *Engine) DecreaseLevel(ctx context.Context, projectID string, taskID int) error {
	if err := e.checkTask(ctx, "task.outdent", projectID, taskID); err != nil {
		return err
	}

	_, err := e.mutate(ctx, "task.outdent", projectID, taskID, func(tx Tx) (Event, error) {
		state, err := loadOutline(tx, projectID)
		if err != nil {
			return Event{}, err
		}
		idx, err := findTarget(state, taskID)
		if err != nil {
			return Event{}, err
		}
		if state.ordered[idx].Level == 0 {
			return Event{}, ErrMinLevel
		}

		oldParent := parentIndex(state.ordered, idx)
		end := lastSubtaskIndex(state.ordered, idx)
		changed := make([]int, 0, end-idx+1)
		for j := idx; j <= end; j++ {
			state.ordered[j].Level--
			state.markDirty(j)
			changed = append(changed, state.ordered[j].ID)
		}

		if oldParent != -1 && !state.ordered[oldParent].Completed &&
			allChildrenCompleted(state.ordered, oldParent) {
			state.ordered[oldParent].Completed = true
			state.markDirty(oldParent)
			changed = append(changed, state.ordered[oldParent].ID)
		}

		if err := state.flush(tx); err != nil {
			return Event{}, err
		}
		return Event{
			Op:        "task.outdent",
			ProjectID: projectID,
			TaskIDs:   changed,
			Fields:    map[string]any{"level": state.ordered[idx].Level},
		}, nil
	})
	return err
}
