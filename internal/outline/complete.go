package outline

import (
	"context"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
)

// allChildrenCompleted reports whether every direct child of ordered[i] is
// completed. True for a task with no children.
func allChildrenCompleted(ordered []model.Task, i int) bool {
	for _, c := range childIndexes(ordered, i) {
		if !ordered[c].Completed {
			return false
		}
	}
	return true
}

// uncompleteAncestors walks up from ordered[idx] flipping completed
// ancestors incomplete, short-circuiting at the first one that is already
// incomplete (its own ancestors cannot be completed then). It mutates
// ordered and returns the flipped indexes.
func uncompleteAncestors(ordered []model.Task, idx int) []int {
	var flipped []int
	for a := parentIndex(ordered, idx); a != -1; a = parentIndex(ordered, a) {
		if !ordered[a].Completed {
			break
		}
		ordered[a].Completed = false
		flipped = append(flipped, a)
	}
	return flipped
}

// CompleteTask marks a task and every descendant in its subtree completed,
// then settles ancestors upward: each ancestor whose direct children are
// now all complete is completed too, stopping at the first that fails the
// test. userID is recorded as the completer on every row that flips.
func (e *Engine) CompleteTask(ctx context.Context, projectID string, taskID int, userID string) error {
	if err := e.checkTask(ctx, "task.complete", projectID, taskID); err != nil {
		return err
	}

	_, err := e.mutate(ctx, "task.complete", projectID, taskID, func(tx Tx) (Event, error) {
		state, err := loadOutline(tx, projectID)
		if err != nil {
			return Event{}, err
		}
		idx, err := findTarget(state, taskID)
		if err != nil {
			return Event{}, err
		}

		var changed []int
		end := lastSubtaskIndex(state.ordered, idx)
		for j := idx; j <= end; j++ {
			if state.ordered[j].Completed {
				continue
			}
			state.ordered[j].Completed = true
			state.ordered[j].CompletedBy = &userID
			state.markDirty(j)
			changed = append(changed, state.ordered[j].ID)
		}

		for a := parentIndex(state.ordered, idx); a != -1; a = parentIndex(state.ordered, a) {
			if !allChildrenCompleted(state.ordered, a) {
				break
			}
			if !state.ordered[a].Completed {
				state.ordered[a].Completed = true
				state.ordered[a].CompletedBy = &userID
				state.markDirty(a)
				changed = append(changed, state.ordered[a].ID)
			}
		}

		if err := state.flush(tx); err != nil {
			return Event{}, err
		}
		return Event{
			Op:        "task.complete",
			ProjectID: projectID,
			TaskIDs:   changed,
		}, nil
	})
	return err
}

// UncompleteTask is the mirror: the task and its subtree go incomplete,
// and completed ancestors are flipped incomplete up the chain until one is
// already incomplete.
func (e *Engine) UncompleteTask(ctx context.Context, projectID string, taskID int) error {
	if err := e.checkTask(ctx, "task.uncomplete", projectID, taskID); err != nil {
		return err
	}

	_, err := e.mutate(ctx, "task.uncomplete", projectID, taskID, func(tx Tx) (Event, error) {
		state, err := loadOutline(tx, projectID)
		if err != nil {
			return Event{}, err
		}
		idx, err := findTarget(state, taskID)
		if err != nil {
			return Event{}, err
		}

		var changed []int
		end := lastSubtaskIndex(state.ordered, idx)
		for j := idx; j <= end; j++ {
			if !state.ordered[j].Completed {
				continue
			}
			state.ordered[j].Completed = false
			state.ordered[j].CompletedBy = nil
			state.markDirty(j)
			changed = append(changed, state.ordered[j].ID)
		}

		for _, at := range uncompleteAncestors(state.ordered, idx) {
			state.ordered[at].CompletedBy = nil
			state.markDirty(at)
			changed = append(changed, state.ordered[at].ID)
		}

		if err := state.flush(tx); err != nil {
			return Event{}, err
		}
		return Event{
			Op:        "task.uncomplete",
			ProjectID: projectID,
			TaskIDs:   changed,
		}, nil
	})
	return err
}
