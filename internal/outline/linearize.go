package outline

import (
	"github.com/ivankrstev/NojectServer-sub000/internal/model"
)

// Linearize orders a project's task rows by walking the Next chain from
// firstTask. It works in place on the given slice: the row for the current
// id is swapped into the next unfilled front slot, then the walk advances
// to that row's Next. The returned slice aliases the front of tasks.
//
// Rows unreachable from firstTask (broken chains) are silently excluded.
// The walk is capped at len(tasks) steps and refuses to revisit a placed
// row, so a corrupted cyclic chain terminates instead of looping.
func Linearize(tasks []model.Task, firstTask *int) []model.Task {
	if firstTask == nil || len(tasks) == 0 {
		return tasks[:0]
	}

	slots := make(map[int]int, len(tasks))
	for i, t := range tasks {
		slots[t.ID] = i
	}

	n := 0
	id := *firstTask
	for n < len(tasks) {
		j, ok := slots[id]
		if !ok || j < n {
			// Dangling reference, or a cycle back into the placed prefix.
			break
		}
		tasks[n], tasks[j] = tasks[j], tasks[n]
		slots[tasks[j].ID] = j
		slots[tasks[n].ID] = n

		next := tasks[n].Next
		n++
		if next == nil {
			break
		}
		id = *next
	}
	return tasks[:n]
}

// parentIndex finds the parent of ordered[i]: the nearest preceding row
// with a strictly smaller level. Top-level rows have no parent (-1).
func parentIndex(ordered []model.Task, i int) int {
	if ordered[i].Level == 0 {
		return -1
	}
	for j := i - 1; j >= 0; j-- {
		if ordered[j].Level < ordered[i].Level {
			return j
		}
	}
	return -1
}

// childIndexes collects the direct children of ordered[i]: rows at exactly
// level+1 before the subtree ends. Grandchildren are skipped over.
func childIndexes(ordered []model.Task, i int) []int {
	var children []int
	for j := i + 1; j < len(ordered) && ordered[j].Level > ordered[i].Level; j++ {
		if ordered[j].Level == ordered[i].Level+1 {
			children = append(children, j)
		}
	}
	return children
}

// lastSubtaskIndex returns the index of the last row in ordered[i]'s
// subtree, or i itself if it has no descendants.
func lastSubtaskIndex(ordered []model.Task, i int) int {
	j := i
	for j+1 < len(ordered) && ordered[j+1].Level > ordered[i].Level {
		j++
	}
	return j
}

// indexOf locates a task id in the linearized outline, -1 if unreachable.
func indexOf(ordered []model.Task, taskID int) int {
	for i := range ordered {
		if ordered[i].ID == taskID {
			return i
		}
	}
	return -1
}
