package model

import (
	"time"
)

// Task is one row of a project's outline. IDs are allocated per project
// (1, 2, 3, ...) and are only unique within that project. Outline order is
// carried by the Next chain starting at Project.FirstTask; nesting depth by
// Level.
type Task struct {
	ID        int    `json:"id"`
	ProjectID string `json:"projectId"`
	Value     string `json:"value"`
	Level     int    `json:"level"`
	Next      *int   `json:"next,omitempty"`
	Completed bool   `json:"completed"`

	CreatedBy   string  `json:"createdBy"`
	CompletedBy *string `json:"completedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch bumps the last-modified timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
