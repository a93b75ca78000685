package outline

import (
	"context"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
)

// Tx is one atomic unit of work over projects and their task rows. Every
// engine operation runs inside exactly one Tx: either all of its writes
// commit together or none do.
type Tx interface {
	Project(id string) (model.Project, error)
	Projects() ([]model.Project, error)
	PutProject(p model.Project) error
	DeleteProject(id string) error

	// Tasks returns every task row of a project in arbitrary order.
	Tasks(projectID string) ([]model.Task, error)
	Task(projectID string, taskID int) (model.Task, error)
	PutTask(t model.Task) error
	DeleteTask(projectID string, taskID int) error

	Commit() error
	Rollback() error
}

// Store opens units of work against durable storage.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Close() error
}
