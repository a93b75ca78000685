package outline

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")

	// Boundary violations on indent/outdent. Detected after the transaction
	// is open but before any row is written, so rollback is free.
	ErrMaxLevel = errors.New("maximum level reached")
	ErrMinLevel = errors.New("minimum level reached")
)

// opError attaches operation context to an error on its way out. The
// wrapped error stays matchable with errors.Is.
func opError(op, projectID string, taskID int, err error) error {
	if taskID > 0 {
		return fmt.Errorf("%s: project %s task %d: %w", op, projectID, taskID, err)
	}
	return fmt.Errorf("%s: project %s: %w", op, projectID, err)
}

// IsDomainError reports whether err is one of the engine's expected error
// kinds, as opposed to a persistence failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrMaxLevel) ||
		errors.Is(err, ErrMinLevel)
}
