package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ivankrstev/NojectServer-sub000/internal/model"
	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
)

// Service manages project lifecycle around the same store the outline
// engine mutates. Deletion takes the engine's gate so it never interleaves
// with an in-flight outline mutation on the same project.
type Service struct {
	store outline.Store
	gate  *outline.Gate
	log   *slog.Logger
}

func NewService(store outline.Store, gate *outline.Gate, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, gate: gate, log: log}
}

// Create makes a project with an empty outline.
func (s *Service) Create(ctx context.Context, name, ownerID string) (model.Project, error) {
	now := time.Now().UTC()
	p := model.Project{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}
	if err := tx.PutProject(p); err != nil {
		_ = tx.Rollback()
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.log.Info("project created", "project", p.ID, "owner", ownerID)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Project, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return model.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()
	p, err := tx.Project(id)
	if err != nil {
		return model.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// List returns every project, or only ownerID's when it is non-empty.
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Project, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	all, err := tx.Projects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if ownerID == "" {
		return all, nil
	}
	out := make([]model.Project, 0, len(all))
	for _, p := range all {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Delete removes the project and every one of its task rows in one
// transaction, so no orphan rows survive.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.gate.Lock(id)
	defer s.gate.Unlock(id)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if _, err := tx.Project(id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	tasks, err := tx.Tasks(id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	for _, t := range tasks {
		if err := tx.DeleteTask(id, t.ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete project %s: %w", id, err)
		}
	}
	if err := tx.DeleteProject(id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	s.log.Info("project deleted", "project", id, "tasks_removed", len(tasks))
	return nil
}
