package model

import (
	"time"
)

// Project owns a set of tasks forming one outline. FirstTask is the id of
// the chain's head task, or nil while the outline is empty.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	FirstTask *int      `json:"firstTask,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch bumps the last-modified timestamp.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now().UTC()
}
