package tasks

import (
	"context"

	"github.com/dkazakov/taskdeck/internal/server/models"
)

// ListFilter narrows a task listing. Zero values mean "no filter".
type ListFilter struct {
	Status models.TaskStatus
	Search string
	Limit  int
	Offset int
}

// Repository is the ownership-scoped task store. Every method that touches an
// existing row takes the owner's userID and filters by it, so a task that
// belongs to someone else is indistinguishable from one that does not exist.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, userID, taskID string) (*models.Task, error)
	List(ctx context.Context, userID string, f ListFilter) ([]*models.Task, error)
	Count(ctx context.Context, userID string, f ListFilter) (int64, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}
