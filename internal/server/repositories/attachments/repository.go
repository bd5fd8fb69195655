package attachments

import (
	"context"

	"github.com/dkazakov/taskdeck/internal/server/models"
)

// Repository stores attachment metadata. Ownership is enforced one level up:
// callers resolve the task through the scoped tasks repository before
// touching attachments.
type Repository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	ListByTask(ctx context.Context, taskID string) ([]*models.Attachment, error)
}
