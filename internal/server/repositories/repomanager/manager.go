package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkazakov/taskdeck/internal/dbx"
	"github.com/dkazakov/taskdeck/internal/server/repositories/attachments"
	"github.com/dkazakov/taskdeck/internal/server/repositories/tasks"
	"github.com/dkazakov/taskdeck/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
