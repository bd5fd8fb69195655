// Package tasks provides the PostgreSQL-backed, ownership-scoped task
// repository. user_id is part of every WHERE clause.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/dbx"
	"github.com/dkazakov/taskdeck/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`INSERT INTO tasks (user_id, title, description, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Status).Scan(&task.ID, &task.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	query :=
		`SELECT id, user_id, title, description, status, created_at FROM tasks
		 WHERE id = $1 AND user_id = $2
		 `

	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, taskID, userID).
		Scan(&task.ID, &task.UserID, &task.Title, &task.Description, &task.Status, &task.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

// likeEscaper neutralizes LIKE metacharacters so a search term matches
// literally. Pairs with the ESCAPE clause in filterClauses.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterClauses renders the optional status/search filters as SQL conditions.
// Arguments start after userID, which is always $1.
func filterClauses(f ListFilter) (string, []any) {
	var clauses []string
	var args []any
	n := 2

	if f.Status != "" {
		clauses = append(clauses, " AND status = $"+strconv.Itoa(n))
		args = append(args, f.Status)
		n++
	}
	if f.Search != "" {
		clauses = append(clauses, ` AND title LIKE '%' || $`+strconv.Itoa(n)+` || '%' ESCAPE '\'`)
		args = append(args, likeEscaper.Replace(f.Search))
		n++
	}

	return strings.Join(clauses, ""), args
}

func (r *PostgresRepository) List(ctx context.Context, userID string, f ListFilter) ([]*models.Task, error) {
	where, args := filterClauses(f)

	query := `SELECT id, user_id, title, description, status, created_at FROM tasks
		 WHERE user_id = $1` + where +
		` ORDER BY created_at DESC
		 LIMIT $` + strconv.Itoa(len(args)+2) + ` OFFSET $` + strconv.Itoa(len(args)+3)

	queryArgs := append([]any{userID}, args...)
	queryArgs = append(queryArgs, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID, &task.UserID, &task.Title, &task.Description, &task.Status, &task.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, userID string, f ListFilter) (int64, error) {
	where, args := filterClauses(f)

	query := `SELECT COUNT(*) FROM tasks
		 WHERE user_id = $1` + where

	queryArgs := append([]any{userID}, args...)

	var total int64
	if err := r.db.QueryRowContext(ctx, query, queryArgs...).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

// Update rewrites the mutable columns of the caller's task. A row owned by
// another user matches nothing and reports ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks SET title = $1, description = $2, status = $3
		 WHERE id = $4 AND user_id = $5
		 RETURNING id, user_id, title, description, status, created_at
		 `

	updated := &models.Task{}
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.ID, task.UserID).
		Scan(&updated.ID, &updated.UserID, &updated.Title, &updated.Description, &updated.Status, &updated.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, taskID string) error {
	query :=
		`DELETE FROM tasks
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
