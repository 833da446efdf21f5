package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/taskit/taskit-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, owner_id, description, completed, created_at, updated_at`

// sortColumns maps client-facing sort fields to columns. Anything outside
// this map falls back to created_at.
var sortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// TaskRepository handles task persistence operations. Every read and
// mutation is scoped by owner; an ID belonging to another owner behaves
// exactly like an ID that does not exist.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task and sets the generated ID on the task struct.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (owner_id, description, completed) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, task.OwnerID, task.Description, task.Completed)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	task.ID = id
	return nil
}

// GetByID retrieves a task by ID, scoped to the given owner.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id int64) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ?`
	return scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// ListByOwner retrieves the owner's tasks per the given query options.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64, q model.TaskListQuery) ([]model.Task, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ?`)
	args := []any{ownerID}

	if q.Completed != nil {
		sb.WriteString(` AND completed = ?`)
		args = append(args, *q.Completed)
	}

	col, ok := sortColumns[q.SortField]
	if !ok {
		col = "created_at"
	}
	sb.WriteString(` ORDER BY ` + col)
	if q.SortDesc {
		sb.WriteString(` DESC`)
	} else {
		sb.WriteString(` ASC`)
	}

	// MySQL has no OFFSET without LIMIT; a huge limit stands in for "all".
	if q.Limit > 0 || q.Offset > 0 {
		limit := int64(q.Limit)
		if limit <= 0 {
			limit = math.MaxInt64
		}
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, limit, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Description, &t.Completed,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Update persists the mutable fields of a task, scoped to the given owner.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks SET description = ?, completed = ? WHERE id = ? AND owner_id = ?`
	_, err := r.db.ExecContext(ctx, query, task.Description, task.Completed, task.ID, task.OwnerID)
	return err
}

// Delete removes a task and returns the removed record in one owner-scoped
// step.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id int64) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ? FOR UPDATE`
	task, err := scanTask(tx.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteAllForOwner removes every task owned by the given user. Used by the
// account-deletion cascade.
func (r *TaskRepository) DeleteAllForOwner(ctx context.Context, ownerID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = ?`, ownerID)
	return err
}

// DescriptionExists reports whether any task, regardless of owner, already
// carries the exact description.
func (r *TaskRepository) DescriptionExists(ctx context.Context, description string) (bool, error) {
	var one int
	query := `SELECT 1 FROM tasks WHERE description = ? LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, description).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanTask(row *sql.Row) (*model.Task, error) {
	task := &model.Task{}
	err := row.Scan(
		&task.ID, &task.OwnerID, &task.Description, &task.Completed,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}
