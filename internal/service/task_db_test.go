package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/taskit/taskit-go/internal/repository"
)

var taskRowColumns = []string{"id", "owner_id", "description", "completed", "created_at", "updated_at"}

func newMockTaskService(t *testing.T) (*TaskService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewTaskService(repository.NewTaskRepository(db)), mock
}

func TestTaskGet_OtherOwnerNotFound(t *testing.T) {
	svc, mock := newMockTaskService(t)

	// User 2 probing user 1's task gets the same answer as probing a task
	// that never existed.
	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	_, err := svc.Get(context.Background(), 2, 5)
	if err != ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTaskUpdate_OtherOwnerNotFound(t *testing.T) {
	svc, mock := newMockTaskService(t)

	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	_, err := svc.Update(context.Background(), 2, 5, map[string]any{"completed": true})
	if err != ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTaskUpdate_InvalidCompletedValue(t *testing.T) {
	svc, mock := newMockTaskService(t)
	now := time.Now()

	// "completed" is an allowed field, so the allow-list passes and the
	// lookup happens; the bad value must then fail as an invalid value,
	// not as a disallowed field.
	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(int64(5), int64(1), "buy milk", false, now, now))

	_, err := svc.Update(context.Background(), 1, 5, map[string]any{"completed": "yes"})
	if !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("expected ErrInvalidFieldValue, got %v", err)
	}
	if errors.Is(err, ErrFieldNotAllowed) {
		t.Error("a bad value for an allowed field must not report ErrFieldNotAllowed")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTaskUpdate_InvalidDescriptionValue(t *testing.T) {
	svc, mock := newMockTaskService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \? AND owner_id = \?`).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(int64(5), int64(1), "buy milk", false, now, now))

	_, err := svc.Update(context.Background(), 1, 5, map[string]any{"description": 42})
	if !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("expected ErrInvalidFieldValue, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
