package repository

import (
	"testing"
)

func TestNewTaskRepository(t *testing.T) {
	repo := NewTaskRepository(nil)
	if repo == nil {
		t.Fatal("expected non-nil TaskRepository")
	}
	if repo.db != nil {
		t.Fatal("expected nil db when constructed with nil")
	}
}

func TestTaskSentinelErrors(t *testing.T) {
	if ErrTaskNotFound == nil {
		t.Fatal("ErrTaskNotFound should not be nil")
	}
	if ErrTaskNotFound.Error() != "task not found" {
		t.Fatalf("unexpected error message: %s", ErrTaskNotFound.Error())
	}
}

func TestSortColumns(t *testing.T) {
	for _, field := range []string{"description", "completed", "created_at", "updated_at"} {
		if _, ok := sortColumns[field]; !ok {
			t.Errorf("expected %q to be sortable", field)
		}
	}
	if _, ok := sortColumns["owner_id"]; ok {
		t.Error("owner_id must not be client-sortable")
	}
	if _, ok := sortColumns["id; DROP TABLE tasks"]; ok {
		t.Error("unknown fields must not be sortable")
	}
}
