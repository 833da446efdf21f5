package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/taskit/taskit-go/internal/model"
	"github.com/taskit/taskit-go/internal/repository"
)

var (
	ErrDescriptionRequired  = errors.New("description is required")
	ErrDuplicateDescription = errors.New("task with this description already exists")
	ErrTaskNotFound         = errors.New("task not found")
	ErrFieldNotAllowed      = errors.New("invalid update field")
	ErrInvalidFieldValue    = errors.New("invalid field value")
)

// taskUpdatableFields is the allow-list for task updates.
var taskUpdatableFields = map[string]bool{
	"description": true,
	"completed":   true,
}

// TaskService handles task business logic. Every operation takes the
// authenticated owner's ID and scopes reads and mutations to it; a task owned
// by someone else is indistinguishable from a task that does not exist.
type TaskService struct {
	repo *repository.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create creates a task owned by the given user.
func (s *TaskService) Create(ctx context.Context, ownerID int64, req model.CreateTaskRequest) (model.TaskResponse, error) {
	if strings.TrimSpace(req.Description) == "" {
		return model.TaskResponse{}, ErrDescriptionRequired
	}

	task := &model.Task{
		OwnerID:     ownerID,
		Description: req.Description,
		Completed:   req.Completed,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return model.TaskResponse{}, err
	}

	created, err := s.repo.GetByID(ctx, ownerID, task.ID)
	if err != nil {
		return model.TaskResponse{}, err
	}
	return created.ToResponse(), nil
}

// List returns the owner's tasks, filtered, sorted and paginated per the
// query options.
func (s *TaskService) List(ctx context.Context, ownerID int64, q model.TaskListQuery) ([]model.TaskResponse, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}

	result := make([]model.TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = t.ToResponse()
	}
	return result, nil
}

// Get returns one of the owner's tasks by ID.
func (s *TaskService) Get(ctx context.Context, ownerID, id int64) (model.TaskResponse, error) {
	task, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}
	return task.ToResponse(), nil
}

// Update applies a partial update to one of the owner's tasks. The key
// allow-list is checked before any lookup so a disallowed payload never
// reveals whether the task exists.
func (s *TaskService) Update(ctx context.Context, ownerID, id int64, updates map[string]any) (model.TaskResponse, error) {
	for key := range updates {
		if !taskUpdatableFields[key] {
			return model.TaskResponse{}, fmt.Errorf("%w: %q", ErrFieldNotAllowed, key)
		}
	}

	task, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	if v, ok := updates["description"]; ok {
		desc, ok := v.(string)
		if !ok {
			return model.TaskResponse{}, fmt.Errorf("%w: %q", ErrInvalidFieldValue, "description")
		}
		if strings.TrimSpace(desc) == "" {
			return model.TaskResponse{}, ErrDescriptionRequired
		}
		task.Description = desc
	}

	if v, ok := updates["completed"]; ok {
		completed, ok := v.(bool)
		if !ok {
			return model.TaskResponse{}, fmt.Errorf("%w: %q", ErrInvalidFieldValue, "completed")
		}
		task.Completed = completed
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return model.TaskResponse{}, err
	}

	updated, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return model.TaskResponse{}, err
	}
	return updated.ToResponse(), nil
}

// Delete removes one of the owner's tasks and returns the removed record.
func (s *TaskService) Delete(ctx context.Context, ownerID, id int64) (model.TaskResponse, error) {
	task, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}
	return task.ToResponse(), nil
}

// DescriptionExists reports whether any task, regardless of owner, already
// has the exact description. Consumed by the duplicate-guard middleware
// ahead of Create.
func (s *TaskService) DescriptionExists(ctx context.Context, description string) (bool, error) {
	return s.repo.DescriptionExists(ctx, description)
}

// ParseListQuery builds a TaskListQuery from raw URL query values.
// Non-numeric limit/skip values degrade to their no-op defaults rather than
// failing the request.
func ParseListQuery(completed, sort, limit, skip string) model.TaskListQuery {
	var q model.TaskListQuery

	if completed != "" {
		b := completed == "true"
		q.Completed = &b
	}

	if sort != "" {
		if field, found := strings.CutSuffix(sort, "_desc"); found {
			q.SortField = field
			q.SortDesc = true
		} else if field, found := strings.CutSuffix(sort, "_asc"); found {
			q.SortField = field
		} else {
			q.SortField = sort
		}
	}

	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		q.Limit = n
	}
	if n, err := strconv.Atoi(skip); err == nil && n > 0 {
		q.Offset = n
	}

	return q
}
