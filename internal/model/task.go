package model

import "time"

// Task represents a task in the database. OwnerID is fixed at creation and
// never changes afterwards.
type Task struct {
	ID          int64
	OwnerID     int64
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskResponse represents task data for API responses.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts a Task to its client-facing representation.
func (t *Task) ToResponse() TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TaskListQuery carries the parsed list options: an optional completed filter,
// a single sort field with direction, and limit/offset pagination. Zero limit
// means no limit; zero offset means no skip.
type TaskListQuery struct {
	Completed *bool
	SortField string
	SortDesc  bool
	Limit     int
	Offset    int
}
