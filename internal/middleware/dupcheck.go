package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// DescriptionChecker reports whether any task already carries the given
// description. Implemented by service.TaskService.
type DescriptionChecker interface {
	DescriptionExists(ctx context.Context, description string) (bool, error)
}

// DuplicateTask returns middleware that rejects task creation when a task
// with the same description already exists, for any owner. The body is
// peeked and restored so the downstream handler can decode it again.
func DuplicateTask(checker DescriptionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var peek struct {
				Description string `json:"description"`
			}
			if err := json.Unmarshal(body, &peek); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			if peek.Description != "" {
				exists, err := checker.DescriptionExists(r.Context(), peek.Description)
				if err != nil {
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if exists {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusBadRequest)
					json.NewEncoder(w).Encode(map[string]string{
						"error":       "task with this description already exists",
						"description": peek.Description,
					})
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
