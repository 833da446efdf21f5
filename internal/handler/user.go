package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskit/taskit-go/internal/imaging"
	"github.com/taskit/taskit-go/internal/middleware"
	"github.com/taskit/taskit-go/internal/model"
	"github.com/taskit/taskit-go/internal/service"
)

// UserHandler handles HTTP requests for registration, sessions, profile and
// avatar operations.
type UserHandler struct {
	service *service.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{service: svc}
}

// HandleRegister handles POST /users requests.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /users/login requests.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /users/logout requests, ending only the session
// whose token authenticated this request.
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	token, tok := middleware.TokenFromContext(r.Context())
	if !ok || !tok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	if err := h.service.Revoke(r.Context(), user.ID, token); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "logout complete"})
}

// HandleLogoutAll handles POST /users/logout-all requests, ending every
// session of the authenticated user.
func (h *UserHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	if err := h.service.RevokeAll(r.Context(), user.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "logged out from all devices"})
}

// HandleGetProfile handles GET /users/me requests.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	writeJSON(w, http.StatusOK, user.ToResponse())
}

// HandleUpdateProfile handles PATCH /users/me requests.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	var updates map[string]any
	if !decodeJSON(w, r, &updates) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, updates)
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, updated.ToResponse())
}

// HandleDeleteAccount handles DELETE /users/me requests.
func (h *UserHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	if err := h.service.DeleteAccount(r.Context(), user); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "delete successful"})
}

// HandleUploadAvatar handles POST /users/me/avatar requests. The image
// arrives as the multipart field "upload".
func (h *UserHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(64<<10))

	file, header, err := r.FormFile("upload")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("upload file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxUploadBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("could not read upload"))
		return
	}

	if err := h.service.UploadAvatar(r.Context(), user.ID, header.Filename, data); err != nil {
		switch {
		case errors.Is(err, imaging.ErrBadFormat),
			errors.Is(err, imaging.ErrTooLarge),
			errors.Is(err, imaging.ErrDecode):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "avatar uploaded"})
}

// HandleGetAvatar handles GET /users/{id}/avatar requests. Public; serves the
// stored PNG.
func (h *UserHandler) HandleGetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("no user or image found"))
		return
	}

	avatar, err := h.service.GetAvatar(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNoAvatar):
			writeJSON(w, http.StatusNotFound, errorResponse("no user or image found"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(avatar)
}

// HandleDeleteAvatar handles DELETE /users/me/avatar requests.
func (h *UserHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	if err := h.service.DeleteAvatar(r.Context(), user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNoAvatar):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "avatar deleted"})
}

// isValidationError reports whether an auth service error maps to 400.
func isValidationError(err error) bool {
	for _, target := range []error{
		service.ErrNameRequired,
		service.ErrEmailRequired,
		service.ErrEmailInvalid,
		service.ErrEmailTaken,
		service.ErrPasswordRequired,
		service.ErrPasswordTooShort,
		service.ErrPasswordForbidden,
		service.ErrAgeTooLow,
		service.ErrFieldNotAllowed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
