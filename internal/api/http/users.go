package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/internal/api/store"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleList godoc
//
//	@Summary		List Users Endpoint
//	@Description	Return all registered users.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{array}		UserResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list users")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get User Endpoint
//	@Description	Return a single user by id.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	UserResponse
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, err := h.UserService.GetUserByID(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		log.Error("failed to get user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to get user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleCreate godoc
//
//	@Summary		Create User Endpoint
//	@Description	Create a user record with a placeholder credential. The account cannot log in until a password is set via the registration flow.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"Create user request"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, err := h.UserService.CreateUser(ctx, req.Email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAuthRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "An account with this email already exists")
		default:
			log.Error("failed to create user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleUpdate godoc
//
//	@Summary		Update User Endpoint
//	@Description	Update a user's name and/or email. Omitted fields keep their current value.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User ID"
//	@Param			request	body		UpdateUserRequest	true	"Update user request"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, err := h.UserService.UpdateUser(ctx, r.PathValue("id"), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "An account with this email already exists")
		default:
			log.Error("failed to update user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdatePassword godoc
//
//	@Summary		Update Password Endpoint
//	@Description	Replace a user's password. The new password must be at least six characters.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		UpdatePasswordRequest	true	"Update password request"
//	@Success		204		"password updated"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/password [put].
func (h *UsersHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	err := h.UserService.UpdatePassword(ctx, r.PathValue("id"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Password must be at least 6 characters")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
		default:
			log.Error("failed to update password", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update password")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete User Endpoint
//	@Description	Delete a user and return the removed record.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	UserResponse
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, err := h.UserService.DeleteUser(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		log.Error("failed to delete user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
