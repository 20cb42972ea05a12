package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/slogx"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Account Registration Endpoint
//	@Description	Create a new account with an email, display name and password. Returns the created user and a bearer access token for immediate use.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest		true	"Registration request"
//	@Success		201		{object}	AuthResponse		"user, access_token"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, token, err := h.AuthService.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAuthRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Password must be at least 6 characters")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "An account with this email already exists")
		default:
			log.Error("failed to register user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create account")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, AuthResponse{
		User:        toUserResponse(user),
		AccessToken: token,
	})
}
