package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Authenticate with email and password. Returns the user and a bearer access token.
//	@Description	Unknown email and wrong password produce the same 401 response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest		true	"Login request"
//	@Success		200		{object}	AuthResponse		"user, access_token"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, token, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAuthRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		default:
			log.Error("failed to login user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to login")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		User:        toUserResponse(user),
		AccessToken: token,
	})
}
