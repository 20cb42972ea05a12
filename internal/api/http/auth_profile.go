package http

import (
	"errors"
	"net/http"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/internal/api/store"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/slogx"
)

type ProfileHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Profile Endpoint
//	@Description	Return the authenticated user's own account, their couple with both partner summaries, and every invitation they have sent.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	ProfileResponse		"user, couple, invitationsSent"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/auth/profile [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	profile, err := h.AuthService.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token outlived the account.
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Account no longer exists")
			return
		}
		log.Error("failed to load profile", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}
