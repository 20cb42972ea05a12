package http

import (
	"errors"
	"net/http"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/internal/api/store"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/slogx"
)

type PartnerStatusHandler struct {
	PairingService *service.PairingService
}

// ServeHTTP godoc
//
//	@Summary		Partner Status Endpoint
//	@Description	Return the caller's derived pairing view: an established partner, an outstanding invitation, or neither.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	PartnerStatusResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users/me/partner-status [get].
func (h *PartnerStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	status, err := h.PairingService.GetPartnerStatus(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Account no longer exists")
			return
		}
		log.Error("failed to derive partner status", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load partner status")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPartnerStatusResponse(status))
}
