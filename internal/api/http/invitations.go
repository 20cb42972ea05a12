package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/slogx"
)

type InvitationsHandler struct {
	PairingService *service.PairingService
}

// HandleCreate godoc
//
//	@Summary		Create Invitation Endpoint
//	@Description	Invite a partner by email. Creates a provisional couple and a pending invitation that expires after the configured TTL.
//	@Description	A user with an established partner or an outstanding pending invitation cannot create another.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateInvitationRequest	true	"Invitation request"
//	@Success		201		{object}	InvitationResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	invitation, err := h.PairingService.CreateInvitation(ctx, userID, req.InvitedEmail, 0)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAuthRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invitedEmail is required")
		case errors.Is(err, service.ErrSelfInvite):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "You cannot invite yourself")
		case errors.Is(err, service.ErrAlreadyPaired):
			httpx.WriteError(w, http.StatusConflict, "already_paired", "You already have a partner")
		case errors.Is(err, service.ErrInvitationActive):
			httpx.WriteError(w, http.StatusConflict, "invitation_active", "You already have a pending invitation")
		default:
			log.Error("failed to create invitation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toInvitationResponse(invitation))
}

// HandleAccept godoc
//
//	@Summary		Accept Invitation Endpoint
//	@Description	Accept a pending invitation, establishing the couple between inviter and accepter.
//	@Description	Expired invitations return 410; invitations already accepted or cancelled return 409.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Invitation ID"
//	@Success		200	{object}	InvitationResponse
//	@Failure		400	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		410	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/accept [post].
func (h *InvitationsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	invitation, err := h.PairingService.AcceptInvitation(ctx, r.PathValue("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Invitation not found")
		case errors.Is(err, service.ErrInvitationExpired):
			httpx.WriteError(w, http.StatusGone, "invitation_expired", "This invitation has expired")
		case errors.Is(err, service.ErrInvitationNotPending):
			httpx.WriteError(w, http.StatusConflict, "invalid_state", "This invitation is no longer pending")
		case errors.Is(err, service.ErrSelfAccept):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "You cannot accept your own invitation")
		case errors.Is(err, service.ErrAlreadyPaired):
			httpx.WriteError(w, http.StatusConflict, "already_paired", "You already have a partner")
		default:
			log.Error("failed to accept invitation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to accept invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toInvitationResponse(invitation))
}

// HandleCancel godoc
//
//	@Summary		Cancel Invitation Endpoint
//	@Description	Cancel a pending invitation. Only the inviter may cancel; a cancelled invitation never confers pairing.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204	"invitation cancelled"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id} [delete].
func (h *InvitationsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	err := h.PairingService.CancelInvitation(ctx, r.PathValue("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Invitation not found")
		case errors.Is(err, service.ErrNotInviter):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only the inviter can cancel an invitation")
		case errors.Is(err, service.ErrInvitationNotPending):
			httpx.WriteError(w, http.StatusConflict, "invalid_state", "This invitation is no longer pending")
		default:
			log.Error("failed to cancel invitation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to cancel invitation")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
