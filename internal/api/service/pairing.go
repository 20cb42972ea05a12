package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
	"github.com/afterlove/couplet/internal/api/store"
	"github.com/afterlove/couplet/pkg/idx"
	"github.com/afterlove/couplet/pkg/slogx"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrInvitationNotPending reports a transition attempted against an
	// invitation that already left the PENDING state. Under two racing
	// accepts, exactly one caller sees this.
	ErrInvitationNotPending = errors.New("invitation is not pending")

	ErrInvitationExpired = errors.New("invitation has expired")
	ErrInvitationActive  = errors.New("an invitation is already active")
	ErrAlreadyPaired     = errors.New("user is already part of a couple")
	ErrSelfInvite        = errors.New("cannot invite yourself")
	ErrSelfAccept        = errors.New("cannot accept your own invitation")
	ErrNotInviter        = errors.New("only the inviter can cancel an invitation")
)

// DefaultInviteTTL is how long an invitation stays open when the caller
// doesn't pick a lifetime.
const DefaultInviteTTL = 7 * 24 * time.Hour

// PairingService owns the invitation lifecycle and the couple records it
// produces. Expiry is lazy: a PENDING invitation past its deadline is
// transitioned when touched (accept or create) or by the housekeeping
// sweep, never proactively at read time in status queries.
type PairingService struct {
	Store     store.Store
	InviteTTL time.Duration
}

func (s *PairingService) inviteTTL() time.Duration {
	if s.InviteTTL > 0 {
		return s.InviteTTL
	}
	return DefaultInviteTTL
}

// CreateInvitation opens a PENDING invitation from the inviter to an email
// address and creates the half-filled couple it will establish.
func (s *PairingService) CreateInvitation(ctx context.Context, inviterID, invitedEmail string, ttl time.Duration) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	invitedEmail = NormalizeEmail(invitedEmail)
	if invitedEmail == "" {
		return domain.Invitation{}, ErrInvalidAuthRequest
	}
	if ttl <= 0 {
		ttl = s.inviteTTL()
	}

	inviter, err := s.Store.Users().GetUserByID(ctx, inviterID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if inviter.Email == invitedEmail {
		log.Warn("user attempted to invite their own email", slog.String("user_id", inviterID))
		return domain.Invitation{}, ErrSelfInvite
	}

	// An established couple blocks a new invitation outright.
	couple, err := s.Store.Couples().GetActiveCoupleByUserID(ctx, inviterID)
	if err == nil && couple.Established() {
		return domain.Invitation{}, ErrAlreadyPaired
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, err
	}

	// So does an active invitation, unless it is a stale PENDING one past
	// its expiry, which we transition on the way through.
	if active, err := s.Store.Invitations().GetLatestActiveInvitationByInviter(ctx, inviterID); err == nil {
		if active.Status == domain.InvitationPending && active.ExpiredAt(time.Now().UTC()) {
			if err := s.expireInvitation(ctx, active.ID); err != nil {
				return domain.Invitation{}, err
			}
		} else {
			return domain.Invitation{}, ErrInvitationActive
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, err
	}

	now := time.Now().UTC()
	newCouple := domain.Couple{
		ID:         idx.New().String(),
		Partner1ID: inviterID,
	}
	invitation := domain.Invitation{
		ID:           idx.New().String(),
		InviterID:    inviterID,
		InvitedEmail: invitedEmail,
		Status:       domain.InvitationPending,
		CoupleID:     newCouple.ID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Couples().CreateCouple(ctx, newCouple); err != nil {
			return err
		}
		if err := tx.Invitations().CreateInvitation(ctx, invitation); err != nil {
			return err
		}
		return tx.Users().SetCoupleID(ctx, inviterID, &newCouple.ID)
	})
	if err != nil {
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	log.Info("invitation created",
		slog.String("invitation_id", invitation.ID),
		slog.String("inviter_id", inviterID),
		slog.Time("expires_at", invitation.ExpiresAt),
	)
	return invitation, nil
}

// AcceptInvitation binds the accepter as partner2 and establishes the
// couple. The PENDING→ACCEPTED transition, the couple establishment and the
// accepter's couple binding are a single transaction; the transition itself
// is a compare-and-swap so a racing accept fails instead of double-applying.
func (s *PairingService) AcceptInvitation(ctx context.Context, invitationID, accepterID string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}

	if inv.Status != domain.InvitationPending {
		return domain.Invitation{}, ErrInvitationNotPending
	}

	now := time.Now().UTC()
	if inv.ExpiredAt(now) {
		// Lazy expiry: flip the stored state before reporting failure.
		if err := s.expireInvitation(ctx, inv.ID); err != nil {
			return domain.Invitation{}, err
		}
		log.Warn("accept attempted on expired invitation", slog.String("invitation_id", inv.ID))
		return domain.Invitation{}, ErrInvitationExpired
	}

	if accepterID == inv.InviterID {
		return domain.Invitation{}, ErrSelfAccept
	}

	if _, err := s.Store.Users().GetUserByID(ctx, accepterID); err != nil {
		return domain.Invitation{}, err
	}

	if couple, err := s.Store.Couples().GetActiveCoupleByUserID(ctx, accepterID); err == nil {
		if couple.ID != inv.CoupleID {
			return domain.Invitation{}, ErrAlreadyPaired
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().TransitionStatus(ctx, inv.ID, domain.InvitationPending, domain.InvitationAccepted); err != nil {
			if errors.Is(err, store.ErrStaleState) {
				return ErrInvitationNotPending
			}
			return err
		}
		if err := tx.Couples().EstablishCouple(ctx, inv.CoupleID, accepterID, now); err != nil {
			return err
		}
		return tx.Users().SetCoupleID(ctx, accepterID, &inv.CoupleID)
	})
	if err != nil {
		if errors.Is(err, ErrInvitationNotPending) {
			log.Warn("concurrent accept lost the race", slog.String("invitation_id", inv.ID))
			return domain.Invitation{}, ErrInvitationNotPending
		}
		log.Error("failed to accept invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	inv.Status = domain.InvitationAccepted
	log.Info("invitation accepted",
		slog.String("invitation_id", inv.ID),
		slog.String("accepter_id", accepterID),
		slog.String("couple_id", inv.CoupleID),
	)
	return inv, nil
}

// CancelInvitation withdraws a PENDING invitation. Only the inviter may do
// this; the orphaned couple row stays behind but is filtered out of every
// status query.
func (s *PairingService) CancelInvitation(ctx context.Context, invitationID, requesterID string) error {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}

	if inv.InviterID != requesterID {
		log.Warn("cancel attempted by non-inviter",
			slog.String("invitation_id", inv.ID),
			slog.String("requester_id", requesterID),
		)
		return ErrNotInviter
	}

	if inv.Status != domain.InvitationPending {
		return ErrInvitationNotPending
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().TransitionStatus(ctx, inv.ID, domain.InvitationPending, domain.InvitationCancelled); err != nil {
			if errors.Is(err, store.ErrStaleState) {
				return ErrInvitationNotPending
			}
			return err
		}
		// The couple row it would have established is void now; drop the
		// inviter's reference so the slot is free for a fresh invitation.
		return tx.Users().SetCoupleID(ctx, inv.InviterID, nil)
	})
	if err != nil {
		if errors.Is(err, ErrInvitationNotPending) {
			return ErrInvitationNotPending
		}
		log.Error("failed to cancel invitation", slog.Any("error", err))
		return err
	}

	log.Info("invitation cancelled", slog.String("invitation_id", inv.ID))
	return nil
}

// GetPartnerStatus derives the user's partner view. The stored invitation
// status is reported as-is even when past expiry (lazy expiry).
func (s *PairingService) GetPartnerStatus(ctx context.Context, userID string) (PartnerStatus, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		return PartnerStatus{}, err
	}

	var couple *domain.Couple
	if c, err := s.Store.Couples().GetActiveCoupleByUserID(ctx, userID); err == nil {
		couple = &c
	} else if !errors.Is(err, store.ErrNotFound) {
		return PartnerStatus{}, err
	}

	var invitation *domain.Invitation
	if inv, err := s.Store.Invitations().GetLatestActiveInvitationByInviter(ctx, userID); err == nil {
		invitation = &inv
	} else if !errors.Is(err, store.ErrNotFound) {
		return PartnerStatus{}, err
	}

	partnerName, err := s.partnerName(ctx, userID, couple, invitation)
	if err != nil {
		return PartnerStatus{}, err
	}

	return derivePartnerStatus(couple, invitation, partnerName), nil
}

// partnerName resolves the display name feeding the derivation: the other
// half of an established couple, or the already-linked partner2 of the
// invitation's couple.
func (s *PairingService) partnerName(ctx context.Context, userID string, couple *domain.Couple, invitation *domain.Invitation) (string, error) {
	var partnerID string

	switch {
	case couple != nil && couple.Established():
		partnerID = couple.PartnerOf(userID)
	case invitation != nil:
		invCouple, err := s.Store.Couples().GetCoupleByID(ctx, invitation.CoupleID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		if invCouple.Partner2ID != nil {
			partnerID = *invCouple.Partner2ID
		}
	}

	if partnerID == "" {
		return "", nil
	}

	partner, err := s.Store.Users().GetUserByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return partner.Name, nil
}

func (s *PairingService) expireInvitation(ctx context.Context, invitationID string) error {
	err := s.Store.Invitations().TransitionStatus(ctx, invitationID, domain.InvitationPending, domain.InvitationExpired)
	if err != nil && !errors.Is(err, store.ErrStaleState) {
		return err
	}
	// Losing the race to expire means someone else already moved it on;
	// either way the invitation is no longer PENDING.
	return nil
}
