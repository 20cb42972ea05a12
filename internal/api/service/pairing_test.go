package service

import (
	"context"
	"testing"
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
	"github.com/stretchr/testify/require"

	apistore "github.com/afterlove/couplet/internal/api/store"
)

func newPairingFixture(t *testing.T) (*AuthService, *PairingService) {
	t.Helper()
	auth := newTestAuthService(t)
	pairing := &PairingService{Store: auth.Store}
	return auth, pairing
}

func registerUser(t *testing.T, auth *AuthService, email, name string) domain.User {
	t.Helper()
	user, _, err := auth.Register(context.Background(), email, name, "secret-password")
	require.NoError(t, err)
	return user
}

func TestInvitationLifecycleAcceptance(t *testing.T) {
	ctx := context.Background()
	auth, pairing := newPairingFixture(t)

	alice := registerUser(t, auth, "alice@example.com", "Alice")
	bob := registerUser(t, auth, "bob@example.com", "Bob")

	invitation, err := pairing.CreateInvitation(ctx, alice.ID, "Bob@Example.com", 0)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, invitation.Status)
	require.Equal(t, "bob@example.com", invitation.InvitedEmail)
	require.WithinDuration(t, time.Now().Add(DefaultInviteTTL), invitation.ExpiresAt, time.Minute)

	t.Run("inviter sees outstanding invitation", func(t *testing.T) {
		status, err := pairing.GetPartnerStatus(ctx, alice.ID)
		require.NoError(t, err)
		require.False(t, status.HasPartner)
		require.True(t, status.HasInvitation)
		require.Equal(t, domain.InvitationPending, status.InvitationStatus)
		require.Equal(t, "bob@example.com", status.InvitedEmail)
	})

	accepted, err := pairing.AcceptInvitation(ctx, invitation.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, accepted.Status)

	t.Run("both partners see each other after acceptance", func(t *testing.T) {
		aliceStatus, err := pairing.GetPartnerStatus(ctx, alice.ID)
		require.NoError(t, err)
		require.True(t, aliceStatus.HasPartner)
		require.Equal(t, "Bob", aliceStatus.PartnerName)

		bobStatus, err := pairing.GetPartnerStatus(ctx, bob.ID)
		require.NoError(t, err)
		require.True(t, bobStatus.HasPartner)
		require.Equal(t, "Alice", bobStatus.PartnerName)
	})

	t.Run("profile carries the established couple", func(t *testing.T) {
		profile, err := auth.GetProfile(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, profile.Couple)
		require.NotNil(t, profile.Couple.Couple.EstablishedAt)
		require.Equal(t, alice.ID, profile.Couple.Partner1.ID)
		require.NotNil(t, profile.Couple.Partner2)
		require.Equal(t, bob.ID, profile.Couple.Partner2.ID)
		require.Len(t, profile.InvitationsSent, 1)
	})
}

func TestCreateInvitationGuards(t *testing.T) {
	ctx := context.Background()
	auth, pairing := newPairingFixture(t)

	alice := registerUser(t, auth, "alice@example.com", "Alice")
	bob := registerUser(t, auth, "bob@example.com", "Bob")

	t.Run("requires an email", func(t *testing.T) {
		_, err := pairing.CreateInvitation(ctx, alice.ID, "  ", 0)
		require.ErrorIs(t, err, ErrInvalidAuthRequest)
	})

	t.Run("rejects self invitation", func(t *testing.T) {
		_, err := pairing.CreateInvitation(ctx, alice.ID, "ALICE@example.com", 0)
		require.ErrorIs(t, err, ErrSelfInvite)
	})

	invitation, err := pairing.CreateInvitation(ctx, alice.ID, "bob@example.com", 0)
	require.NoError(t, err)

	t.Run("one outstanding invitation at a time", func(t *testing.T) {
		_, err := pairing.CreateInvitation(ctx, alice.ID, "carol@example.com", 0)
		require.ErrorIs(t, err, ErrInvitationActive)
	})

	_, err = pairing.AcceptInvitation(ctx, invitation.ID, bob.ID)
	require.NoError(t, err)

	t.Run("paired users cannot invite again", func(t *testing.T) {
		_, err := pairing.CreateInvitation(ctx, alice.ID, "carol@example.com", 0)
		require.ErrorIs(t, err, ErrAlreadyPaired)

		_, err = pairing.CreateInvitation(ctx, bob.ID, "carol@example.com", 0)
		require.ErrorIs(t, err, ErrAlreadyPaired)
	})
}

func TestAcceptInvitationGuards(t *testing.T) {
	ctx := context.Background()
	auth, pairing := newPairingFixture(t)

	alice := registerUser(t, auth, "alice@example.com", "Alice")
	bob := registerUser(t, auth, "bob@example.com", "Bob")
	carol := registerUser(t, auth, "carol@example.com", "Carol")
	dave := registerUser(t, auth, "dave@example.com", "Dave")

	invitation, err := pairing.CreateInvitation(ctx, alice.ID, "bob@example.com", 0)
	require.NoError(t, err)

	t.Run("unknown invitation", func(t *testing.T) {
		_, err := pairing.AcceptInvitation(ctx, "missing-invitation", bob.ID)
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("inviter cannot accept their own invitation", func(t *testing.T) {
		_, err := pairing.AcceptInvitation(ctx, invitation.ID, alice.ID)
		require.ErrorIs(t, err, ErrSelfAccept)
	})

	_, err = pairing.AcceptInvitation(ctx, invitation.ID, bob.ID)
	require.NoError(t, err)

	t.Run("second acceptance loses", func(t *testing.T) {
		_, err := pairing.AcceptInvitation(ctx, invitation.ID, carol.ID)
		require.ErrorIs(t, err, ErrInvitationNotPending)
	})

	t.Run("paired accepter is rejected", func(t *testing.T) {
		inv, err := pairing.CreateInvitation(ctx, dave.ID, "bob@example.com", 0)
		require.NoError(t, err)

		_, err = pairing.AcceptInvitation(ctx, inv.ID, bob.ID)
		require.ErrorIs(t, err, ErrAlreadyPaired)
	})
}

func TestCancelInvitation(t *testing.T) {
	ctx := context.Background()
	auth, pairing := newPairingFixture(t)

	alice := registerUser(t, auth, "alice@example.com", "Alice")
	bob := registerUser(t, auth, "bob@example.com", "Bob")

	invitation, err := pairing.CreateInvitation(ctx, alice.ID, "bob@example.com", 0)
	require.NoError(t, err)

	t.Run("only the inviter can cancel", func(t *testing.T) {
		err := pairing.CancelInvitation(ctx, invitation.ID, bob.ID)
		require.ErrorIs(t, err, ErrNotInviter)
	})

	require.NoError(t, pairing.CancelInvitation(ctx, invitation.ID, alice.ID))

	t.Run("cancelled invitation confers nothing", func(t *testing.T) {
		status, err := pairing.GetPartnerStatus(ctx, alice.ID)
		require.NoError(t, err)
		require.False(t, status.HasPartner)
		require.False(t, status.HasInvitation)
	})

	t.Run("cancelled invitation cannot be accepted", func(t *testing.T) {
		_, err := pairing.AcceptInvitation(ctx, invitation.ID, bob.ID)
		require.ErrorIs(t, err, ErrInvitationNotPending)
	})

	t.Run("cancel is not idempotent", func(t *testing.T) {
		err := pairing.CancelInvitation(ctx, invitation.ID, alice.ID)
		require.ErrorIs(t, err, ErrInvitationNotPending)
	})

	t.Run("inviter can start over", func(t *testing.T) {
		_, err := pairing.CreateInvitation(ctx, alice.ID, "bob@example.com", 0)
		require.NoError(t, err)
	})
}

func TestInvitationExpiry(t *testing.T) {
	ctx := context.Background()
	auth, pairing := newPairingFixture(t)

	alice := registerUser(t, auth, "alice@example.com", "Alice")
	bob := registerUser(t, auth, "bob@example.com", "Bob")

	invitation, err := pairing.CreateInvitation(ctx, alice.ID, "bob@example.com", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	t.Run("stored status is reported as-is before any transition", func(t *testing.T) {
		status, err := pairing.GetPartnerStatus(ctx, alice.ID)
		require.NoError(t, err)
		require.True(t, status.HasInvitation)
		require.Equal(t, domain.InvitationPending, status.InvitationStatus)
	})

	t.Run("acceptance past expiry fails and transitions", func(t *testing.T) {
		_, err := pairing.AcceptInvitation(ctx, invitation.ID, bob.ID)
		require.ErrorIs(t, err, ErrInvitationExpired)

		stored, err := pairing.Store.Invitations().GetInvitationByID(ctx, invitation.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationExpired, stored.Status)
	})

	t.Run("expired invitation no longer blocks a new one", func(t *testing.T) {
		_, err := pairing.CreateInvitation(ctx, alice.ID, "bob@example.com", 0)
		require.NoError(t, err)
	})
}

func TestMarkExpiredInvitationsSweep(t *testing.T) {
	ctx := context.Background()
	auth, pairing := newPairingFixture(t)

	alice := registerUser(t, auth, "alice@example.com", "Alice")

	_, err := pairing.CreateInvitation(ctx, alice.ID, "bob@example.com", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	swept, err := pairing.Store.Invitations().MarkExpiredInvitations(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, swept)

	status, err := pairing.GetPartnerStatus(ctx, alice.ID)
	require.NoError(t, err)
	require.False(t, status.HasInvitation)

	_, err = pairing.Store.Invitations().GetLatestActiveInvitationByInviter(ctx, alice.ID)
	require.ErrorIs(t, err, apistore.ErrNotFound)
}
