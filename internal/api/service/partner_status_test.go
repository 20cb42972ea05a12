package service

import (
	"testing"
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
	"github.com/stretchr/testify/require"
)

func TestDerivePartnerStatus(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	established := &domain.Couple{
		ID:            "couple-1",
		Partner1ID:    "user-1",
		EstablishedAt: &now,
	}
	provisional := &domain.Couple{
		ID:         "couple-2",
		Partner1ID: "user-1",
	}
	pending := &domain.Invitation{
		ID:           "inv-1",
		InviterID:    "user-1",
		InvitedEmail: "partner@example.com",
		Status:       domain.InvitationPending,
		CoupleID:     "couple-2",
		CreatedAt:    now,
		ExpiresAt:    now.Add(7 * 24 * time.Hour),
	}
	cancelled := &domain.Invitation{
		ID:       "inv-2",
		Status:   domain.InvitationCancelled,
		CoupleID: "couple-2",
	}

	t.Run("no couple and no invitation yields empty status", func(t *testing.T) {
		status := derivePartnerStatus(nil, nil, "")
		require.False(t, status.HasPartner)
		require.False(t, status.HasInvitation)
		require.Empty(t, status.PartnerName)
	})

	t.Run("established couple wins regardless of invitation", func(t *testing.T) {
		status := derivePartnerStatus(established, pending, "Sam")
		require.True(t, status.HasPartner)
		require.False(t, status.HasInvitation)
		require.Equal(t, domain.InvitationAccepted, status.InvitationStatus)
		require.Equal(t, "Sam", status.PartnerName)
		require.Nil(t, status.InvitationCreatedAt)
	})

	t.Run("provisional couple with pending invitation", func(t *testing.T) {
		status := derivePartnerStatus(provisional, pending, "")
		require.False(t, status.HasPartner)
		require.True(t, status.HasInvitation)
		require.Equal(t, domain.InvitationPending, status.InvitationStatus)
		require.Equal(t, "partner@example.com", status.InvitedEmail)
		require.NotNil(t, status.InvitationCreatedAt)
		require.NotNil(t, status.InvitationExpiresAt)
		require.Equal(t, pending.ExpiresAt, *status.InvitationExpiresAt)
	})

	t.Run("terminal invitation confers nothing", func(t *testing.T) {
		status := derivePartnerStatus(nil, cancelled, "")
		require.False(t, status.HasPartner)
		require.False(t, status.HasInvitation)
	})

	t.Run("provisional couple without invitation confers nothing", func(t *testing.T) {
		status := derivePartnerStatus(provisional, nil, "")
		require.False(t, status.HasPartner)
		require.False(t, status.HasInvitation)
	})
}
