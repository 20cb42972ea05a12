package service

import (
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
)

// PartnerStatus is the single consistent partner view derived per user.
// Exactly one of three shapes comes out: paired, invitation outstanding, or
// neither.
type PartnerStatus struct {
	HasPartner       bool
	HasInvitation    bool
	InvitationStatus domain.InvitationStatus

	// Invitation details, set only when HasInvitation.
	InvitedEmail        string
	InvitationCreatedAt *time.Time
	InvitationExpiresAt *time.Time

	// PartnerName is the display name of the established partner, or of the
	// invitation's partner2 once linked.
	PartnerName string
}

// derivePartnerStatus is the pure decision table over the three inputs.
// Precedence is fixed:
//
//	| couple established | active invitation | result                          |
//	|--------------------|-------------------|---------------------------------|
//	| yes                | (ignored)         | hasPartner, status ACCEPTED     |
//	| no                 | yes               | hasInvitation, stored status    |
//	| no                 | no                | neither                         |
//
// An invitation past expiry but not yet transitioned is reported with its
// stored status; the sweep catches up separately.
func derivePartnerStatus(couple *domain.Couple, invitation *domain.Invitation, partnerName string) PartnerStatus {
	if couple != nil && couple.Established() {
		return PartnerStatus{
			HasPartner:       true,
			HasInvitation:    false,
			InvitationStatus: domain.InvitationAccepted,
			PartnerName:      partnerName,
		}
	}

	if invitation != nil && invitation.Status.Active() {
		createdAt := invitation.CreatedAt
		expiresAt := invitation.ExpiresAt
		return PartnerStatus{
			HasPartner:          false,
			HasInvitation:       true,
			InvitationStatus:    invitation.Status,
			InvitedEmail:        invitation.InvitedEmail,
			InvitationCreatedAt: &createdAt,
			InvitationExpiresAt: &expiresAt,
			PartnerName:         partnerName,
		}
	}

	return PartnerStatus{}
}
