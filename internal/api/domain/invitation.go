package domain

import "time"

// InvitationStatus is the lifecycle state of an invitation. PENDING is the
// only non-terminal state; ACCEPTED, EXPIRED and CANCELLED are dead ends.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationAccepted  InvitationStatus = "ACCEPTED"
	InvitationExpired   InvitationStatus = "EXPIRED"
	InvitationCancelled InvitationStatus = "CANCELLED"
)

// Active reports whether the invitation still counts for partner-status
// derivation. Expired and cancelled invitations are invisible to queries.
func (s InvitationStatus) Active() bool {
	return s == InvitationPending || s == InvitationAccepted
}

// Terminal reports whether no further transition is allowed.
func (s InvitationStatus) Terminal() bool {
	return s != InvitationPending
}

type Invitation struct {
	ID           string
	InviterID    string
	InvitedEmail string // may or may not belong to an existing user
	Status       InvitationStatus
	CoupleID     string // the couple this invitation creates on acceptance
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// ExpiredAt reports whether the invitation is past its expiry at t,
// regardless of its stored status.
func (i Invitation) ExpiredAt(t time.Time) bool {
	return t.After(i.ExpiresAt)
}
