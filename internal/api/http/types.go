package http

import (
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
	"github.com/afterlove/couplet/internal/api/service"
)

// Wire types for the JSON API. Credential fields have no representation
// here, so a password hash cannot be serialized by accident.

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

type CreateInvitationRequest struct {
	InvitedEmail string `json:"invitedEmail"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CoupleID  *string   `json:"coupleId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserSummaryResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type CoupleResponse struct {
	ID            string               `json:"id"`
	Partner1      UserSummaryResponse  `json:"partner1"`
	Partner2      *UserSummaryResponse `json:"partner2,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	EstablishedAt *time.Time           `json:"establishedAt,omitempty"`
}

type InvitationResponse struct {
	ID           string    `json:"id"`
	InvitedEmail string    `json:"invitedEmail"`
	Status       string    `json:"status"`
	CoupleID     string    `json:"coupleId"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

type ProfileResponse struct {
	User            UserResponse         `json:"user"`
	Couple          *CoupleResponse      `json:"couple,omitempty"`
	InvitationsSent []InvitationResponse `json:"invitationsSent"`
}

type PartnerStatusResponse struct {
	HasPartner          bool       `json:"hasPartner"`
	HasInvitation       bool       `json:"hasInvitation"`
	InvitationStatus    string     `json:"invitationStatus,omitempty"`
	InvitedEmail        string     `json:"invitedEmail,omitempty"`
	InvitationCreatedAt *time.Time `json:"invitationCreatedAt,omitempty"`
	InvitationExpiresAt *time.Time `json:"invitationExpiresAt,omitempty"`
	PartnerName         string     `json:"partnerName,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CoupleID:  u.CoupleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserSummaryResponse(s domain.Summary) UserSummaryResponse {
	return UserSummaryResponse{ID: s.ID, Email: s.Email, Name: s.Name}
}

func toInvitationResponse(inv domain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:           inv.ID,
		InvitedEmail: inv.InvitedEmail,
		Status:       string(inv.Status),
		CoupleID:     inv.CoupleID,
		CreatedAt:    inv.CreatedAt,
		ExpiresAt:    inv.ExpiresAt,
	}
}

func toCoupleResponse(cp service.CoupleProfile) CoupleResponse {
	resp := CoupleResponse{
		ID:            cp.Couple.ID,
		Partner1:      toUserSummaryResponse(cp.Partner1),
		CreatedAt:     cp.Couple.CreatedAt,
		EstablishedAt: cp.Couple.EstablishedAt,
	}
	if cp.Partner2 != nil {
		p2 := toUserSummaryResponse(*cp.Partner2)
		resp.Partner2 = &p2
	}
	return resp
}

func toProfileResponse(p service.Profile) ProfileResponse {
	resp := ProfileResponse{
		User:            toUserResponse(p.User),
		InvitationsSent: make([]InvitationResponse, 0, len(p.InvitationsSent)),
	}
	if p.Couple != nil {
		couple := toCoupleResponse(*p.Couple)
		resp.Couple = &couple
	}
	for _, inv := range p.InvitationsSent {
		resp.InvitationsSent = append(resp.InvitationsSent, toInvitationResponse(inv))
	}
	return resp
}

func toPartnerStatusResponse(ps service.PartnerStatus) PartnerStatusResponse {
	resp := PartnerStatusResponse{
		HasPartner:          ps.HasPartner,
		HasInvitation:       ps.HasInvitation,
		InvitedEmail:        ps.InvitedEmail,
		InvitationCreatedAt: ps.InvitationCreatedAt,
		InvitationExpiresAt: ps.InvitationExpiresAt,
		PartnerName:         ps.PartnerName,
	}
	if ps.HasPartner || ps.HasInvitation {
		resp.InvitationStatus = string(ps.InvitationStatus)
	}
	return resp
}
