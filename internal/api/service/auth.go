package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/afterlove/couplet/internal/api/domain"
	"github.com/afterlove/couplet/internal/api/store"
	"github.com/afterlove/couplet/pkg/idx"
	"github.com/afterlove/couplet/pkg/jwtx"
	"github.com/afterlove/couplet/pkg/slogx"
)

var (
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers unknown email, wrong password and bad
	// session tokens alike so callers can't probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrInvalidAuthRequest = errors.New("invalid auth request")
)

// dummyHash keeps Login's timing roughly constant when the email is
// unknown: we still burn one argon2 verification before failing.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type AuthService struct {
	Store    store.Store
	Hasher   HashVerifier
	Tokens   TokenIssuer
	Verifier jwtx.Verifier
}

// Register creates a new account and mints its first session token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, "", ErrInvalidAuthRequest
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, "", ErrWeakPassword
	}

	// Hash outside the transaction: argon2 is deliberately slow and must
	// not hold a write transaction open.
	passwordHash, err := s.Hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
	}

	// The existence check is advisory; the UNIQUE constraint on email is
	// what actually wins the race between two concurrent registrations.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			err = ErrEmailTaken
		}
		if errors.Is(err, ErrEmailTaken) {
			log.Warn("registration attempted with taken email")
			return domain.User{}, "", ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	token, err := s.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Error("failed to issue session token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	return user, token, nil
}

// Login verifies credentials and mints a fresh session token. The failure
// mode is identical for unknown email and wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Equalize timing with the wrong-password path.
			_ = s.Hasher.Verify(password, dummyHash)
			log.Warn("login attempted with unknown email")
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		log.Warn("login attempted with wrong password", slog.String("user_id", user.ID))
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Error("failed to issue session token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// ValidateSession resolves the identity embedded in a session token.
// Malformed, expired and forged tokens all fail with ErrInvalidCredentials.
func (s *AuthService) ValidateSession(token string) (userID, email string, err error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := claims.ValidateExpiry(); err != nil {
		return "", "", ErrInvalidCredentials
	}
	return claims.Subject, claims.Email, nil
}

// Profile is the authenticated user's own view: their account, their couple
// with both partner summaries, and every invitation they have sent.
type Profile struct {
	User            domain.User
	Couple          *CoupleProfile
	InvitationsSent []domain.Invitation
}

type CoupleProfile struct {
	Couple   domain.Couple
	Partner1 domain.Summary
	Partner2 *domain.Summary
}

// GetProfile loads the caller's profile. Returns store.ErrNotFound when the
// account no longer exists.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	profile := Profile{User: user}

	couple, err := s.Store.Couples().GetActiveCoupleByUserID(ctx, userID)
	switch {
	case err == nil:
		cp, err := s.coupleProfile(ctx, couple)
		if err != nil {
			return Profile{}, err
		}
		profile.Couple = &cp
	case !errors.Is(err, store.ErrNotFound):
		return Profile{}, err
	}

	invitations, err := s.Store.Invitations().ListInvitationsByInviter(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	profile.InvitationsSent = invitations

	return profile, nil
}

func (s *AuthService) coupleProfile(ctx context.Context, couple domain.Couple) (CoupleProfile, error) {
	cp := CoupleProfile{Couple: couple}

	partner1, err := s.Store.Users().GetUserByID(ctx, couple.Partner1ID)
	if err != nil {
		return CoupleProfile{}, err
	}
	cp.Partner1 = partner1.Summary()

	if couple.Partner2ID != nil {
		partner2, err := s.Store.Users().GetUserByID(ctx, *couple.Partner2ID)
		if err != nil {
			return CoupleProfile{}, err
		}
		summary := partner2.Summary()
		cp.Partner2 = &summary
	}

	return cp, nil
}

// NormalizeEmail lower-cases and trims an email so uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
