package store

import (
	"context"
	"errors"
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStaleState reports that a conditional update matched no rows,
	// meaning another writer already moved the row out of the expected
	// state. Callers decide how to surface this.
	ErrStaleState = errors.New("store: stale state")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Couples() Couples
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-row mutations (invitation acceptance,
	// register's check-then-insert).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by the case-normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A duplicate email surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser mutates name and/or email and bumps updated_at. Nil fields
	// are left untouched.
	UpdateUser(ctx context.Context, userID string, name, email *string) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetCoupleID binds (or clears, with nil) the user's couple reference.
	SetCoupleID(ctx context.Context, userID string, coupleID *string) error

	// DeleteUser removes the user row.
	DeleteUser(ctx context.Context, userID string) error
}

type Couples interface {
	// GetCoupleByID returns a couple by id.
	GetCoupleByID(ctx context.Context, id string) (domain.Couple, error)

	// GetActiveCoupleByUserID returns the couple a user belongs to, either
	// as partner1 or partner2, excluding couples voided by a CANCELLED
	// invitation. ErrNotFound when the user is uncoupled.
	GetActiveCoupleByUserID(ctx context.Context, userID string) (domain.Couple, error)

	// CreateCouple inserts a new couple with partner2 unset.
	CreateCouple(ctx context.Context, c domain.Couple) error

	// EstablishCouple binds partner2 and stamps established_at. Must run in
	// the same transaction as the invitation's PENDING→ACCEPTED transition.
	EstablishCouple(ctx context.Context, coupleID, partner2ID string, establishedAt time.Time) error
}

type Invitations interface {
	// GetInvitationByID returns an invitation by id.
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetLatestActiveInvitationByInviter returns the most recently created
	// PENDING or ACCEPTED invitation sent by the user, or ErrNotFound.
	GetLatestActiveInvitationByInviter(ctx context.Context, inviterID string) (domain.Invitation, error)

	// ListInvitationsByInviter returns every invitation the user has sent,
	// newest first.
	ListInvitationsByInviter(ctx context.Context, inviterID string) ([]domain.Invitation, error)

	// CreateInvitation inserts a new PENDING invitation.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// TransitionStatus moves the invitation from one status to another as a
	// compare-and-swap: it updates the row only if its current status equals
	// from, and returns ErrStaleState when no row matched.
	TransitionStatus(ctx context.Context, invitationID string, from, to domain.InvitationStatus) error

	// MarkExpiredInvitations flips every PENDING invitation past its expiry
	// to EXPIRED and returns how many rows changed (housekeeping sweep).
	MarkExpiredInvitations(ctx context.Context) (int64, error)
}
