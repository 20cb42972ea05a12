package sqlite

import (
	"context"
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
	"github.com/afterlove/couplet/internal/api/store"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, inviter_id, invited_email, status, couple_id, created_at, expires_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv    domain.Invitation
		status string
	)
	err := row.Scan(&inv.ID, &inv.InviterID, &inv.InvitedEmail, &status,
		&inv.CoupleID, &inv.CreatedAt, &inv.ExpiresAt)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.Status = domain.InvitationStatus(status)
	return inv, nil
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetLatestActiveInvitationByInviter(ctx context.Context, inviterID string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE inviter_id = ? AND status IN ('PENDING', 'ACCEPTED')
		 ORDER BY created_at DESC
		 LIMIT 1`,
		inviterID)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) ListInvitationsByInviter(ctx context.Context, inviterID string) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE inviter_id = ?
		 ORDER BY created_at DESC`,
		inviterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, inviter_id, invited_email, status, couple_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.InviterID, inv.InvitedEmail, string(inv.Status),
		inv.CoupleID, createdAt, inv.ExpiresAt.UTC())
	return mapConstraint(err)
}

// TransitionStatus is the compare-and-swap at the heart of the invitation
// lifecycle: the row moves from→to only if it still holds the expected
// status, so two concurrent accepts cannot both consume a PENDING state.
func (r *invitationsRepo) TransitionStatus(ctx context.Context, invitationID string, from, to domain.InvitationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = ? WHERE id = ? AND status = ?`,
		string(to), invitationID, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrStaleState
	}
	return nil
}

func (r *invitationsRepo) MarkExpiredInvitations(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'EXPIRED'
		 WHERE status = 'PENDING' AND expires_at < ?`,
		time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
