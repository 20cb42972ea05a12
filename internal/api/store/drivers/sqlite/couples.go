package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/afterlove/couplet/internal/api/domain"
)

type couplesRepo struct {
	db dbtx
}

const coupleColumns = `id, partner1_id, partner2_id, created_at, established_at`

func scanCouple(row interface{ Scan(...any) error }) (domain.Couple, error) {
	var (
		c             domain.Couple
		partner2      sql.NullString
		establishedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Partner1ID, &partner2, &c.CreatedAt, &establishedAt)
	if err != nil {
		return domain.Couple{}, err
	}
	c.Partner2ID = mapNullString(partner2)
	c.EstablishedAt = mapNullTime(establishedAt)
	return c, nil
}

func (r *couplesRepo) GetCoupleByID(ctx context.Context, id string) (domain.Couple, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+coupleColumns+` FROM couples WHERE id = ?`, id)
	c, err := scanCouple(row)
	if err != nil {
		return domain.Couple{}, mapNotFound(err)
	}
	return c, nil
}

// GetActiveCoupleByUserID resolves the couple a user belongs to on either
// side. A couple counts only while it is live: established, or still backed
// by a PENDING invitation. Couples orphaned by a cancelled or expired
// invitation are logically void and excluded, which is what makes cancelled
// invitations invisible to all partner-status queries.
func (r *couplesRepo) GetActiveCoupleByUserID(ctx context.Context, userID string) (domain.Couple, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT c.id, c.partner1_id, c.partner2_id, c.created_at, c.established_at
		 FROM couples c
		 WHERE (c.partner1_id = ? OR c.partner2_id = ?)
		   AND (c.established_at IS NOT NULL
		        OR EXISTS (
		            SELECT 1 FROM invitations i
		            WHERE i.couple_id = c.id AND i.status = 'PENDING'
		        ))
		 ORDER BY c.created_at DESC
		 LIMIT 1`,
		userID, userID)
	c, err := scanCouple(row)
	if err != nil {
		return domain.Couple{}, mapNotFound(err)
	}
	return c, nil
}

func (r *couplesRepo) CreateCouple(ctx context.Context, c domain.Couple) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO couples (id, partner1_id, partner2_id, created_at, established_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Partner1ID, mapOptionalString(c.Partner2ID), time.Now().UTC(), nil)
	return mapConstraint(err)
}

func (r *couplesRepo) EstablishCouple(ctx context.Context, coupleID, partner2ID string, establishedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE couples SET partner2_id = ?, established_at = ?
		 WHERE id = ? AND partner2_id IS NULL`,
		partner2ID, establishedAt.UTC(), coupleID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
