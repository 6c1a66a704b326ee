package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// execer is the subset of pgx shared by pools and transactions,
// letting the same statement run in either context.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeUniqueViolation
}

func insertBuff(ctx context.Context, q execer, buff *domain.Buff) error {
	query := `
		INSERT INTO buffs (buff_id, player_id, xp_multiplier, claim_multiplier, range_bonus_m, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.Exec(ctx, query,
		buff.ID, buff.PlayerID, buff.XPMultiplier, buff.ClaimMultiplier, buff.RangeBonusM, buff.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert buff: %w", err)
	}
	return nil
}
