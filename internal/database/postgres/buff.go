package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// BuffRepository implements the buff repository for PostgreSQL
type BuffRepository struct {
	db *pgxpool.Pool
}

// NewBuffRepository creates a new BuffRepository
func NewBuffRepository(db *pgxpool.Pool) *BuffRepository {
	return &BuffRepository{db: db}
}

func (r *BuffRepository) InsertBuff(ctx context.Context, buff *domain.Buff) error {
	return insertBuff(ctx, r.db, buff)
}

func (r *BuffRepository) ActiveBuffs(ctx context.Context, playerID string, now time.Time) ([]domain.Buff, error) {
	query := `
		SELECT buff_id, player_id, xp_multiplier, claim_multiplier, range_bonus_m, expires_at
		FROM buffs
		WHERE player_id = $1 AND expires_at > $2
		ORDER BY expires_at ASC
	`
	rows, err := r.db.Query(ctx, query, playerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query active buffs: %w", err)
	}
	defer rows.Close()

	var buffs []domain.Buff
	for rows.Next() {
		var b domain.Buff
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.XPMultiplier, &b.ClaimMultiplier, &b.RangeBonusM, &b.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan buff: %w", err)
		}
		buffs = append(buffs, b)
	}
	return buffs, rows.Err()
}

func (r *BuffRepository) DeleteExpiredBuffs(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM buffs WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired buffs: %w", err)
	}
	return tag.RowsAffected(), nil
}
