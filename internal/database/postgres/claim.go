package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// ClaimRepository implements the claim repository for PostgreSQL
type ClaimRepository struct {
	db *pgxpool.Pool
}

// NewClaimRepository creates a new ClaimRepository
func NewClaimRepository(db *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var c domain.Claim
	err := row.Scan(&c.PlayerID, &c.SpotID, &c.ClaimValue, &c.Dominance, &c.LastLog, &c.LastDecay)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan claim: %w", err)
	}
	return &c, nil
}

func (r *ClaimRepository) GetClaim(ctx context.Context, playerID, spotID string) (*domain.Claim, error) {
	query := `
		SELECT player_id, spot_id, claim_value, dominance, last_log, last_decay
		FROM claims
		WHERE player_id = $1 AND spot_id = $2
	`
	return scanClaim(r.db.QueryRow(ctx, query, playerID, spotID))
}

func (r *ClaimRepository) UpsertClaim(ctx context.Context, claim *domain.Claim) error {
	return upsertClaim(ctx, r.db, claim)
}

// DecayClaims applies linear decay to every claim in one set-based
// UPDATE. The arithmetic matches claim.Decay: loss is hours since
// last_decay times ratePerHour, values clamp at zero, dominance decays
// in lockstep at DominanceRatio.
func (r *ClaimRepository) DecayClaims(ctx context.Context, now time.Time, ratePerHour float64) (int64, error) {
	query := `
		UPDATE claims
		SET claim_value = GREATEST(claim_value - EXTRACT(EPOCH FROM ($1 - last_decay)) / 3600.0 * $2, 0),
		    dominance = GREATEST(dominance - EXTRACT(EPOCH FROM ($1 - last_decay)) / 3600.0 * $2 * $3, 0),
		    last_decay = $1
		WHERE last_decay < $1 AND (claim_value > 0 OR dominance > 0)
	`
	tag, err := r.db.Exec(ctx, query, now, ratePerHour, domain.DominanceRatio)
	if err != nil {
		return 0, fmt.Errorf("failed to decay claims: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ClaimRepository) ClaimsBySpot(ctx context.Context, spotID string, limit int) ([]domain.ClaimRanking, error) {
	query := `
		SELECT c.player_id, p.username, c.claim_value, c.dominance, c.last_log
		FROM claims c
		JOIN players p ON p.player_id = c.player_id
		WHERE c.spot_id = $1
		ORDER BY c.claim_value DESC, c.last_log ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, spotID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query spot rankings: %w", err)
	}
	defer rows.Close()

	var rankings []domain.ClaimRanking
	for rows.Next() {
		var rk domain.ClaimRanking
		if err := rows.Scan(&rk.PlayerID, &rk.Username, &rk.ClaimValue, &rk.Dominance, &rk.LastLog); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		rankings = append(rankings, rk)
	}
	return rankings, rows.Err()
}

func (r *ClaimRepository) ClaimsByPlayer(ctx context.Context, playerID string) ([]domain.Claim, error) {
	query := `
		SELECT player_id, spot_id, claim_value, dominance, last_log, last_decay
		FROM claims
		WHERE player_id = $1
		ORDER BY claim_value DESC
	`
	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player claims: %w", err)
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		var c domain.Claim
		if err := rows.Scan(&c.PlayerID, &c.SpotID, &c.ClaimValue, &c.Dominance, &c.LastLog, &c.LastDecay); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func upsertClaim(ctx context.Context, q execer, claim *domain.Claim) error {
	query := `
		INSERT INTO claims (player_id, spot_id, claim_value, dominance, last_log, last_decay)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id, spot_id) DO UPDATE
		SET claim_value = EXCLUDED.claim_value,
		    dominance = EXCLUDED.dominance,
		    last_log = EXCLUDED.last_log,
		    last_decay = EXCLUDED.last_decay
	`
	_, err := q.Exec(ctx, query,
		claim.PlayerID, claim.SpotID, claim.ClaimValue, claim.Dominance, claim.LastLog, claim.LastDecay)
	if err != nil {
		return fmt.Errorf("failed to upsert claim: %w", err)
	}
	return nil
}
