package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/repository"
)

// VisitRepository implements the visit log repository for PostgreSQL
type VisitRepository struct {
	db *pgxpool.Pool
}

// NewVisitRepository creates a new VisitRepository
func NewVisitRepository(db *pgxpool.Pool) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `visit_id, player_id, spot_id, latitude, longitude, distance_m, auto,
	xp_gained, claim_points, xp_multiplier, claim_multiplier, note, has_photo, visited_at`

func scanVisit(row pgx.Row) (*domain.Visit, error) {
	var v domain.Visit
	err := row.Scan(&v.ID, &v.PlayerID, &v.SpotID, &v.Location.Latitude, &v.Location.Longitude,
		&v.Distance, &v.Auto, &v.XPGained, &v.ClaimPoints, &v.XPMultiplier, &v.ClaimMultiplier,
		&v.Note, &v.HasPhoto, &v.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan visit: %w", err)
	}
	return &v, nil
}

// kindFilter translates a LastVisit kind restriction into a SQL
// condition on the auto column. Empty kinds matches any visit.
func kindFilter(kinds []string) string {
	if len(kinds) != 1 {
		return ""
	}
	switch kinds[0] {
	case domain.LogTypeAuto:
		return " AND auto = TRUE"
	case domain.LogTypeManual:
		return " AND auto = FALSE"
	}
	return ""
}

func (r *VisitRepository) InsertVisit(ctx context.Context, visit *domain.Visit) error {
	return insertVisit(ctx, r.db, visit)
}

func (r *VisitRepository) LastVisit(ctx context.Context, playerID, spotID string, kinds ...string) (*domain.Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE player_id = $1 AND spot_id = $2` + kindFilter(kinds) + `
		ORDER BY visited_at DESC
		LIMIT 1
	`
	return scanVisit(r.db.QueryRow(ctx, query, playerID, spotID))
}

func (r *VisitRepository) LastVisitAnywhere(ctx context.Context, playerID string) (*domain.Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE player_id = $1
		ORDER BY visited_at DESC
		LIMIT 1
	`
	return scanVisit(r.db.QueryRow(ctx, query, playerID))
}

func (r *VisitRepository) VisitsByPlayer(ctx context.Context, playerID string, limit int) ([]domain.Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE player_id = $1
		ORDER BY visited_at DESC
		LIMIT $2
	`
	return r.queryVisits(ctx, query, playerID, limit)
}

func (r *VisitRepository) VisitsBySpot(ctx context.Context, spotID string, limit int) ([]domain.Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE spot_id = $1
		ORDER BY visited_at DESC
		LIMIT $2
	`
	return r.queryVisits(ctx, query, spotID, limit)
}

func (r *VisitRepository) queryVisits(ctx context.Context, query string, args ...any) ([]domain.Visit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []domain.Visit
	for rows.Next() {
		var v domain.Visit
		err := rows.Scan(&v.ID, &v.PlayerID, &v.SpotID, &v.Location.Latitude, &v.Location.Longitude,
			&v.Distance, &v.Auto, &v.XPGained, &v.ClaimPoints, &v.XPMultiplier, &v.ClaimMultiplier,
			&v.Note, &v.HasPhoto, &v.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *VisitRepository) BeginTx(ctx context.Context) (repository.VisitTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &visitTx{tx: tx}, nil
}

// visitTx spans the visits, players and claims tables so one accepted
// visit applies atomically.
type visitTx struct {
	tx pgx.Tx
}

func (t *visitTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *visitTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func (t *visitTx) GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1 FOR UPDATE`
	return scanPlayer(t.tx.QueryRow(ctx, query, id))
}

func (t *visitTx) GetLastVisitForUpdate(ctx context.Context, playerID, spotID string, kinds ...string) (*domain.Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE player_id = $1 AND spot_id = $2` + kindFilter(kinds) + `
		ORDER BY visited_at DESC
		LIMIT 1
		FOR UPDATE
	`
	return scanVisit(t.tx.QueryRow(ctx, query, playerID, spotID))
}

func (t *visitTx) InsertVisit(ctx context.Context, visit *domain.Visit) error {
	return insertVisit(ctx, t.tx, visit)
}

func (t *visitTx) UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error {
	return updatePlayerProgress(ctx, t.tx, id, xp, level, totalClaimPoints)
}

func (t *visitTx) GetClaimForUpdate(ctx context.Context, playerID, spotID string) (*domain.Claim, error) {
	query := `
		SELECT player_id, spot_id, claim_value, dominance, last_log, last_decay
		FROM claims
		WHERE player_id = $1 AND spot_id = $2
		FOR UPDATE
	`
	return scanClaim(t.tx.QueryRow(ctx, query, playerID, spotID))
}

func (t *visitTx) UpsertClaim(ctx context.Context, claim *domain.Claim) error {
	return upsertClaim(ctx, t.tx, claim)
}

func insertVisit(ctx context.Context, q execer, visit *domain.Visit) error {
	query := `
		INSERT INTO visits (visit_id, player_id, spot_id, latitude, longitude, distance_m, auto,
			xp_gained, claim_points, xp_multiplier, claim_multiplier, note, has_photo, visited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := q.Exec(ctx, query,
		visit.ID, visit.PlayerID, visit.SpotID, visit.Location.Latitude, visit.Location.Longitude,
		visit.Distance, visit.Auto, visit.XPGained, visit.ClaimPoints, visit.XPMultiplier,
		visit.ClaimMultiplier, visit.Note, visit.HasPhoto, visit.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}
