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

// SpotRepository implements the spot repository for PostgreSQL
type SpotRepository struct {
	db *pgxpool.Pool
}

// NewSpotRepository creates a new SpotRepository
func NewSpotRepository(db *pgxpool.Pool) *SpotRepository {
	return &SpotRepository{db: db}
}

const spotColumns = `spot_id, name, description, latitude, longitude, spot_type, permanent,
	creator_id, loot_owner_id, loot_expires_at, loot_xp, loot_item_id, created_at`

// spotRow buffers the nullable columns of one spots row before
// assembly into a domain.Spot.
type spotRow struct {
	spot        domain.Spot
	creatorID   *string
	lootOwnerID *string
	lootExpires *time.Time
	lootXP      *int
	lootItemID  *int
}

func (sr *spotRow) dests() []any {
	s := &sr.spot
	return []any{&s.ID, &s.Name, &s.Description, &s.Location.Latitude, &s.Location.Longitude,
		&s.Type, &s.Permanent, &sr.creatorID, &sr.lootOwnerID, &sr.lootExpires, &sr.lootXP,
		&sr.lootItemID, &s.CreatedAt}
}

func (sr *spotRow) toDomain() domain.Spot {
	s := sr.spot
	if sr.creatorID != nil {
		s.CreatorID = *sr.creatorID
	}
	if sr.lootOwnerID != nil {
		loot := &domain.LootPayload{OwnerID: *sr.lootOwnerID, ItemID: sr.lootItemID}
		if sr.lootExpires != nil {
			loot.ExpiresAt = *sr.lootExpires
		}
		if sr.lootXP != nil {
			loot.XP = *sr.lootXP
		}
		s.Loot = loot
	}
	return s
}

func scanSpot(row pgx.Row) (*domain.Spot, error) {
	var sr spotRow
	if err := row.Scan(sr.dests()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan spot: %w", err)
	}
	s := sr.toDomain()
	return &s, nil
}

func (r *SpotRepository) CreateSpot(ctx context.Context, spot *domain.Spot) error {
	var (
		creatorID   *string
		lootOwnerID *string
		lootExpires *time.Time
		lootXP      *int
		lootItemID  *int
	)
	if spot.CreatorID != "" {
		creatorID = &spot.CreatorID
	}
	if spot.Loot != nil {
		lootOwnerID = &spot.Loot.OwnerID
		lootExpires = &spot.Loot.ExpiresAt
		lootXP = &spot.Loot.XP
		lootItemID = spot.Loot.ItemID
	}

	query := `
		INSERT INTO spots (spot_id, name, description, latitude, longitude, spot_type, permanent,
			creator_id, loot_owner_id, loot_expires_at, loot_xp, loot_item_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		spot.ID, spot.Name, spot.Description, spot.Location.Latitude, spot.Location.Longitude,
		spot.Type, spot.Permanent, creatorID, lootOwnerID, lootExpires, lootXP, lootItemID, spot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert spot: %w", err)
	}
	return nil
}

func (r *SpotRepository) GetSpot(ctx context.Context, id string) (*domain.Spot, error) {
	query := `SELECT ` + spotColumns + ` FROM spots WHERE spot_id = $1`
	return scanSpot(r.db.QueryRow(ctx, query, id))
}

func (r *SpotRepository) DeleteSpot(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM spots WHERE spot_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete spot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSpotNotFound
	}
	return nil
}

// haversineExpr is the in-SQL great-circle distance from ($1, $2) in
// meters. It mirrors geo.Haversine so database ordering and
// application-side checks agree.
const haversineExpr = `2 * 6371000.0 * asin(sqrt(
	power(sin(radians(latitude - $1) / 2), 2) +
	cos(radians($1)) * cos(radians(latitude)) *
	power(sin(radians(longitude - $2) / 2), 2)))`

// SpotsNear runs a cheap bounding-box prefilter on the (latitude,
// longitude) index, then the exact haversine check.
func (r *SpotRepository) SpotsNear(ctx context.Context, center domain.Coordinate, radiusM float64) ([]domain.SpotWithDistance, error) {
	query := `
		SELECT ` + spotColumns + `, ` + haversineExpr + ` AS distance_m
		FROM spots
		WHERE latitude BETWEEN $1 - $3 / 111320.0 AND $1 + $3 / 111320.0
		  AND longitude BETWEEN $2 - $3 / (111320.0 * GREATEST(abs(cos(radians($1))), 0.01))
		               AND $2 + $3 / (111320.0 * GREATEST(abs(cos(radians($1))), 0.01))
		  AND ` + haversineExpr + ` <= $3
		ORDER BY distance_m ASC
	`
	rows, err := r.db.Query(ctx, query, center.Latitude, center.Longitude, radiusM)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby spots: %w", err)
	}
	defer rows.Close()

	var results []domain.SpotWithDistance
	for rows.Next() {
		var (
			sr       spotRow
			distance float64
		)
		if err := rows.Scan(append(sr.dests(), &distance)...); err != nil {
			return nil, fmt.Errorf("failed to scan nearby spot: %w", err)
		}
		results = append(results, domain.SpotWithDistance{Spot: sr.toDomain(), Distance: distance})
	}
	return results, rows.Err()
}

func (r *SpotRepository) ActiveLootForOwner(ctx context.Context, ownerID string, now time.Time) ([]domain.Spot, error) {
	query := `
		SELECT ` + spotColumns + `
		FROM spots
		WHERE loot_owner_id = $1 AND permanent = FALSE AND loot_expires_at > $2
		ORDER BY loot_expires_at ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query active loot: %w", err)
	}
	defer rows.Close()

	var spots []domain.Spot
	for rows.Next() {
		var sr spotRow
		if err := rows.Scan(sr.dests()...); err != nil {
			return nil, fmt.Errorf("failed to scan loot spot: %w", err)
		}
		spots = append(spots, sr.toDomain())
	}
	return spots, rows.Err()
}

func (r *SpotRepository) CountActiveLootForOwner(ctx context.Context, ownerID string, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM spots
		WHERE loot_owner_id = $1 AND permanent = FALSE AND loot_expires_at > $2
	`
	var count int
	if err := r.db.QueryRow(ctx, query, ownerID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active loot: %w", err)
	}
	return count, nil
}

// DeleteLootSpot is the winner election for concurrent collectors: the
// conditional DELETE succeeds for exactly one caller and every loser
// sees zero rows affected.
func (r *SpotRepository) DeleteLootSpot(ctx context.Context, id string) (bool, error) {
	return deleteLootSpot(ctx, r.db, id)
}

func deleteLootSpot(ctx context.Context, q execer, id string) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM spots WHERE spot_id = $1 AND permanent = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete loot spot: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SpotRepository) DeleteExpiredLoot(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM spots WHERE permanent = FALSE AND loot_expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired loot: %w", err)
	}
	return tag.RowsAffected(), nil
}
