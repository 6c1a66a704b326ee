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

// PlayerRepository implements the player repository for PostgreSQL
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = "player_id, username, xp, level, total_claim_points, created_at"

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.Username, &p.XP, &p.Level, &p.TotalClaimPoints, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return &p, nil
}

func (r *PlayerRepository) CreatePlayer(ctx context.Context, player *domain.Player) error {
	query := `
		INSERT INTO players (player_id, username, xp, level, total_claim_points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		player.ID, player.Username, player.XP, player.Level, player.TotalClaimPoints, player.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1`
	return scanPlayer(r.db.QueryRow(ctx, query, id))
}

func (r *PlayerRepository) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE username = $1`
	return scanPlayer(r.db.QueryRow(ctx, query, username))
}

func (r *PlayerRepository) UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error {
	return updatePlayerProgress(ctx, r.db, id, xp, level, totalClaimPoints)
}

func (r *PlayerRepository) GetInventory(ctx context.Context, playerID string) ([]domain.InventoryItem, error) {
	query := `
		SELECT player_id, item_id, quantity, acquired_at
		FROM inventory
		WHERE player_id = $1 AND quantity > 0
		ORDER BY item_id
	`
	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.PlayerID, &it.ItemID, &it.Quantity, &it.AcquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PlayerRepository) AddInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	return addInventoryItem(ctx, r.db, playerID, itemID, quantity)
}

func (r *PlayerRepository) RemoveInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	return removeInventoryItem(ctx, r.db, playerID, itemID, quantity)
}

const itemColumns = "item_id, item_name, item_description, rarity, consumable, xp_boost, claim_boost, range_boost_m, duration_s"

func scanItem(row pgx.Row) (*domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Rarity, &it.Consumable,
		&it.XPBoost, &it.ClaimBoost, &it.RangeBoostM, &it.DurationS)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	return &it, nil
}

func (r *PlayerRepository) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1`
	return scanItem(r.db.QueryRow(ctx, query, id))
}

func (r *PlayerRepository) GetItemsByRarity(ctx context.Context, rarity string) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE rarity = $1 ORDER BY item_id`
	rows, err := r.db.Query(ctx, query, rarity)
	if err != nil {
		return nil, fmt.Errorf("failed to get items by rarity: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Rarity, &it.Consumable,
			&it.XPBoost, &it.ClaimBoost, &it.RangeBoostM, &it.DurationS); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PlayerRepository) BeginTx(ctx context.Context) (repository.PlayerTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &playerTx{tx: tx}, nil
}

// playerTx implements repository.PlayerTx over a pgx transaction
type playerTx struct {
	tx pgx.Tx
}

func (t *playerTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *playerTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func (t *playerTx) GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1 FOR UPDATE`
	return scanPlayer(t.tx.QueryRow(ctx, query, id))
}

func (t *playerTx) UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error {
	return updatePlayerProgress(ctx, t.tx, id, xp, level, totalClaimPoints)
}

func (t *playerTx) AddInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	return addInventoryItem(ctx, t.tx, playerID, itemID, quantity)
}

func (t *playerTx) RemoveInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	return removeInventoryItem(ctx, t.tx, playerID, itemID, quantity)
}

func (t *playerTx) InsertBuff(ctx context.Context, buff *domain.Buff) error {
	return insertBuff(ctx, t.tx, buff)
}

// DeleteLootSpot runs the loot winner election inside the credit
// transaction so a failed credit rolls the delete back.
func (t *playerTx) DeleteLootSpot(ctx context.Context, spotID string) (bool, error) {
	return deleteLootSpot(ctx, t.tx, spotID)
}

func updatePlayerProgress(ctx context.Context, q execer, id string, xp, level, totalClaimPoints int) error {
	query := `
		UPDATE players
		SET xp = $2, level = $3, total_claim_points = $4
		WHERE player_id = $1
	`
	tag, err := q.Exec(ctx, query, id, xp, level, totalClaimPoints)
	if err != nil {
		return fmt.Errorf("failed to update player progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func addInventoryItem(ctx context.Context, q execer, playerID string, itemID, quantity int) error {
	query := `
		INSERT INTO inventory (player_id, item_id, quantity, acquired_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (player_id, item_id) DO UPDATE
		SET quantity = inventory.quantity + EXCLUDED.quantity
	`
	if _, err := q.Exec(ctx, query, playerID, itemID, quantity); err != nil {
		return fmt.Errorf("failed to add inventory item: %w", err)
	}
	return nil
}

func removeInventoryItem(ctx context.Context, q execer, playerID string, itemID, quantity int) error {
	// The quantity guard in the WHERE clause makes concurrent removals
	// safe: only one of two racing spends can match the row.
	query := `
		UPDATE inventory
		SET quantity = quantity - $3
		WHERE player_id = $1 AND item_id = $2 AND quantity >= $3
	`
	tag, err := q.Exec(ctx, query, playerID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to remove inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotInInventory
	}
	return nil
}
