package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/geoclaim/geoclaim/internal/database"
	"github.com/geoclaim/geoclaim/internal/domain"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()
	if !testing.Short() {
		terminate = setupTestPool()
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	if terminate != nil {
		terminate()
	}
	os.Exit(code)
}

func setupTestPool() func() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("geoclaim_test"),
		postgres.WithUsername("geoclaim"),
		postgres.WithPassword("geoclaim"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: postgres container unavailable: %v\n", err)
		return nil
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: connection string unavailable: %v\n", err)
		_ = container.Terminate(ctx)
		return nil
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		fmt.Printf("WARNING: pool unavailable: %v\n", err)
		_ = container.Terminate(ctx)
		return nil
	}

	if err := database.Migrate(ctx, pool); err != nil {
		fmt.Printf("WARNING: migrations failed: %v\n", err)
		pool.Close()
		_ = container.Terminate(ctx)
		return nil
	}

	testPool = pool
	return func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("failed to terminate container: %v\n", err)
		}
	}
}

func requireDB(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if testPool == nil {
		t.Skip("skipping integration test: database not available")
	}
}

func createTestPlayer(t *testing.T, repo *PlayerRepository) *domain.Player {
	t.Helper()
	p := &domain.Player{
		ID:        uuid.NewString(),
		Username:  "it_" + uuid.NewString()[:8],
		Level:     1,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreatePlayer(context.Background(), p))
	return p
}

func TestPlayerRepository_DuplicateUsername(t *testing.T) {
	requireDB(t)
	repo := NewPlayerRepository(testPool)
	ctx := context.Background()

	p := createTestPlayer(t, repo)

	dup := &domain.Player{ID: uuid.NewString(), Username: p.Username, Level: 1, CreatedAt: time.Now().UTC()}
	err := repo.CreatePlayer(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestSpotRepository_NearbyOrdering(t *testing.T) {
	requireDB(t)
	spots := NewSpotRepository(testPool)
	ctx := context.Background()

	center := domain.Coordinate{Latitude: 52.52, Longitude: 13.405}
	near := &domain.Spot{
		ID: uuid.NewString(), Name: "Near Fountain", Type: domain.SpotTypeStandard,
		Location:  domain.Coordinate{Latitude: 52.5203, Longitude: 13.405},
		Permanent: true, CreatedAt: time.Now().UTC(),
	}
	far := &domain.Spot{
		ID: uuid.NewString(), Name: "Far Monument", Type: domain.SpotTypeMonument,
		Location:  domain.Coordinate{Latitude: 52.527, Longitude: 13.405},
		Permanent: true, CreatedAt: time.Now().UTC(),
	}
	distant := &domain.Spot{
		ID: uuid.NewString(), Name: "Out Of Range", Type: domain.SpotTypeStandard,
		Location:  domain.Coordinate{Latitude: 52.6, Longitude: 13.405},
		Permanent: true, CreatedAt: time.Now().UTC(),
	}
	for _, s := range []*domain.Spot{far, near, distant} {
		require.NoError(t, spots.CreateSpot(ctx, s))
	}

	results, err := spots.SpotsNear(ctx, center, 1000)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, near.ID, results[0].Spot.ID, "nearest first")
	assert.Equal(t, far.ID, results[1].Spot.ID)
	assert.InDelta(t, 33, results[0].Distance, 5)
	assert.InDelta(t, 778, results[1].Distance, 10)
}

func TestSpotRepository_LootLifecycle(t *testing.T) {
	requireDB(t)
	spots := NewSpotRepository(testPool)
	players := NewPlayerRepository(testPool)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := createTestPlayer(t, players)
	loot := &domain.Spot{
		ID: uuid.NewString(), Name: "Hidden Cache", Type: domain.SpotTypeStandard,
		Location: domain.Coordinate{Latitude: 48.137, Longitude: 11.575},
		Loot: &domain.LootPayload{
			OwnerID:   owner.ID,
			ExpiresAt: now.Add(10 * time.Minute),
			XP:        25,
		},
		CreatedAt: now,
	}
	require.NoError(t, spots.CreateSpot(ctx, loot))

	got, err := spots.GetSpot(ctx, loot.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.IsLoot())
	assert.Equal(t, owner.ID, got.Loot.OwnerID)
	assert.Equal(t, 25, got.Loot.XP)
	assert.Nil(t, got.Loot.ItemID)

	count, err := spots.CountActiveLootForOwner(ctx, owner.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	won, err := spots.DeleteLootSpot(ctx, loot.ID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = spots.DeleteLootSpot(ctx, loot.ID)
	require.NoError(t, err)
	assert.False(t, won, "second delete must lose the election")
}

func TestPlayerTx_LootDeleteRollback(t *testing.T) {
	requireDB(t)
	spots := NewSpotRepository(testPool)
	players := NewPlayerRepository(testPool)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := createTestPlayer(t, players)
	loot := &domain.Spot{
		ID: uuid.NewString(), Name: "Fragile Cache", Type: domain.SpotTypeStandard,
		Location: domain.Coordinate{Latitude: 48.137, Longitude: 11.575},
		Loot: &domain.LootPayload{
			OwnerID:   owner.ID,
			ExpiresAt: now.Add(10 * time.Minute),
			XP:        25,
		},
		CreatedAt: now,
	}
	require.NoError(t, spots.CreateSpot(ctx, loot))

	tx, err := players.BeginTx(ctx)
	require.NoError(t, err)
	won, err := tx.DeleteLootSpot(ctx, loot.ID)
	require.NoError(t, err)
	require.True(t, won)
	require.NoError(t, tx.Rollback(ctx))

	got, err := spots.GetSpot(ctx, loot.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "rolled back delete leaves the loot collectible")

	t.Run("committed delete sticks", func(t *testing.T) {
		tx, err := players.BeginTx(ctx)
		require.NoError(t, err)
		won, err := tx.DeleteLootSpot(ctx, loot.ID)
		require.NoError(t, err)
		require.True(t, won)
		require.NoError(t, tx.Commit(ctx))

		got, err := spots.GetSpot(ctx, loot.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSpotRepository_ConcurrentLootDelete(t *testing.T) {
	requireDB(t)
	spots := NewSpotRepository(testPool)
	players := NewPlayerRepository(testPool)
	ctx := context.Background()

	owner := createTestPlayer(t, players)
	loot := &domain.Spot{
		ID: uuid.NewString(), Name: "Contested Cache", Type: domain.SpotTypeStandard,
		Location: domain.Coordinate{Latitude: 48.137, Longitude: 11.575},
		Loot: &domain.LootPayload{
			OwnerID:   owner.ID,
			ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
			XP:        30,
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, spots.CreateSpot(ctx, loot))

	const racers = 10
	var wg sync.WaitGroup
	wins := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := spots.DeleteLootSpot(ctx, loot.ID)
			assert.NoError(t, err)
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one collector wins")
}

func TestClaimRepository_DecayClaims(t *testing.T) {
	requireDB(t)
	claims := NewClaimRepository(testPool)
	players := NewPlayerRepository(testPool)
	ctx := context.Background()

	p := createTestPlayer(t, players)
	spotID := uuid.NewString()
	start := time.Now().UTC().Add(-50 * time.Hour)
	require.NoError(t, claims.UpsertClaim(ctx, &domain.Claim{
		PlayerID: p.ID, SpotID: spotID,
		ClaimValue: 10, Dominance: 1,
		LastLog: start, LastDecay: start,
	}))

	now := time.Now().UTC()
	touched, err := claims.DecayClaims(ctx, now, 0.01)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, touched, int64(1))

	c, err := claims.GetClaim(ctx, p.ID, spotID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.InDelta(t, 9.5, c.ClaimValue, 0.01, "50 hours at 0.01 per hour")
	assert.InDelta(t, 0.95, c.Dominance, 0.01, "dominance decays in lockstep")
	assert.WithinDuration(t, now, c.LastDecay, time.Second)
}

func TestVisitRepository_KindFilter(t *testing.T) {
	requireDB(t)
	visits := NewVisitRepository(testPool)
	players := NewPlayerRepository(testPool)
	ctx := context.Background()

	p := createTestPlayer(t, players)
	spotID := uuid.NewString()
	base := time.Now().UTC().Add(-time.Hour)

	insert := func(auto bool, at time.Time) {
		require.NoError(t, visits.InsertVisit(ctx, &domain.Visit{
			ID: uuid.NewString(), PlayerID: p.ID, SpotID: spotID,
			Location: domain.Coordinate{Latitude: 48.1, Longitude: 11.5},
			Auto:     auto, XPMultiplier: 1, ClaimMultiplier: 1, Timestamp: at,
		}))
	}
	insert(false, base)
	insert(true, base.Add(10*time.Minute))

	last, err := visits.LastVisit(ctx, p.ID, spotID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Auto, "most recent of any kind")

	lastManual, err := visits.LastVisit(ctx, p.ID, spotID, domain.LogTypeManual)
	require.NoError(t, err)
	require.NotNil(t, lastManual)
	assert.False(t, lastManual.Auto)
	assert.WithinDuration(t, base, lastManual.Timestamp, time.Second)

	none, err := visits.LastVisit(ctx, p.ID, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSettingsRepository_RoundTrip(t *testing.T) {
	requireDB(t)
	settings := NewSettingsRepository(testPool)
	ctx := context.Background()

	v, err := settings.GetSetting(ctx, "auto_log_distance")
	require.NoError(t, err)
	assert.Equal(t, "20", v, "seeded by migration")

	missing, err := settings.GetSetting(ctx, "no_such_key")
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, settings.SetSetting(ctx, "claim_decay_rate", "0.02"))
	v, err = settings.GetSetting(ctx, "claim_decay_rate")
	require.NoError(t, err)
	assert.Equal(t, "0.02", v)

	require.NoError(t, settings.SetSetting(ctx, "claim_decay_rate", "0.01"))
}

func TestVisitTx_AtomicApply(t *testing.T) {
	requireDB(t)
	visits := NewVisitRepository(testPool)
	players := NewPlayerRepository(testPool)
	claims := NewClaimRepository(testPool)
	ctx := context.Background()

	p := createTestPlayer(t, players)
	spotID := uuid.NewString()
	now := time.Now().UTC()

	tx, err := visits.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := tx.GetPlayerForUpdate(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	require.NoError(t, tx.InsertVisit(ctx, &domain.Visit{
		ID: uuid.NewString(), PlayerID: p.ID, SpotID: spotID,
		Location: domain.Coordinate{Latitude: 48.1, Longitude: 11.5},
		XPGained: 16, ClaimPoints: 5, XPMultiplier: 1, ClaimMultiplier: 1,
		Timestamp: now,
	}))
	require.NoError(t, tx.UpdatePlayerProgress(ctx, p.ID, 16, 1, 5))
	require.NoError(t, tx.UpsertClaim(ctx, &domain.Claim{
		PlayerID: p.ID, SpotID: spotID,
		ClaimValue: 5, Dominance: 0.5,
		LastLog: now, LastDecay: now,
	}))
	require.NoError(t, tx.Commit(ctx))

	got, err := players.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, got.XP)
	assert.Equal(t, 5, got.TotalClaimPoints)

	c, err := claims.GetClaim(ctx, p.ID, spotID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 5.0, c.ClaimValue)
}
