package loot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/event"
	"github.com/geoclaim/geoclaim/internal/geo"
	"github.com/geoclaim/geoclaim/internal/repository"
)

type fakeSpotRepo struct {
	mu    sync.Mutex
	spots map[string]*domain.Spot
}

func newFakeSpotRepo() *fakeSpotRepo {
	return &fakeSpotRepo{spots: make(map[string]*domain.Spot)}
}

func (f *fakeSpotRepo) CreateSpot(ctx context.Context, spot *domain.Spot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *spot
	f.spots[spot.ID] = &cp
	return nil
}

func (f *fakeSpotRepo) GetSpot(ctx context.Context, id string) (*domain.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sp, ok := f.spots[id]
	if !ok {
		return nil, nil
	}
	cp := *sp
	return &cp, nil
}

func (f *fakeSpotRepo) DeleteSpot(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.spots, id)
	return nil
}

func (f *fakeSpotRepo) SpotsNear(ctx context.Context, center domain.Coordinate, radiusM float64) ([]domain.SpotWithDistance, error) {
	return nil, nil
}

func (f *fakeSpotRepo) ActiveLootForOwner(ctx context.Context, ownerID string, now time.Time) ([]domain.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Spot
	for _, sp := range f.spots {
		if sp.IsLoot() && sp.Loot.OwnerID == ownerID && sp.Loot.ExpiresAt.After(now) {
			out = append(out, *sp)
		}
	}
	return out, nil
}

func (f *fakeSpotRepo) CountActiveLootForOwner(ctx context.Context, ownerID string, now time.Time) (int, error) {
	active, err := f.ActiveLootForOwner(ctx, ownerID, now)
	return len(active), err
}

// DeleteLootSpot mirrors the conditional DELETE on the real store:
// the check and removal happen under one lock so concurrent callers
// serialize and only one wins.
func (f *fakeSpotRepo) DeleteLootSpot(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sp, ok := f.spots[id]
	if !ok || !sp.IsLoot() {
		return false, nil
	}
	delete(f.spots, id)
	return true, nil
}

func (f *fakeSpotRepo) DeleteExpiredLoot(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, sp := range f.spots {
		if sp.IsLoot() && !sp.Loot.ExpiresAt.After(now) {
			delete(f.spots, id)
			removed++
		}
	}
	return removed, nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*domain.Player
	items   map[int]*domain.Item
	bags    map[string]map[int]int

	spots       *fakeSpotRepo
	progressErr error
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		players: make(map[string]*domain.Player),
		items:   make(map[int]*domain.Item),
		bags:    make(map[string]map[int]int),
	}
}

func (f *fakePlayerRepo) CreatePlayer(ctx context.Context, p *domain.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.players[p.ID] = &cp
	return nil
}

func (f *fakePlayerRepo) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlayerRepo) GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePlayerRepo) UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return errors.New("no such player")
	}
	p.XP, p.Level, p.TotalClaimPoints = xp, level, totalClaimPoints
	return nil
}

func (f *fakePlayerRepo) GetInventory(ctx context.Context, playerID string) ([]domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InventoryItem
	for itemID, qty := range f.bags[playerID] {
		out = append(out, domain.InventoryItem{PlayerID: playerID, ItemID: itemID, Quantity: qty})
	}
	return out, nil
}

func (f *fakePlayerRepo) AddInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bags[playerID] == nil {
		f.bags[playerID] = make(map[int]int)
	}
	f.bags[playerID][itemID] += quantity
	return nil
}

func (f *fakePlayerRepo) RemoveInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bags[playerID][itemID] < quantity {
		return domain.ErrNotInInventory
	}
	f.bags[playerID][itemID] -= quantity
	return nil
}

func (f *fakePlayerRepo) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakePlayerRepo) GetItemsByRarity(ctx context.Context, rarity string) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Item
	for _, it := range f.items {
		if it.Rarity == rarity {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakePlayerRepo) BeginTx(ctx context.Context) (repository.PlayerTx, error) {
	return &fakePlayerTx{repo: f}, nil
}

// fakePlayerTx applies writes directly; the fake repo is already
// mutex-guarded so the test semantics match the real serialization.
// Only the loot delete is undone on rollback, which matches the
// failure paths under test: the credit fails before any player write
// lands.
type fakePlayerTx struct {
	repo      *fakePlayerRepo
	committed bool
	undo      []func()
}

func (t *fakePlayerTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakePlayerTx) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

func (t *fakePlayerTx) DeleteLootSpot(ctx context.Context, spotID string) (bool, error) {
	spots := t.repo.spots
	spots.mu.Lock()
	defer spots.mu.Unlock()
	sp, ok := spots.spots[spotID]
	if !ok || !sp.IsLoot() {
		return false, nil
	}
	delete(spots.spots, spotID)
	t.undo = append(t.undo, func() {
		spots.mu.Lock()
		defer spots.mu.Unlock()
		spots.spots[spotID] = sp
	})
	return true, nil
}

func (t *fakePlayerTx) GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error) {
	return t.repo.GetPlayer(ctx, id)
}

func (t *fakePlayerTx) UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error {
	if t.repo.progressErr != nil {
		return t.repo.progressErr
	}
	return t.repo.UpdatePlayerProgress(ctx, id, xp, level, totalClaimPoints)
}

func (t *fakePlayerTx) AddInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	return t.repo.AddInventoryItem(ctx, playerID, itemID, quantity)
}

func (t *fakePlayerTx) RemoveInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error {
	return t.repo.RemoveInventoryItem(ctx, playerID, itemID, quantity)
}

func (t *fakePlayerTx) InsertBuff(ctx context.Context, buff *domain.Buff) error {
	return nil
}

type staticSettings map[string]string

func (s staticSettings) GetSetting(ctx context.Context, key string) (string, error) {
	return s[key], nil
}

var origin = domain.Coordinate{Latitude: 52.52, Longitude: 13.405}

func newTestService(spots *fakeSpotRepo, players *fakePlayerRepo, rnd func() float64, now time.Time) *service {
	players.spots = spots
	return &service{
		spots:    spots,
		players:  players,
		settings: config.NewSettings(staticSettings{}),
		dist:     geo.Haversine{},
		bus:      event.NewMemoryBus(),
		rnd:      rnd,
		now:      func() time.Time { return now },
	}
}

func fixedRnd(v float64) func() float64 {
	return func() float64 { return v }
}

func TestService_Spawn(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	spots := newFakeSpotRepo()
	svc := newTestService(spots, newFakePlayerRepo(), fixedRnd(0.5), now)

	sp, err := svc.Spawn(context.Background(), "owner-1", origin, 400)
	require.NoError(t, err)

	require.True(t, sp.IsLoot())
	assert.False(t, sp.Permanent)
	assert.Equal(t, "owner-1", sp.Loot.OwnerID)

	t.Run("distance lands in the spawn band", func(t *testing.T) {
		d := geo.Haversine{}.DistanceMeters(origin, sp.Location)
		assert.Greater(t, d, SpawnMinDistanceM-1)
		assert.Less(t, d, SpawnMaxDistanceM+1)
	})

	t.Run("payload in configured ranges", func(t *testing.T) {
		assert.GreaterOrEqual(t, sp.Loot.XP, PayloadMinXP)
		assert.LessOrEqual(t, sp.Loot.XP, PayloadMaxXP)
		lifetime := sp.Loot.ExpiresAt.Sub(now)
		assert.GreaterOrEqual(t, lifetime, MinLifetime)
		assert.LessOrEqual(t, lifetime, MaxLifetime)
	})
}

func TestService_SpawnRadiusCapsDistance(t *testing.T) {
	now := time.Now()
	// rnd=1.0 maxes the distance roll
	svc := newTestService(newFakeSpotRepo(), newFakePlayerRepo(), fixedRnd(0.999999), now)

	sp, err := svc.Spawn(context.Background(), "owner-1", origin, 120)
	require.NoError(t, err)

	d := geo.Haversine{}.DistanceMeters(origin, sp.Location)
	assert.Less(t, d, 121.0, "radius below the global cap bounds the distance")
}

func TestService_SpawnRadiusTooSmall(t *testing.T) {
	svc := newTestService(newFakeSpotRepo(), newFakePlayerRepo(), fixedRnd(0.5), time.Now())

	_, err := svc.Spawn(context.Background(), "owner-1", origin, SpawnMinDistanceM)
	require.ErrorIs(t, err, domain.ErrInvalidRadius)
	assert.EqualError(t, err, "invalid radius: must exceed 50m")
}

func TestService_SpawnLimit(t *testing.T) {
	now := time.Now()
	spots := newFakeSpotRepo()
	svc := newTestService(spots, newFakePlayerRepo(), fixedRnd(0.5), now)
	ctx := context.Background()

	for i := 0; i < config.DefaultLootMaxActive; i++ {
		_, err := svc.Spawn(ctx, "owner-1", origin, 400)
		require.NoError(t, err)
	}

	_, err := svc.Spawn(ctx, "owner-1", origin, 400)
	assert.ErrorIs(t, err, domain.ErrLootLimitReached)

	t.Run("other players unaffected", func(t *testing.T) {
		_, err := svc.Spawn(ctx, "owner-2", origin, 400)
		assert.NoError(t, err)
	})
}

func TestService_SpawnItemAttachment(t *testing.T) {
	now := time.Now()
	players := newFakePlayerRepo()
	players.items[7] = &domain.Item{ID: 7, Name: "Compass", Rarity: domain.RarityCommon}

	// rnd below the attach chance rolls an item
	svc := newTestService(newFakeSpotRepo(), players, fixedRnd(0.1), now)
	sp, err := svc.Spawn(context.Background(), "owner-1", origin, 400)
	require.NoError(t, err)
	require.NotNil(t, sp.Loot.ItemID)
	assert.Equal(t, 7, *sp.Loot.ItemID)

	// rnd above the attach chance does not
	svc = newTestService(newFakeSpotRepo(), players, fixedRnd(0.9), now)
	sp, err = svc.Spawn(context.Background(), "owner-1", origin, 400)
	require.NoError(t, err)
	assert.Nil(t, sp.Loot.ItemID)
}

func spawnLoot(t *testing.T, spots *fakeSpotRepo, xp int, itemID *int, expiresAt time.Time) *domain.Spot {
	t.Helper()
	sp := &domain.Spot{
		ID:       "loot-1",
		Location: origin,
		Type:     domain.SpotTypeStandard,
		Loot:     &domain.LootPayload{OwnerID: "owner-1", ExpiresAt: expiresAt, XP: xp, ItemID: itemID},
	}
	require.NoError(t, spots.CreateSpot(context.Background(), sp))
	return sp
}

func TestService_Collect(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	spots := newFakeSpotRepo()
	players := newFakePlayerRepo()
	players.players["p1"] = &domain.Player{ID: "p1", XP: 90, Level: 1}
	itemID := 7
	players.items[7] = &domain.Item{ID: 7, Name: "Compass", Rarity: domain.RarityCommon}
	spawnLoot(t, spots, 25, &itemID, now.Add(5*time.Minute))

	svc := newTestService(spots, players, fixedRnd(0.5), now)

	reward, err := svc.Collect(context.Background(), "p1", "loot-1", origin)
	require.NoError(t, err)

	assert.Equal(t, 25, reward.XP)
	assert.Equal(t, 115, reward.TotalXP)
	assert.Equal(t, 2, reward.Level)
	assert.True(t, reward.LeveledUp)
	require.Len(t, reward.Items, 1)
	assert.Equal(t, "Compass", reward.Items[0].Name)

	t.Run("item landed in inventory", func(t *testing.T) {
		assert.Equal(t, 1, players.bags["p1"][7])
	})

	t.Run("second collect fails", func(t *testing.T) {
		_, err := svc.Collect(context.Background(), "p1", "loot-1", origin)
		assert.ErrorIs(t, err, domain.ErrLootNotFound)
	})
}

func TestService_CollectFailures(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown id", func(t *testing.T) {
		svc := newTestService(newFakeSpotRepo(), newFakePlayerRepo(), fixedRnd(0.5), now)
		_, err := svc.Collect(context.Background(), "p1", "nope", origin)
		assert.ErrorIs(t, err, domain.ErrLootNotFound)
	})

	t.Run("permanent spots are not collectible", func(t *testing.T) {
		spots := newFakeSpotRepo()
		require.NoError(t, spots.CreateSpot(context.Background(), &domain.Spot{ID: "perm-1", Permanent: true, Location: origin}))
		svc := newTestService(spots, newFakePlayerRepo(), fixedRnd(0.5), now)
		_, err := svc.Collect(context.Background(), "p1", "perm-1", origin)
		assert.ErrorIs(t, err, domain.ErrLootNotFound)
	})

	t.Run("expired loot", func(t *testing.T) {
		spots := newFakeSpotRepo()
		spawnLoot(t, spots, 25, nil, now.Add(-time.Second))
		svc := newTestService(spots, newFakePlayerRepo(), fixedRnd(0.5), now)
		_, err := svc.Collect(context.Background(), "p1", "loot-1", origin)
		assert.ErrorIs(t, err, domain.ErrLootExpired)
		assert.Empty(t, spots.spots, "expired loot is removed on touch")
	})

	t.Run("too far away", func(t *testing.T) {
		spots := newFakeSpotRepo()
		spawnLoot(t, spots, 25, nil, now.Add(5*time.Minute))
		svc := newTestService(spots, newFakePlayerRepo(), fixedRnd(0.5), now)
		far := domain.Coordinate{Latitude: 52.53, Longitude: 13.405} // ~1.1km north
		_, err := svc.Collect(context.Background(), "p1", "loot-1", far)
		assert.ErrorIs(t, err, domain.ErrOutOfRange{})
	})
}

func TestService_CollectCreditFailureKeepsLoot(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	spots := newFakeSpotRepo()
	players := newFakePlayerRepo()
	players.players["p1"] = &domain.Player{ID: "p1", Level: 1}
	players.progressErr = errors.New("connection reset")
	spawnLoot(t, spots, 25, nil, now.Add(5*time.Minute))

	svc := newTestService(spots, players, fixedRnd(0.5), now)

	_, err := svc.Collect(context.Background(), "p1", "loot-1", origin)
	require.Error(t, err)

	sp, err := spots.GetSpot(context.Background(), "loot-1")
	require.NoError(t, err)
	require.NotNil(t, sp, "failed credit rolls the delete back")

	t.Run("retry succeeds once storage recovers", func(t *testing.T) {
		players.progressErr = nil
		reward, err := svc.Collect(context.Background(), "p1", "loot-1", origin)
		require.NoError(t, err)
		assert.Equal(t, 25, reward.XP)
	})
}

func TestService_CollectExactlyOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	spots := newFakeSpotRepo()
	players := newFakePlayerRepo()
	const collectors = 25
	for i := 0; i < collectors; i++ {
		id := string(rune('a' + i))
		players.players[id] = &domain.Player{ID: id, Level: 1}
	}
	spawnLoot(t, spots, 30, nil, now.Add(5*time.Minute))

	svc := newTestService(spots, players, fixedRnd(0.5), now)

	var wg sync.WaitGroup
	results := make(chan error, collectors)
	for i := 0; i < collectors; i++ {
		wg.Add(1)
		go func(playerID string) {
			defer wg.Done()
			_, err := svc.Collect(context.Background(), playerID, "loot-1", origin)
			results <- err
		}(string(rune('a' + i)))
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrLootNotFound):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one collector wins the race")
	assert.Equal(t, collectors-1, losses)

	t.Run("xp credited exactly once", func(t *testing.T) {
		total := 0
		for _, p := range players.players {
			total += p.XP
		}
		assert.Equal(t, 30, total)
	})
}

func TestService_ExpireStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	spots := newFakeSpotRepo()
	require.NoError(t, spots.CreateSpot(context.Background(), &domain.Spot{
		ID: "stale", Location: origin,
		Loot: &domain.LootPayload{OwnerID: "o", ExpiresAt: now.Add(-time.Minute), XP: 10},
	}))
	require.NoError(t, spots.CreateSpot(context.Background(), &domain.Spot{
		ID: "fresh", Location: origin,
		Loot: &domain.LootPayload{OwnerID: "o", ExpiresAt: now.Add(time.Minute), XP: 10},
	}))
	require.NoError(t, spots.CreateSpot(context.Background(), &domain.Spot{ID: "perm", Permanent: true, Location: origin}))

	svc := newTestService(spots, newFakePlayerRepo(), fixedRnd(0.5), now)

	removed, err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, stillThere := spots.spots["fresh"]
	assert.True(t, stillThere)
	_, permThere := spots.spots["perm"]
	assert.True(t, permThere, "permanent spots never expire")
}
