package buff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoclaim/geoclaim/internal/domain"
)

type fakeBuffRepo struct {
	buffs     []domain.Buff
	insertErr error
	activeErr error
	purged    int
}

func (f *fakeBuffRepo) InsertBuff(ctx context.Context, buff *domain.Buff) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.buffs = append(f.buffs, *buff)
	return nil
}

func (f *fakeBuffRepo) ActiveBuffs(ctx context.Context, playerID string, now time.Time) ([]domain.Buff, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	var out []domain.Buff
	for _, b := range f.buffs {
		if b.PlayerID == playerID && b.ExpiresAt.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBuffRepo) DeleteExpiredBuffs(ctx context.Context, now time.Time) (int64, error) {
	var kept []domain.Buff
	var removed int64
	for _, b := range f.buffs {
		if b.ExpiresAt.After(now) {
			kept = append(kept, b)
		} else {
			removed++
		}
	}
	f.buffs = kept
	f.purged += int(removed)
	return removed, nil
}

func newTestService(repo *fakeBuffRepo, now time.Time) *service {
	return &service{repo: repo, now: func() time.Time { return now }}
}

func TestCompose(t *testing.T) {
	t.Run("empty list is neutral", func(t *testing.T) {
		assert.Equal(t, domain.NeutralModifiers(), Compose(nil))
	})

	t.Run("multipliers multiply and bonuses add", func(t *testing.T) {
		mods := Compose([]domain.Buff{
			{XPMultiplier: 1.5, ClaimMultiplier: 1.2, RangeBonusM: 25},
			{XPMultiplier: 2.0, ClaimMultiplier: 1.0, RangeBonusM: 10},
		})
		assert.InDelta(t, 3.0, mods.XPMultiplier, 1e-9)
		assert.InDelta(t, 1.2, mods.ClaimMultiplier, 1e-9)
		assert.InDelta(t, 35.0, mods.RangeBonusM, 1e-9)
	})
}

func TestService_Grant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeBuffRepo{}
	svc := newTestService(repo, now)

	b, err := svc.Grant(context.Background(), "player-1", 0.5, 0.2, 30, 10*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1.5, b.XPMultiplier, "boost is stored as 1+boost")
	assert.Equal(t, 1.2, b.ClaimMultiplier)
	assert.Equal(t, 30.0, b.RangeBonusM)
	assert.Equal(t, now.Add(10*time.Minute), b.ExpiresAt)
	assert.Len(t, repo.buffs, 1)
}

func TestService_GrantInsertFailure(t *testing.T) {
	repo := &fakeBuffRepo{insertErr: errors.New("insert failed")}
	svc := newTestService(repo, time.Now())

	_, err := svc.Grant(context.Background(), "player-1", 0.5, 0, 0, time.Minute)
	assert.Error(t, err)
}

func TestService_ActiveModifiers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeBuffRepo{buffs: []domain.Buff{
		{PlayerID: "player-1", XPMultiplier: 2.0, ClaimMultiplier: 1.0, RangeBonusM: 20, ExpiresAt: now.Add(time.Hour)},
		{PlayerID: "player-1", XPMultiplier: 1.5, ClaimMultiplier: 1.3, RangeBonusM: 5, ExpiresAt: now.Add(-time.Minute)},
		{PlayerID: "player-2", XPMultiplier: 9.0, ClaimMultiplier: 9.0, RangeBonusM: 99, ExpiresAt: now.Add(time.Hour)},
	}}
	svc := newTestService(repo, now)

	mods, err := svc.ActiveModifiers(context.Background(), "player-1")
	require.NoError(t, err)

	assert.InDelta(t, 2.0, mods.XPMultiplier, 1e-9, "expired buffs do not contribute")
	assert.InDelta(t, 1.0, mods.ClaimMultiplier, 1e-9)
	assert.InDelta(t, 20.0, mods.RangeBonusM, 1e-9)
	assert.Equal(t, 1, repo.purged, "reads sweep expired buffs")
}

func TestService_ActiveModifiersNoBuffs(t *testing.T) {
	svc := newTestService(&fakeBuffRepo{}, time.Now())

	mods, err := svc.ActiveModifiers(context.Background(), "player-1")
	require.NoError(t, err)
	assert.Equal(t, domain.NeutralModifiers(), mods)
}

func TestService_ActiveModifiersRepoFailure(t *testing.T) {
	repo := &fakeBuffRepo{activeErr: errors.New("query failed")}
	svc := newTestService(repo, time.Now())

	mods, err := svc.ActiveModifiers(context.Background(), "player-1")
	assert.Error(t, err)
	assert.Equal(t, domain.NeutralModifiers(), mods, "errors fall back to neutral modifiers")
}
