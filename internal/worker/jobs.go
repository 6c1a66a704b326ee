package worker

import (
	"context"

	"github.com/geoclaim/geoclaim/internal/claim"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/loot"
)

// ClaimDecayJob runs one decay sweep over all claims
type ClaimDecayJob struct {
	claims claim.Service
}

// NewClaimDecayJob creates a ClaimDecayJob
func NewClaimDecayJob(claims claim.Service) *ClaimDecayJob {
	return &ClaimDecayJob{claims: claims}
}

func (j *ClaimDecayJob) Process(ctx context.Context) error {
	touched, err := j.claims.ApplyDecay(ctx)
	if err != nil {
		return err
	}
	if touched > 0 {
		logger.FromContext(ctx).Debug(LogMsgClaimDecayApplied, "claims_touched", touched)
	}
	return nil
}

// LootExpiryJob removes loot spots past their expiry
type LootExpiryJob struct {
	loot loot.Service
}

// NewLootExpiryJob creates a LootExpiryJob
func NewLootExpiryJob(loot loot.Service) *LootExpiryJob {
	return &LootExpiryJob{loot: loot}
}

func (j *LootExpiryJob) Process(ctx context.Context) error {
	removed, err := j.loot.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.FromContext(ctx).Debug(LogMsgLootExpirySwept, "spots_removed", removed)
	}
	return nil
}
