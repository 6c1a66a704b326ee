package spot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/repository"
)

// Nearby query limits
const (
	MaxSearchRadiusM     = 10000.0
	DefaultSearchRadiusM = 1000.0
)

// Service defines the interface for spot operations
type Service interface {
	// CreateSpot registers a permanent spot
	CreateSpot(ctx context.Context, name, description string, location domain.Coordinate, spotType domain.SpotType, creatorID string) (*domain.Spot, error)

	// GetSpot returns one spot by id
	GetSpot(ctx context.Context, id string) (*domain.Spot, error)

	// Nearby returns spots within radiusM of center, nearest first
	Nearby(ctx context.Context, center domain.Coordinate, radiusM float64) ([]domain.SpotWithDistance, error)

	// DeleteSpot removes a spot
	DeleteSpot(ctx context.Context, id string) error
}

type service struct {
	repo repository.Spot
	now  func() time.Time
}

// NewService creates a new spot service
func NewService(repo repository.Spot) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreateSpot(ctx context.Context, name, description string, location domain.Coordinate, spotType domain.SpotType, creatorID string) (*domain.Spot, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !location.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	if spotType == "" {
		spotType = domain.SpotTypeStandard
	}

	sp := &domain.Spot{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Location:    location,
		Type:        spotType,
		Permanent:   true,
		CreatorID:   creatorID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateSpot(ctx, sp); err != nil {
		log.Error("Failed to create spot", "name", name, "error", err)
		return nil, fmt.Errorf("failed to create spot: %w", err)
	}

	log.Info("Spot created", "spot_id", sp.ID, "name", sp.Name, "type", sp.Type)
	return sp, nil
}

func (s *service) GetSpot(ctx context.Context, id string) (*domain.Spot, error) {
	sp, err := s.repo.GetSpot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}
	if sp == nil {
		return nil, domain.ErrSpotNotFound
	}
	return sp, nil
}

func (s *service) Nearby(ctx context.Context, center domain.Coordinate, radiusM float64) ([]domain.SpotWithDistance, error) {
	if !center.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	if radiusM < 0 {
		return nil, domain.ErrInvalidRadius
	}
	if radiusM == 0 {
		radiusM = DefaultSearchRadiusM
	}
	if radiusM > MaxSearchRadiusM {
		radiusM = MaxSearchRadiusM
	}

	spots, err := s.repo.SpotsNear(ctx, center, radiusM)
	if err != nil {
		return nil, fmt.Errorf("failed to search spots: %w", err)
	}
	return spots, nil
}

func (s *service) DeleteSpot(ctx context.Context, id string) error {
	sp, err := s.repo.GetSpot(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get spot: %w", err)
	}
	if sp == nil {
		return domain.ErrSpotNotFound
	}
	if err := s.repo.DeleteSpot(ctx, id); err != nil {
		return fmt.Errorf("failed to delete spot: %w", err)
	}
	logger.FromContext(ctx).Info("Spot deleted", "spot_id", id)
	return nil
}
