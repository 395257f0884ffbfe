package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

// LifecycleUsecase owns the listing status state machine and ownership
// lookups. The only transition is active -> sold, and it is one-way.
type LifecycleUsecase struct {
	drones domain.DroneRepository
	users  domain.UserRepository
	cache  DroneCache
	pub    EventPublisher
	logger *logger.Logger
}

// NewLifecycleUsecase creates a new LifecycleUsecase. Cache and publisher may
// be nil.
func NewLifecycleUsecase(drones domain.DroneRepository, users domain.UserRepository, cache DroneCache, pub EventPublisher, log *logger.Logger) *LifecycleUsecase {
	return &LifecycleUsecase{
		drones: drones,
		users:  users,
		cache:  cache,
		pub:    pub,
		logger: log.Named("LifecycleUsecase"),
	}
}

// MarkSold transitions a listing from active to sold. The transition is a
// conditional update matching only documents still active, so two concurrent
// purchases cannot both win. Marking an already-sold listing is idempotent:
// the unchanged record comes back with no error. The second return value
// reports whether this call performed the transition; an idempotent no-op
// and a lost purchase race both report false.
func (uc *LifecycleUsecase) MarkSold(ctx context.Context, droneID string) (*domain.Drone, bool, error) {
	uc.logger.Info("Marking drone sold", zap.String("drone_id", droneID))

	drone, err := uc.drones.Resolve(ctx, droneID)
	if err != nil {
		return nil, false, err
	}
	if drone.IsSold() {
		return drone, false, nil
	}

	updated, err := uc.drones.UpdateStatusIfActive(ctx, drone.ID, domain.StatusSold)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the race to a concurrent purchase; the listing is no
			// longer active. Surface whatever state it settled in.
			settled, err := uc.drones.Resolve(ctx, drone.ID)
			return settled, false, err
		}
		uc.logger.Error("Failed to mark drone sold", zap.String("drone_id", drone.ID), zap.Error(err))
		return nil, false, fmt.Errorf("LifecycleUsecase.MarkSold: %w", err)
	}

	cacheInvalidate(ctx, uc.cache, uc.logger, drone.ID, drone.LegacyID)
	if uc.pub != nil {
		event := map[string]interface{}{
			"drone_id": updated.ID,
			"owner_id": updated.OwnerID,
		}
		if err := uc.pub.Publish(ctx, "drone.sold", event); err != nil {
			uc.logger.Warn("Failed to publish drone.sold event", zap.Error(err))
		}
	}

	return updated, true, nil
}

// GetOwnerByDroneID resolves a listing and returns its owning user record.
// Either resolution failing reports ErrNotFound.
func (uc *LifecycleUsecase) GetOwnerByDroneID(ctx context.Context, droneID string) (*domain.User, error) {
	drone, err := uc.drones.Resolve(ctx, droneID)
	if err != nil {
		return nil, err
	}

	owner, err := uc.users.GetByID(ctx, drone.OwnerID)
	if err != nil {
		uc.logger.Warn("Drone owner could not be resolved",
			zap.String("drone_id", drone.ID), zap.String("owner_id", drone.OwnerID), zap.Error(err))
		return nil, err
	}
	return owner, nil
}

// ListMine returns the drones owned by userID, optionally restricted to one
// status. An empty result is success.
func (uc *LifecycleUsecase) ListMine(ctx context.Context, userID string, status *domain.DroneStatus) ([]*domain.Drone, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userID cannot be empty", domain.ErrInvalidInput)
	}
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status filter value '%s'", domain.ErrInvalidInput, *status)
	}

	drones, _, err := uc.drones.Find(ctx, domain.DroneFilter{OwnerID: userID, Status: status})
	if err != nil {
		uc.logger.Error("Failed to list drones by owner", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("LifecycleUsecase.ListMine: %w", err)
	}
	return drones, nil
}
