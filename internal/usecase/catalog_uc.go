package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

// EventPublisher publishes marketplace events. Publishing is best-effort:
// a failed publish never fails the operation that produced it.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// DroneCache is a read-through cache for single listings.
// Get returns (nil, nil) on a cache miss.
type DroneCache interface {
	GetDrone(ctx context.Context, id string) (*domain.Drone, error)
	SetDrone(ctx context.Context, drone *domain.Drone) error
	DeleteDrone(ctx context.Context, id string) error
}

const (
	defaultPage  int32 = 1
	defaultLimit int32 = 10
	maxLimit     int32 = 100
)

// CatalogUsecase implements listing CRUD and catalog search.
type CatalogUsecase struct {
	drones domain.DroneRepository
	cache  DroneCache
	pub    EventPublisher
	logger *logger.Logger
}

// NewCatalogUsecase creates a new CatalogUsecase. Cache and publisher may be
// nil; the catalog then runs without caching or events.
func NewCatalogUsecase(drones domain.DroneRepository, cache DroneCache, pub EventPublisher, log *logger.Logger) *CatalogUsecase {
	return &CatalogUsecase{
		drones: drones,
		cache:  cache,
		pub:    pub,
		logger: log.Named("CatalogUsecase"),
	}
}

// CreateDroneInput holds the caller-supplied listing fields. Server-controlled
// fields (identifier, status, timestamps, ratings, sold flag) have no place
// here, so a create request can never smuggle them in.
type CreateDroneInput struct {
	OwnerID     string
	Title       string
	Description string
	Category    string
	Condition   string
	Location    string
	Price       float64
	IsService   bool
}

// CreateDrone persists a fresh listing. It always starts active with an
// empty ratings sequence.
func (uc *CatalogUsecase) CreateDrone(ctx context.Context, input CreateDroneInput) (*domain.Drone, error) {
	uc.logger.Info("Creating drone listing",
		zap.String("owner_id", input.OwnerID),
		zap.String("title", input.Title),
		zap.String("category", input.Category))

	drone, err := domain.NewDrone(input.OwnerID, input.Title, input.Description,
		input.Category, input.Condition, input.Location, input.Price, input.IsService)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	createdID, err := uc.drones.Create(ctx, drone)
	if err != nil {
		uc.logger.Error("Failed to create drone in repository", zap.Error(err))
		return nil, fmt.Errorf("CatalogUsecase.CreateDrone: %w", err)
	}
	drone.ID = createdID

	uc.cacheSet(ctx, drone)
	uc.publish(ctx, "drone.created", drone)

	return drone, nil
}

// GetDroneByID fetches a listing via the dual-addressing resolver, consulting
// the cache first.
func (uc *CatalogUsecase) GetDroneByID(ctx context.Context, id string) (*domain.Drone, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetDrone(ctx, id)
		if err != nil {
			uc.logger.Warn("Cache lookup failed", zap.String("drone_id", id), zap.Error(err))
		} else if cached != nil {
			uc.logger.Debug("Drone fetched from cache", zap.String("drone_id", id))
			return cached, nil
		}
	}

	drone, err := uc.drones.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.cacheSet(ctx, drone)
	return drone, nil
}

// ListDrones searches the catalog with the supplied filters and pagination.
// Absent filters impose no constraint. Returns the page of items and the
// total matching count before pagination.
func (uc *CatalogUsecase) ListDrones(ctx context.Context, filter domain.DroneFilter) ([]*domain.Drone, int64, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	} else if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	drones, total, err := uc.drones.Find(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to search drones", zap.Error(err))
		return nil, 0, fmt.Errorf("CatalogUsecase.ListDrones: %w", err)
	}
	return drones, total, nil
}

// ListByCategory is the non-paginated convenience form of ListDrones.
// An empty result is success, not an error; the catalog uses the
// empty-slice convention for every list operation.
func (uc *CatalogUsecase) ListByCategory(ctx context.Context, category string) ([]*domain.Drone, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: category cannot be empty", domain.ErrInvalidInput)
	}
	drones, _, err := uc.drones.Find(ctx, domain.DroneFilter{Category: category})
	if err != nil {
		return nil, fmt.Errorf("CatalogUsecase.ListByCategory: %w", err)
	}
	return drones, nil
}

// ListByPriceRange lists drones priced within the inclusive [min, max]
// range. An inverted range simply matches nothing.
func (uc *CatalogUsecase) ListByPriceRange(ctx context.Context, min, max float64) ([]*domain.Drone, error) {
	drones, _, err := uc.drones.Find(ctx, domain.DroneFilter{PriceMin: &min, PriceMax: &max})
	if err != nil {
		return nil, fmt.Errorf("CatalogUsecase.ListByPriceRange: %w", err)
	}
	return drones, nil
}

// UpdateDrone applies a partial update to the listing addressed by id
// (dual lookup). Only the resolved store identifier is written to.
func (uc *CatalogUsecase) UpdateDrone(ctx context.Context, id string, patch domain.DronePatch) (*domain.Drone, error) {
	uc.logger.Info("Updating drone listing", zap.String("drone_id", id))

	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidInput)
	}

	drone, err := uc.drones.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := uc.drones.Update(ctx, drone.ID, patch)
	if err != nil {
		uc.logger.Error("Failed to update drone in repository", zap.String("drone_id", drone.ID), zap.Error(err))
		return nil, fmt.Errorf("CatalogUsecase.UpdateDrone: %w", err)
	}

	uc.cacheDelete(ctx, drone.ID, drone.LegacyID)
	uc.publish(ctx, "drone.updated", updated)

	return updated, nil
}

// DeleteDrone removes the listing addressed by id (dual lookup). Deleting a
// nonexistent listing reports ErrNotFound, never a silent no-op.
func (uc *CatalogUsecase) DeleteDrone(ctx context.Context, id string) error {
	uc.logger.Info("Deleting drone listing", zap.String("drone_id", id))

	drone, err := uc.drones.Resolve(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.drones.Delete(ctx, drone.ID); err != nil {
		uc.logger.Error("Failed to delete drone from repository", zap.String("drone_id", drone.ID), zap.Error(err))
		return fmt.Errorf("CatalogUsecase.DeleteDrone: %w", err)
	}

	uc.cacheDelete(ctx, drone.ID, drone.LegacyID)
	uc.publish(ctx, "drone.deleted", map[string]interface{}{"drone_id": drone.ID})

	return nil
}

func (uc *CatalogUsecase) cacheSet(ctx context.Context, drone *domain.Drone) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetDrone(ctx, drone); err != nil {
		uc.logger.Warn("Failed to set drone in cache", zap.String("drone_id", drone.ID), zap.Error(err))
	}
}

func (uc *CatalogUsecase) cacheDelete(ctx context.Context, ids ...string) {
	cacheInvalidate(ctx, uc.cache, uc.logger, ids...)
}

// cacheInvalidate drops every addressable key of a listing. SetDrone writes
// under both the store identifier and the legacy key, so invalidation must
// cover both or a legacy-addressed read keeps serving a stale snapshot.
func cacheInvalidate(ctx context.Context, cache DroneCache, log *logger.Logger, ids ...string) {
	if cache == nil {
		return
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := cache.DeleteDrone(ctx, id); err != nil {
			log.Warn("Failed to invalidate drone cache entry", zap.String("drone_id", id), zap.Error(err))
		}
	}
}

func (uc *CatalogUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if uc.pub == nil {
		return
	}
	event := map[string]interface{}{
		"event_id": uuid.NewString(),
		"payload":  data,
	}
	if err := uc.pub.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
