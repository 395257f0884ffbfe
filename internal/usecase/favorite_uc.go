package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

// FavoriteUsecase maintains the per-user favorite set.
type FavoriteUsecase struct {
	users  domain.UserRepository
	drones domain.DroneRepository
	logger *logger.Logger
}

// NewFavoriteUsecase creates a new FavoriteUsecase.
func NewFavoriteUsecase(users domain.UserRepository, drones domain.DroneRepository, log *logger.Logger) *FavoriteUsecase {
	return &FavoriteUsecase{
		users:  users,
		drones: drones,
		logger: log.Named("FavoriteUsecase"),
	}
}

// AddFavorite adds a listing to the user's favorite set and returns the
// updated set. The drone must exist: a dangling reference is never stored.
// Adding an already-present favorite is a no-op (set-union semantics).
func (uc *FavoriteUsecase) AddFavorite(ctx context.Context, userID, droneID string) ([]string, error) {
	uc.logger.Info("Adding favorite", zap.String("user_id", userID), zap.String("drone_id", droneID))

	drone, err := uc.drones.Resolve(ctx, droneID)
	if err != nil {
		return nil, err
	}

	favorites, err := uc.users.AddFavorite(ctx, userID, drone.ID)
	if err != nil {
		uc.logger.Error("Failed to add favorite",
			zap.String("user_id", userID), zap.String("drone_id", drone.ID), zap.Error(err))
		return nil, err
	}
	return favorites, nil
}

// RemoveFavorite removes a listing from the user's favorite set and returns
// the updated set. Removing an absent favorite is a no-op. The id goes
// through the same dual-addressing resolution as AddFavorite, so a listing
// added under its legacy key can be removed under it too; an unresolvable id
// is used as-is, which lets callers prune references to deleted drones.
func (uc *FavoriteUsecase) RemoveFavorite(ctx context.Context, userID, droneID string) ([]string, error) {
	uc.logger.Info("Removing favorite", zap.String("user_id", userID), zap.String("drone_id", droneID))

	if drone, err := uc.drones.Resolve(ctx, droneID); err == nil {
		droneID = drone.ID
	}

	favorites, err := uc.users.RemoveFavorite(ctx, userID, droneID)
	if err != nil {
		uc.logger.Error("Failed to remove favorite",
			zap.String("user_id", userID), zap.String("drone_id", droneID), zap.Error(err))
		return nil, err
	}
	return favorites, nil
}

// ListFavorites resolves the user's favorite references to current drone
// records. References to since-deleted drones are dropped, never surfaced as
// broken entries. Pagination is applied after resolution; the returned total
// is the count of resolvable favorites.
func (uc *FavoriteUsecase) ListFavorites(ctx context.Context, userID string, page, limit int32) ([]*domain.Drone, int64, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	if len(user.Favorites) == 0 {
		return []*domain.Drone{}, 0, nil
	}

	resolved, err := uc.drones.FindByIDs(ctx, user.Favorites)
	if err != nil {
		uc.logger.Error("Failed to resolve favorite references", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, fmt.Errorf("FavoriteUsecase.ListFavorites: %w", err)
	}

	// Restore the order of the favorites set; the store returns $in matches
	// in arbitrary order.
	byID := make(map[string]*domain.Drone, len(resolved))
	for _, d := range resolved {
		byID[d.ID] = d
	}
	ordered := make([]*domain.Drone, 0, len(resolved))
	for _, id := range user.Favorites {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}

	total := int64(len(ordered))
	// offsets in int64: a large page times limit overflows int32
	start := (int64(page) - 1) * int64(limit)
	if start >= total {
		return []*domain.Drone{}, total, nil
	}
	end := start + int64(limit)
	if end > total {
		end = total
	}
	return ordered[start:end], total, nil
}
