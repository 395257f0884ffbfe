package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

func newLifecycleFixture() (*LifecycleUsecase, *MockDroneRepository, *MockUserRepository, *MockDroneCache, *MockEventPublisher) {
	drones := new(MockDroneRepository)
	users := new(MockUserRepository)
	cache := new(MockDroneCache)
	pub := new(MockEventPublisher)
	uc := NewLifecycleUsecase(drones, users, cache, pub, logger.NewNop())
	return uc, drones, users, cache, pub
}

func soldDrone(id string) *domain.Drone {
	d := activeDrone(id)
	d.Status = domain.StatusSold
	return d
}

func TestLifecycleUsecase_MarkSold(t *testing.T) {
	ctx := context.Background()

	t.Run("active drone transitions to sold", func(t *testing.T) {
		uc, drones, _, cache, pub := newLifecycleFixture()
		existing := activeDrone("store-id")
		sold := soldDrone("store-id")

		drones.On("Resolve", ctx, "store-id").Return(existing, nil).Once()
		drones.On("UpdateStatusIfActive", ctx, "store-id", domain.StatusSold).Return(sold, nil).Once()
		cache.On("DeleteDrone", ctx, "store-id").Return(nil).Once()
		pub.On("Publish", ctx, "drone.sold", mock.Anything).Return(nil).Once()

		got, transitioned, err := uc.MarkSold(ctx, "store-id")

		require.NoError(t, err)
		assert.True(t, transitioned)
		assert.Equal(t, domain.StatusSold, got.Status)
		drones.AssertExpectations(t)
	})

	t.Run("sale invalidates both cache keys of a legacy-addressed listing", func(t *testing.T) {
		uc, drones, _, cache, pub := newLifecycleFixture()
		existing := activeDrone("store-id")
		existing.LegacyID = "legacy-key"
		sold := soldDrone("store-id")

		drones.On("Resolve", ctx, "legacy-key").Return(existing, nil).Once()
		drones.On("UpdateStatusIfActive", ctx, "store-id", domain.StatusSold).Return(sold, nil).Once()
		cache.On("DeleteDrone", ctx, "store-id").Return(nil).Once()
		cache.On("DeleteDrone", ctx, "legacy-key").Return(nil).Once()
		pub.On("Publish", ctx, "drone.sold", mock.Anything).Return(nil).Once()

		_, _, err := uc.MarkSold(ctx, "legacy-key")

		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("already sold is idempotent", func(t *testing.T) {
		uc, drones, _, _, _ := newLifecycleFixture()
		sold := soldDrone("store-id")

		drones.On("Resolve", ctx, "store-id").Return(sold, nil).Once()

		got, transitioned, err := uc.MarkSold(ctx, "store-id")

		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.Equal(t, domain.StatusSold, got.Status)
		drones.AssertNotCalled(t, "UpdateStatusIfActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("losing a concurrent purchase surfaces the settled state", func(t *testing.T) {
		uc, drones, _, _, _ := newLifecycleFixture()
		existing := activeDrone("store-id")
		settled := soldDrone("store-id")

		drones.On("Resolve", ctx, "store-id").Return(existing, nil).Once()
		drones.On("UpdateStatusIfActive", ctx, "store-id", domain.StatusSold).
			Return(nil, domain.ErrNotFound).Once()
		drones.On("Resolve", ctx, "store-id").Return(settled, nil).Once()

		got, transitioned, err := uc.MarkSold(ctx, "store-id")

		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.Equal(t, domain.StatusSold, got.Status)
	})

	t.Run("unknown drone reports not found", func(t *testing.T) {
		uc, drones, _, _, _ := newLifecycleFixture()

		drones.On("Resolve", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

		_, _, err := uc.MarkSold(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLifecycleUsecase_GetOwnerByDroneID(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves drone then owner", func(t *testing.T) {
		uc, drones, users, _, _ := newLifecycleFixture()
		drone := activeDrone("store-id")
		owner := &domain.User{ID: "owner-1", UserName: "ana", Email: "ana@example.com"}

		drones.On("Resolve", ctx, "store-id").Return(drone, nil).Once()
		users.On("GetByID", ctx, "owner-1").Return(owner, nil).Once()

		got, err := uc.GetOwnerByDroneID(ctx, "store-id")

		require.NoError(t, err)
		assert.Equal(t, "ana", got.UserName)
	})

	t.Run("missing owner reports not found", func(t *testing.T) {
		uc, drones, users, _, _ := newLifecycleFixture()
		drone := activeDrone("store-id")

		drones.On("Resolve", ctx, "store-id").Return(drone, nil).Once()
		users.On("GetByID", ctx, "owner-1").Return(nil, domain.ErrNotFound).Once()

		_, err := uc.GetOwnerByDroneID(ctx, "store-id")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLifecycleUsecase_ListMine(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by owner and optional status", func(t *testing.T) {
		uc, drones, _, _, _ := newLifecycleFixture()
		status := domain.StatusActive

		drones.On("Find", ctx, mock.MatchedBy(func(f domain.DroneFilter) bool {
			return f.OwnerID == "owner-1" && f.Status != nil && *f.Status == domain.StatusActive
		})).Return([]*domain.Drone{activeDrone("a")}, int64(1), nil).Once()

		items, err := uc.ListMine(ctx, "owner-1", &status)

		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("empty user id rejected", func(t *testing.T) {
		uc, drones, _, _, _ := newLifecycleFixture()

		_, err := uc.ListMine(ctx, "", nil)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		drones.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("unknown status value rejected", func(t *testing.T) {
		uc, drones, _, _, _ := newLifecycleFixture()
		bad := domain.DroneStatus("archived")

		_, err := uc.ListMine(ctx, "owner-1", &bad)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		drones.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("no listings is success", func(t *testing.T) {
		uc, drones, _, _, _ := newLifecycleFixture()

		drones.On("Find", ctx, mock.Anything).Return([]*domain.Drone{}, int64(0), nil).Once()

		items, err := uc.ListMine(ctx, "owner-2", nil)

		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
