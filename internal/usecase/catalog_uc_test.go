package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

func newCatalogFixture() (*CatalogUsecase, *MockDroneRepository, *MockDroneCache, *MockEventPublisher) {
	repo := new(MockDroneRepository)
	cache := new(MockDroneCache)
	pub := new(MockEventPublisher)
	uc := NewCatalogUsecase(repo, cache, pub, logger.NewNop())
	return uc, repo, cache, pub
}

func activeDrone(id string) *domain.Drone {
	d, _ := domain.NewDrone("owner-1", "DJI Mavic 3", "like new", "photography", "used", "Madrid", 1200, false)
	d.ID = id
	return d
}

func TestCatalogUsecase_CreateDrone(t *testing.T) {
	ctx := context.Background()

	t.Run("success starts active with empty ratings", func(t *testing.T) {
		uc, repo, cache, pub := newCatalogFixture()

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Drone")).Return("new-id", nil).Once()
		cache.On("SetDrone", ctx, mock.AnythingOfType("*domain.Drone")).Return(nil).Once()
		pub.On("Publish", ctx, "drone.created", mock.Anything).Return(nil).Once()

		drone, err := uc.CreateDrone(ctx, CreateDroneInput{
			OwnerID: "owner-1",
			Title:   "DJI Mavic 3",
			Price:   1200,
		})

		require.NoError(t, err)
		assert.Equal(t, "new-id", drone.ID)
		assert.Equal(t, domain.StatusActive, drone.Status)
		assert.Empty(t, drone.Ratings)
		assert.False(t, drone.CreatedAt.IsZero())
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("empty title rejected before repository", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()

		_, err := uc.CreateDrone(ctx, CreateDroneInput{OwnerID: "owner-1", Price: 100})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("negative price rejected before repository", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()

		_, err := uc.CreateDrone(ctx, CreateDroneInput{OwnerID: "owner-1", Title: "x", Price: -1})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("publish failure does not fail the create", func(t *testing.T) {
		uc, repo, cache, pub := newCatalogFixture()

		repo.On("Create", ctx, mock.Anything).Return("new-id", nil).Once()
		cache.On("SetDrone", ctx, mock.Anything).Return(nil).Once()
		pub.On("Publish", ctx, "drone.created", mock.Anything).Return(errors.New("nats down")).Once()

		_, err := uc.CreateDrone(ctx, CreateDroneInput{OwnerID: "owner-1", Title: "x", Price: 1})
		assert.NoError(t, err)
	})
}

func TestCatalogUsecase_GetDroneByID(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips repository", func(t *testing.T) {
		uc, repo, cache, _ := newCatalogFixture()
		cached := activeDrone("drone-1")

		cache.On("GetDrone", ctx, "drone-1").Return(cached, nil).Once()

		got, err := uc.GetDroneByID(ctx, "drone-1")

		require.NoError(t, err)
		assert.Same(t, cached, got)
		repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("cache miss falls through and populates cache", func(t *testing.T) {
		uc, repo, cache, _ := newCatalogFixture()
		stored := activeDrone("drone-1")

		cache.On("GetDrone", ctx, "drone-1").Return(nil, nil).Once()
		repo.On("Resolve", ctx, "drone-1").Return(stored, nil).Once()
		cache.On("SetDrone", ctx, stored).Return(nil).Once()

		got, err := uc.GetDroneByID(ctx, "drone-1")

		require.NoError(t, err)
		assert.Same(t, stored, got)
		cache.AssertExpectations(t)
	})

	t.Run("not found propagates", func(t *testing.T) {
		uc, repo, cache, _ := newCatalogFixture()

		cache.On("GetDrone", ctx, "missing").Return(nil, nil).Once()
		repo.On("Resolve", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

		_, err := uc.GetDroneByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogUsecase_ListDrones(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults applied for unset pagination", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()

		repo.On("Find", ctx, mock.MatchedBy(func(f domain.DroneFilter) bool {
			return f.Page == 1 && f.Limit == 10
		})).Return([]*domain.Drone{}, int64(0), nil).Once()

		items, total, err := uc.ListDrones(ctx, domain.DroneFilter{})

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Zero(t, total)
		repo.AssertExpectations(t)
	})

	t.Run("limit clamped to maximum", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()

		repo.On("Find", ctx, mock.MatchedBy(func(f domain.DroneFilter) bool {
			return f.Limit == maxLimit
		})).Return([]*domain.Drone{}, int64(0), nil).Once()

		_, _, err := uc.ListDrones(ctx, domain.DroneFilter{Page: 1, Limit: 5000})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("total reflects pre-pagination count", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()
		pageItems := []*domain.Drone{activeDrone("a"), activeDrone("b")}

		repo.On("Find", ctx, mock.Anything).Return(pageItems, int64(42), nil).Once()

		items, total, err := uc.ListDrones(ctx, domain.DroneFilter{Page: 2, Limit: 2})

		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, int64(42), total)
	})
}

func TestCatalogUsecase_ListByCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("empty category rejected", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()

		_, err := uc.ListByCategory(ctx, "")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("empty result is success", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()

		repo.On("Find", ctx, domain.DroneFilter{Category: "agriculture"}).
			Return([]*domain.Drone{}, int64(0), nil).Once()

		items, err := uc.ListByCategory(ctx, "agriculture")

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestCatalogUsecase_ListByPriceRange(t *testing.T) {
	ctx := context.Background()
	uc, repo, _, _ := newCatalogFixture()

	repo.On("Find", ctx, mock.MatchedBy(func(f domain.DroneFilter) bool {
		return f.PriceMin != nil && *f.PriceMin == 100 && f.PriceMax != nil && *f.PriceMax == 500
	})).Return([]*domain.Drone{activeDrone("a")}, int64(1), nil).Once()

	items, err := uc.ListByPriceRange(ctx, 100, 500)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	repo.AssertExpectations(t)
}

func TestCatalogUsecase_UpdateDrone(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves id then updates by store identifier", func(t *testing.T) {
		uc, repo, cache, pub := newCatalogFixture()
		existing := activeDrone("store-id")
		existing.LegacyID = "legacy-key"
		newTitle := "updated title"
		updated := activeDrone("store-id")
		updated.Title = newTitle

		repo.On("Resolve", ctx, "legacy-key").Return(existing, nil).Once()
		repo.On("Update", ctx, "store-id", domain.DronePatch{Title: &newTitle}).Return(updated, nil).Once()
		cache.On("DeleteDrone", ctx, "store-id").Return(nil).Once()
		cache.On("DeleteDrone", ctx, "legacy-key").Return(nil).Once()
		pub.On("Publish", ctx, "drone.updated", mock.Anything).Return(nil).Once()

		got, err := uc.UpdateDrone(ctx, "legacy-key", domain.DronePatch{Title: &newTitle})

		require.NoError(t, err)
		assert.Equal(t, newTitle, got.Title)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("negative price rejected before lookup", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()
		bad := -5.0

		_, err := uc.UpdateDrone(ctx, "drone-1", domain.DronePatch{Price: &bad})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("unknown drone reports not found", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()
		repo.On("Resolve", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

		_, err := uc.UpdateDrone(ctx, "missing", domain.DronePatch{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogUsecase_DeleteDrone(t *testing.T) {
	ctx := context.Background()

	t.Run("success invalidates cache", func(t *testing.T) {
		uc, repo, cache, pub := newCatalogFixture()
		existing := activeDrone("store-id")

		repo.On("Resolve", ctx, "store-id").Return(existing, nil).Once()
		repo.On("Delete", ctx, "store-id").Return(nil).Once()
		cache.On("DeleteDrone", ctx, "store-id").Return(nil).Once()
		pub.On("Publish", ctx, "drone.deleted", mock.Anything).Return(nil).Once()

		err := uc.DeleteDrone(ctx, "store-id")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown drone reports not found", func(t *testing.T) {
		uc, repo, _, _ := newCatalogFixture()
		repo.On("Resolve", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

		err := uc.DeleteDrone(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
