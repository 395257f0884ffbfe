package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aeromarket/drone-service/internal/domain"
)

type MockDroneRepository struct {
	mock.Mock
}

func (m *MockDroneRepository) Create(ctx context.Context, drone *domain.Drone) (string, error) {
	args := m.Called(ctx, drone)
	return args.String(0), args.Error(1)
}

func (m *MockDroneRepository) Resolve(ctx context.Context, id string) (*domain.Drone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

func (m *MockDroneRepository) Update(ctx context.Context, id string, patch domain.DronePatch) (*domain.Drone, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

func (m *MockDroneRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDroneRepository) Find(ctx context.Context, filter domain.DroneFilter) ([]*domain.Drone, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Drone), args.Get(1).(int64), args.Error(2)
}

func (m *MockDroneRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Drone, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Drone), args.Error(1)
}

func (m *MockDroneRepository) AppendReview(ctx context.Context, id string, review domain.Review) (*domain.Drone, error) {
	args := m.Called(ctx, id, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

func (m *MockDroneRepository) UpdateStatusIfActive(ctx context.Context, id string, to domain.DroneStatus) (*domain.Drone, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) AddFavorite(ctx context.Context, userID, droneID string) ([]string, error) {
	args := m.Called(ctx, userID, droneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) RemoveFavorite(ctx context.Context, userID, droneID string) ([]string, error) {
	args := m.Called(ctx, userID, droneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockDroneCache struct {
	mock.Mock
}

func (m *MockDroneCache) GetDrone(ctx context.Context, id string) (*domain.Drone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

func (m *MockDroneCache) SetDrone(ctx context.Context, drone *domain.Drone) error {
	args := m.Called(ctx, drone)
	return args.Error(0)
}

func (m *MockDroneCache) DeleteDrone(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}
