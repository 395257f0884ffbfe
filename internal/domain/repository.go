package domain

import "context"

// DroneRepository is the persistence port for listings.
//
// Resolve implements the dual-addressing lookup: the id is first tried as a
// store identifier and, failing that, as the legacy business key. This is
// intentional two-step resolution, not error suppression.
//
// AppendReview and UpdateStatusIfActive are single atomic update-in-place
// operations so that concurrent mutations of the same listing never lose
// updates; UpdateStatusIfActive only matches documents still active and
// reports ErrNotFound when the guard fails.
type DroneRepository interface {
	Create(ctx context.Context, drone *Drone) (string, error)
	Resolve(ctx context.Context, id string) (*Drone, error)
	Update(ctx context.Context, id string, patch DronePatch) (*Drone, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter DroneFilter) ([]*Drone, int64, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Drone, error)
	AppendReview(ctx context.Context, id string, review Review) (*Drone, error)
	UpdateStatusIfActive(ctx context.Context, id string, to DroneStatus) (*Drone, error)
}

// UserRepository is the persistence port for accounts and the favorites
// relation stored on them. AddFavorite uses set-union semantics and
// RemoveFavorite set-difference semantics; both are single atomic updates
// and both are idempotent with respect to the favorites set.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	AddFavorite(ctx context.Context, userID, droneID string) ([]string, error)
	RemoveFavorite(ctx context.Context, userID, droneID string) ([]string, error)
}
