package domain

import (
	"errors"
	"time"
)

// DroneStatus represents the lifecycle state of a listing.
type DroneStatus string

const (
	StatusActive DroneStatus = "active"
	StatusSold   DroneStatus = "sold"
)

// IsValid checks if the DroneStatus is one of the defined constants.
func (s DroneStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusSold:
		return true
	}
	return false
}

// Review is a bounded 1-5 rating plus optional comment attached to a listing.
type Review struct {
	ReviewerID string
	Rating     int32
	Comment    string
}

// Drone represents one listing in the catalog.
// Note: no bson/json tags here; mapping to database structures is handled by
// the repository implementation.
type Drone struct {
	ID          string // store identifier, assigned on insert, immutable
	LegacyID    string // secondary business key, distinct from the store identifier
	OwnerID     string
	Title       string
	Description string
	Category    string
	Condition   string
	Location    string
	Price       float64
	Status      DroneStatus
	IsService   bool
	Ratings     []Review
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSold reports whether the listing has completed its one-way
// active -> sold transition.
func (d *Drone) IsSold() bool {
	return d.Status == StatusSold
}

// AverageRating computes the mean of the ratings sequence. The second return
// value is the number of ratings; an empty sequence yields (0, 0).
// No aggregate is stored on the listing; consumers derive it here.
func (d *Drone) AverageRating() (float64, int32) {
	if len(d.Ratings) == 0 {
		return 0, 0
	}
	var sum int64
	for _, r := range d.Ratings {
		sum += int64(r.Rating)
	}
	return float64(sum) / float64(len(d.Ratings)), int32(len(d.Ratings))
}

// NewDrone creates a fresh listing. Server-controlled fields (ID, status,
// timestamps, ratings) are always set here, never taken from the caller:
// a new listing starts active with an empty ratings sequence.
func NewDrone(ownerID, title, description, category, condition, location string, price float64, isService bool) (*Drone, error) {
	if title == "" {
		return nil, errors.New("title cannot be empty")
	}
	if price < 0 {
		return nil, errors.New("price cannot be negative")
	}
	now := time.Now().UTC()
	return &Drone{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Category:    category,
		Condition:   condition,
		Location:    location,
		Price:       price,
		Status:      StatusActive,
		IsService:   isService,
		Ratings:     []Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DroneFilter holds parameters for querying the catalog. Price bounds are
// pointers so that an unsupplied bound imposes no constraint; a missing
// filter must never collapse to a zero-valued predicate.
type DroneFilter struct {
	Query     string
	Category  string
	Condition string
	Location  string
	PriceMin  *float64
	PriceMax  *float64
	OwnerID   string
	Status    *DroneStatus
	Page      int32
	Limit     int32
}

// DronePatch carries the updatable listing fields. Nil means "leave as is".
// Status, ratings and timestamps are deliberately absent: they move only
// through their dedicated operations.
type DronePatch struct {
	Title       *string
	Description *string
	Category    *string
	Condition   *string
	Location    *string
	Price       *float64
}
