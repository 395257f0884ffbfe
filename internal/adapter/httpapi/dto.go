package httpapi

import (
	"time"

	"github.com/aeromarket/drone-service/internal/domain"
)

type createDroneRequest struct {
	OwnerID     string  `json:"ownerId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	IsService   bool    `json:"isService"`
}

type updateDroneRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Condition   *string  `json:"condition"`
	Location    *string  `json:"location"`
	Price       *float64 `json:"price"`
}

type addReviewRequest struct {
	UserID  string `json:"userId"`
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	UserID  string `json:"userId"`
	Rating  int32  `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type droneResponse struct {
	ID            string           `json:"id"`
	LegacyID      string           `json:"legacyId,omitempty"`
	OwnerID       string           `json:"ownerId"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Category      string           `json:"category,omitempty"`
	Condition     string           `json:"condition,omitempty"`
	Location      string           `json:"location,omitempty"`
	Price         float64          `json:"price"`
	Status        string           `json:"status"`
	IsService     bool             `json:"isService"`
	Ratings       []reviewResponse `json:"ratings"`
	AverageRating float64          `json:"averageRating"`
	RatingsCount  int32            `json:"ratingsCount"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type pagedResponse struct {
	Items interface{} `json:"items"`
	Page  int32       `json:"page"`
	Limit int32       `json:"limit"`
	Total int64       `json:"total"`
}

type ownerResponse struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

type favoritesMutationResponse struct {
	UserID    string   `json:"userId"`
	Favorites []string `json:"favorites"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toDroneResponse(d *domain.Drone) droneResponse {
	ratings := make([]reviewResponse, len(d.Ratings))
	for i, r := range d.Ratings {
		ratings[i] = reviewResponse{
			UserID:  r.ReviewerID,
			Rating:  r.Rating,
			Comment: r.Comment,
		}
	}
	avg, count := d.AverageRating()
	return droneResponse{
		ID:            d.ID,
		LegacyID:      d.LegacyID,
		OwnerID:       d.OwnerID,
		Title:         d.Title,
		Description:   d.Description,
		Category:      d.Category,
		Condition:     d.Condition,
		Location:      d.Location,
		Price:         d.Price,
		Status:        string(d.Status),
		IsService:     d.IsService,
		Ratings:       ratings,
		AverageRating: avg,
		RatingsCount:  count,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDroneResponses(drones []*domain.Drone) []droneResponse {
	out := make([]droneResponse, len(drones))
	for i, d := range drones {
		out[i] = toDroneResponse(d)
	}
	return out
}
