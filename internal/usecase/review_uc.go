package usecase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

// ReviewUsecase appends peer reviews to listings.
type ReviewUsecase struct {
	drones domain.DroneRepository
	cache  DroneCache
	pub    EventPublisher
	logger *logger.Logger
}

// NewReviewUsecase creates a new ReviewUsecase. Cache and publisher may be nil.
func NewReviewUsecase(drones domain.DroneRepository, cache DroneCache, pub EventPublisher, log *logger.Logger) *ReviewUsecase {
	return &ReviewUsecase{
		drones: drones,
		cache:  cache,
		pub:    pub,
		logger: log.Named("ReviewUsecase"),
	}
}

// AddReview validates and appends a review to the drone's ratings sequence,
// returning the updated listing. Validation happens strictly before any
// mutation and short-circuits on the first failure: reviewer identifier
// format, then rating bounds, then target existence.
//
// A reviewer may submit multiple reviews for the same listing; the append is
// deliberately unguarded.
func (uc *ReviewUsecase) AddReview(ctx context.Context, droneID, reviewerID string, rating int32, comment string) (*domain.Drone, error) {
	uc.logger.Info("Adding review",
		zap.String("drone_id", droneID),
		zap.String("reviewer_id", reviewerID),
		zap.Int32("rating", rating))

	if _, err := primitive.ObjectIDFromHex(reviewerID); err != nil {
		return nil, fmt.Errorf("%w: reviewer id is not a valid identifier", domain.ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}

	drone, err := uc.drones.Resolve(ctx, droneID)
	if err != nil {
		return nil, err
	}

	review := domain.Review{
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    comment,
	}

	updated, err := uc.drones.AppendReview(ctx, drone.ID, review)
	if err != nil {
		uc.logger.Error("Failed to append review",
			zap.String("drone_id", drone.ID), zap.Error(err))
		return nil, fmt.Errorf("ReviewUsecase.AddReview: %w", err)
	}

	cacheInvalidate(ctx, uc.cache, uc.logger, drone.ID, drone.LegacyID)
	if uc.pub != nil {
		event := map[string]interface{}{
			"drone_id":    drone.ID,
			"reviewer_id": reviewerID,
			"rating":      rating,
		}
		if err := uc.pub.Publish(ctx, "drone.reviewed", event); err != nil {
			uc.logger.Warn("Failed to publish drone.reviewed event", zap.Error(err))
		}
	}

	return updated, nil
}
