package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

const userCollectionName = "users"

// UserRepository is the MongoDB-backed implementation of
// domain.UserRepository. Favorites live as an ObjectID array on the user
// document and are mutated atomically.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, appLogger *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(userCollectionName),
		logger:     appLogger.Named("UserRepositoryMongo"),
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc userDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find user", zap.String("user_id", id), zap.Error(err))
		return nil, storeErr("find user", err)
	}
	return toUserEntity(&doc), nil
}

// AddFavorite adds a drone to the user's favorites set. $addToSet makes the
// operation idempotent: adding an existing favorite leaves the set unchanged.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, droneID string) ([]string, error) {
	return r.updateFavorites(ctx, userID, droneID, "$addToSet")
}

// RemoveFavorite removes a drone from the user's favorites set. Removing an
// absent favorite is a no-op.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, droneID string) ([]string, error) {
	return r.updateFavorites(ctx, userID, droneID, "$pull")
}

func (r *UserRepository) updateFavorites(ctx context.Context, userID, droneID, op string) ([]string, error) {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	droneObjID, err := primitive.ObjectIDFromHex(droneID)
	if err != nil {
		if op == "$pull" {
			// removing an id that can never be in the set is a no-op
			user, getErr := r.GetByID(ctx, userID)
			if getErr != nil {
				return nil, getErr
			}
			return user.Favorites, nil
		}
		return nil, fmt.Errorf("%w: invalid drone ID format", domain.ErrInvalidInput)
	}

	update := bson.M{op: bson.M{"favorites": droneObjID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": userObjID}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to update user favorites",
			zap.String("user_id", userID), zap.String("drone_id", droneID), zap.Error(err))
		return nil, storeErr("update user favorites", err)
	}

	favorites := make([]string, len(doc.Favorites))
	for i, f := range doc.Favorites {
		favorites[i] = f.Hex()
	}
	return favorites, nil
}
